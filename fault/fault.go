// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised      = ExistsError("already initialised")
	ErrCorruptRecord           = ProcessError("corrupt record")
	ErrDraftNotFound           = NotFoundError("draft not found")
	ErrEmptyPayload            = InvalidError("payload is empty")
	ErrInvalidCount            = InvalidError("invalid count")
	ErrInvalidCursor           = InvalidError("invalid cursor")
	ErrInvalidDocumentId       = InvalidError("document id is invalid")
	ErrInvalidStatusTransition = InvalidError("invalid status transition")
	ErrInvalidStructPointer    = InvalidError("invalid struct pointer")
	ErrNotInitialised          = ProcessError("not initialised")
	ErrQueueStopped            = ProcessError("update queue is stopped")
	ErrRequiredConfigFile      = InvalidError("configuration file is required")
	ErrRequiredDataDirectory   = InvalidError("data directory is required")
	ErrTransactionAlreadyInUse = ProcessError("transaction already in use")
	ErrVersionNotFound         = NotFoundError("version not found")
	ErrWrongDatabaseVersion    = ProcessError("wrong database version")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
