// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/universalautobrokers/draftstore/fault"
)

// test that the classification predicates match the error classes
func TestErrorClassification(t *testing.T) {
	if !fault.IsErrNotFound(fault.ErrDraftNotFound) {
		t.Errorf("ErrDraftNotFound is not classified as not-found")
	}
	if !fault.IsErrNotFound(fault.ErrVersionNotFound) {
		t.Errorf("ErrVersionNotFound is not classified as not-found")
	}
	if !fault.IsErrInvalid(fault.ErrInvalidStatusTransition) {
		t.Errorf("ErrInvalidStatusTransition is not classified as invalid")
	}
	if !fault.IsErrExists(fault.ErrAlreadyInitialised) {
		t.Errorf("ErrAlreadyInitialised is not classified as exists")
	}
	if !fault.IsErrProcess(fault.ErrCorruptRecord) {
		t.Errorf("ErrCorruptRecord is not classified as process")
	}
	if fault.IsErrNotFound(fault.ErrEmptyPayload) {
		t.Errorf("ErrEmptyPayload wrongly classified as not-found")
	}
}

// errors must compare equal by identity
func TestErrorIdentity(t *testing.T) {
	var err error = fault.ErrDraftNotFound
	if err != fault.ErrDraftNotFound {
		t.Errorf("identity comparison failed")
	}
	if err.Error() != "draft not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
