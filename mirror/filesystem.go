// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mirror

import (
	"os"
)

// FileSystem - the capability surface the mirror needs
//
// injected so the desktop shell can supply its own sandboxed file
// access; a nil capability disables the mirror tier entirely
type FileSystem interface {
	DirectoryExists(path string) bool
	CreateDirectory(path string) error
	ReadBinaryFile(path string) ([]byte, error)
	WriteBinaryFile(path string, data []byte) error
	Remove(path string) error
}

// OSFileSystem - direct operating system file access
type OSFileSystem struct{}

// DirectoryExists - check a path exists and is a directory
func (OSFileSystem) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return nil == err && info.IsDir()
}

// CreateDirectory - recursively create a directory
func (OSFileSystem) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0o700)
}

// ReadBinaryFile - read a whole file
func (OSFileSystem) ReadBinaryFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteBinaryFile - write a whole file
func (OSFileSystem) WriteBinaryFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

// Remove - delete a file
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}
