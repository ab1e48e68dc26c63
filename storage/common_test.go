// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/universalautobrokers/draftstore/fixtures"
	"github.com/universalautobrokers/draftstore/storage"
)

// test database directory
const (
	databaseDirectory = "testing-db"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseDirectory)
}

// configure for testing
func setup(t *testing.T) *storage.Store {
	removeFiles()
	fixtures.SetupTestLogger()
	if err := os.Mkdir(databaseDirectory, 0o700); nil != err {
		t.Fatalf("mkdir error: %s", err)
	}
	store, err := storage.Initialise(databaseDirectory, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	return store
}

// post test cleanup
func teardown(store *storage.Store) {
	if nil != store {
		store.Finalise()
	}
	fixtures.TeardownTestLogger()
	removeFiles()
}

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// this is the expected order
var expectedElements = makeElements([]stringElement{
	{"key-five", "data-five"},
	{"key-four", "data-four"},
	{"key-one", "data-one(NEW)"},
	{"key-seven", "data-seven"},
	{"key-six", "data-six"},
	{"key-three", "data-three"},
	{"key-two", "data-two"},
	// {"key-one", "data-one"}, // this was removed
})

// a key that must not exist
var nonExistantKey = []byte("/nonexistant")
