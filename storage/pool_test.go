// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"testing"

	"github.com/universalautobrokers/draftstore/storage"
)

// main pool test
func TestPool(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	p := store.Pool.Drafts

	// add more items than poolSize
	p.Put([]byte("key-one"), []byte("data-one"))
	p.Put([]byte("key-two"), []byte("data-two"))
	p.Put([]byte("key-remove-me"), []byte("to be deleted"))
	p.Delete([]byte("key-remove-me"))
	p.Put([]byte("key-three"), []byte("data-three"))
	p.Put([]byte("key-one"), []byte("data-one"))     // duplicate
	p.Put([]byte("key-three"), []byte("data-three")) // duplicate
	p.Put([]byte("key-four"), []byte("data-four"))
	p.Put([]byte("key-delete-this"), []byte("to be deleted"))
	p.Put([]byte("key-five"), []byte("data-five"))
	p.Put([]byte("key-six"), []byte("data-six"))
	p.Delete([]byte("key-delete-this"))
	p.Put([]byte("key-seven"), []byte("data-seven"))
	p.Put([]byte("key-one"), []byte("data-one(NEW)")) // duplicate

	checkResults(t, p)
}

func checkResults(t *testing.T, p *storage.PoolHandle) {

	// ensure we get all of the pool
	cursor := p.NewFetchCursor()
	data, err := cursor.Fetch(20)
	if nil != err {
		t.Errorf("error on fetch: %v", err)
		return
	}

	// ensure lengths match
	if len(data) != len(expectedElements) {
		t.Errorf("length mismatch, got: %d  expected: %d", len(data), len(expectedElements))
	}

	// compare all items from pool
	for i, a := range data {
		if i >= len(expectedElements) {
			t.Errorf("%d: extra: %q = %q", i, a.Key, a.Value)
			continue
		}
		e := expectedElements[i]
		if !bytes.Equal(e.Key, a.Key) {
			t.Errorf("%d: key mismatch, got: %q  expected: %q", i, a.Key, e.Key)
		}
		if !bytes.Equal(e.Value, a.Value) {
			t.Errorf("%d: data mismatch, got: %q  expected: %q", i, a.Value, e.Value)
		}
	}

	// retrieve 2 elements then the rest
	cursor = p.NewFetchCursor()
	firstData, err := cursor.Fetch(2)
	if nil != err {
		t.Fatalf("error on fetch: %v", err)
	}
	restData, err := cursor.Fetch(len(expectedElements))
	if nil != err {
		t.Fatalf("error on fetch: %v", err)
	}
	if len(firstData)+len(restData) != len(expectedElements) {
		t.Fatalf("split fetch length mismatch")
	}

	// individual gets
	if value := p.Get([]byte("key-two")); !bytes.Equal([]byte("data-two"), value) {
		t.Errorf("get returned: %q", value)
	}
	if !p.Has([]byte("key-two")) {
		t.Errorf("has returned false for existing key")
	}
	if nil != p.Get(nonExistantKey) {
		t.Errorf("get returned data for non-existent key")
	}
	if p.Has(nonExistantKey) {
		t.Errorf("has returned true for non-existent key")
	}
}

// check that restarting the database keeps data
func TestPoolPersistence(t *testing.T) {
	store := setup(t)
	defer removeFiles()

	p := store.Pool.Versions
	p.Put([]byte("doc-a"), []byte("snapshot"))
	store.Finalise()

	store, err := storage.Initialise(databaseDirectory, storage.ReadWrite)
	if nil != err {
		t.Fatalf("reopen error: %s", err)
	}
	defer teardown(store)

	if value := store.Pool.Versions.Get([]byte("doc-a")); !bytes.Equal([]byte("snapshot"), value) {
		t.Errorf("value lost over restart: %q", value)
	}
}

// pools with the same keys must not alias each other
func TestPoolSeparation(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	store.Pool.Drafts.Put([]byte("shared-key"), []byte("draft"))
	store.Pool.Changes.Put([]byte("shared-key"), []byte("change"))

	if value := store.Pool.Drafts.Get([]byte("shared-key")); !bytes.Equal([]byte("draft"), value) {
		t.Errorf("drafts pool returned: %q", value)
	}
	if value := store.Pool.Changes.Get([]byte("shared-key")); !bytes.Equal([]byte("change"), value) {
		t.Errorf("changes pool returned: %q", value)
	}

	store.Pool.Drafts.Delete([]byte("shared-key"))
	if store.Pool.Drafts.Has([]byte("shared-key")) {
		t.Errorf("delete did not remove key")
	}
	if !store.Pool.Changes.Has([]byte("shared-key")) {
		t.Errorf("delete crossed pools")
	}
}

func TestPrefixCursor(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	p := store.Pool.Versions
	p.Put([]byte("doc\x00001"), []byte("v1"))
	p.Put([]byte("doc\x00002"), []byte("v2"))
	p.Put([]byte("doc2\x00001"), []byte("other"))

	collected := make([]string, 0, 2)
	err := p.NewPrefixCursor([]byte("doc\x00")).Map(func(key []byte, value []byte) error {
		collected = append(collected, string(value))
		return nil
	})
	if nil != err {
		t.Fatalf("map error: %v", err)
	}
	if 2 != len(collected) || "v1" != collected[0] || "v2" != collected[1] {
		t.Errorf("prefix scan returned: %v", collected)
	}
}
