// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"testing"

	"github.com/universalautobrokers/draftstore/fault"
)

func TestTransactionCommit(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	trx, err := store.NewTransaction()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}

	trx.Put(store.Pool.Drafts, []byte("doc"), []byte("record"))
	trx.Put(store.Pool.DraftExpiry, []byte("index"), []byte("doc"))

	// uncommitted writes visible through the transaction
	if value := trx.Get(store.Pool.Drafts, []byte("doc")); !bytes.Equal([]byte("record"), value) {
		t.Errorf("transaction read returned: %q", value)
	}
	if !trx.Has(store.Pool.DraftExpiry, []byte("index")) {
		t.Errorf("transaction has returned false")
	}

	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}

	// both writes landed
	if value := store.Pool.Drafts.Get([]byte("doc")); !bytes.Equal([]byte("record"), value) {
		t.Errorf("draft missing after commit: %q", value)
	}
	if !store.Pool.DraftExpiry.Has([]byte("index")) {
		t.Errorf("index missing after commit")
	}
}

func TestTransactionAbort(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	store.Pool.Drafts.Put([]byte("doc"), []byte("before"))

	trx, err := store.NewTransaction()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	trx.Put(store.Pool.Drafts, []byte("doc"), []byte("after"))
	trx.Delete(store.Pool.Drafts, []byte("doc"))
	trx.Abort()

	// nothing from the aborted batch is visible
	if value := store.Pool.Drafts.Get([]byte("doc")); !bytes.Equal([]byte("before"), value) {
		t.Errorf("abort leaked writes: %q", value)
	}
}

func TestTransactionExclusive(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	trx, err := store.NewTransaction()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}

	_, err = store.NewTransaction()
	if fault.ErrTransactionAlreadyInUse != err {
		t.Errorf("expected in-use error, got: %v", err)
	}

	trx.Abort()
	trx2, err := store.NewTransaction()
	if nil != err {
		t.Fatalf("begin after abort error: %s", err)
	}
	trx2.Abort()
}

func TestTransactionDeleteVisibility(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	store.Pool.Changes.Put([]byte("entry"), []byte("x"))

	trx, err := store.NewTransaction()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	trx.Delete(store.Pool.Changes, []byte("entry"))

	// pending delete visible through the transaction
	if trx.Has(store.Pool.Changes, []byte("entry")) {
		t.Errorf("pending delete not visible")
	}
	if nil != trx.Get(store.Pool.Changes, []byte("entry")) {
		t.Errorf("pending delete returned data")
	}

	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}
	if store.Pool.Changes.Has([]byte("entry")) {
		t.Errorf("delete not applied")
	}
}
