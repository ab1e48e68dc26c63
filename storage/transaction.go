// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
)

// Transaction - atomic multi-pool mutation
//
// a save touches drafts, versions, changes and indexes; batching them
// behind one commit means a failure part way through never leaves a
// version snapshot without its draft or vice versa
type Transaction interface {
	Begin() error
	Put(*PoolHandle, []byte, []byte)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
	InUse() bool
}

type transactionData struct {
	access Access
}

func newTransaction(access Access) Transaction {
	return &transactionData{
		access: access,
	}
}

func (t *transactionData) Begin() error {
	return t.access.Begin()
}

func (t *transactionData) Put(pool *PoolHandle, key []byte, value []byte) {
	t.access.Put(pool.prefixKey(key), value)
}

func (t *transactionData) Delete(pool *PoolHandle, key []byte) {
	t.access.Delete(pool.prefixKey(key))
}

// Get - read through the transaction, seeing uncommitted writes
func (t *transactionData) Get(pool *PoolHandle, key []byte) []byte {
	value, err := t.access.Get(pool.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("transaction.Get", err)

	result := make([]byte, len(value))
	copy(result, value)
	return result
}

func (t *transactionData) Has(pool *PoolHandle, key []byte) bool {
	found, err := t.access.Has(pool.prefixKey(key))
	logger.PanicIfError("transaction.Has", err)
	return found
}

func (t *transactionData) Commit() error {
	return t.access.Commit()
}

func (t *transactionData) Abort() {
	t.access.Abort()
}

func (t *transactionData) InUse() bool {
	return t.access.InUse()
}
