// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - access to one pool of the store
type PoolHandle struct {
	prefix     byte
	limit      []byte
	dataAccess Access
}

// Element - a binary key/value pair from a pool scan
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the pool prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair
//
// accumulates into the batch while a transaction is in use
func (p *PoolHandle) Put(key []byte, value []byte) {
	if nil == p.dataAccess {
		logger.Panic("pool.Put nil data access")
		return
	}
	p.dataAccess.Put(p.prefixKey(key), value)
}

// Delete - remove a key
func (p *PoolHandle) Delete(key []byte) {
	if nil == p.dataAccess {
		logger.Panic("pool.Delete nil data access")
		return
	}
	p.dataAccess.Delete(p.prefixKey(key))
}

// Get - read the value for a given key
//
// the result is a private copy; nil if the key is absent
func (p *PoolHandle) Get(key []byte) []byte {
	if nil == p.dataAccess {
		return nil
	}
	value, err := p.dataAccess.Get(p.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)

	result := make([]byte, len(value))
	copy(result, value)
	return result
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	if nil == p.dataAccess {
		return false
	}
	found, err := p.dataAccess.Has(p.prefixKey(key))
	logger.PanicIfError("pool.Has", err)
	return found
}
