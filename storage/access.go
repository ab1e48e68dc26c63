// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/fault"
)

// Access - raw keyed access to the database
//
// while a batch is in use all writes are accumulated and become
// visible to Get/Has through the overlay cache; Commit writes the
// whole batch atomically
type Access interface {
	Abort()
	Begin() error
	Commit() error
	Delete([]byte)
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	InUse() bool
	Iterator(*ldb_util.Range) iterator.Iterator
	Put([]byte, []byte)
}

type accessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
	log   *logger.L
}

func newAccess(db *leveldb.DB, cache Cache, log *logger.L) Access {
	return &accessData{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
		log:   log,
	}
}

func (d *accessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.ErrTransactionAlreadyInUse
	}

	d.inUse = true
	return nil
}

func (d *accessData) Put(key []byte, value []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.cache.Set(dbPut, string(key), value)
		d.batch.Put(key, value)
		return
	}
	err := d.db.Put(key, value, nil)
	logger.PanicIfError("access.Put", err)
}

func (d *accessData) Delete(key []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.cache.Set(dbDelete, string(key), []byte{})
		d.batch.Delete(key)
		return
	}
	err := d.db.Delete(key, nil)
	logger.PanicIfError("access.Delete", err)
}

func (d *accessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	if nil != err {
		return err
	}
	// cache entries now describe committed state so they stay
	d.batch.Reset()
	d.inUse = false
	return nil
}

func (d *accessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

func (d *accessData) Get(key []byte) ([]byte, error) {
	value, op, found := d.cache.Get(string(key))
	if found {
		if dbDelete == op {
			return nil, leveldb.ErrNotFound
		}
		return value, nil
	}
	return d.db.Get(key, nil)
}

func (d *accessData) Has(key []byte) (bool, error) {
	_, op, found := d.cache.Get(string(key))
	if found {
		return dbPut == op, nil
	}
	return d.db.Has(key, nil)
}

func (d *accessData) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}

func (d *accessData) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}
