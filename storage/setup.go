// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/fault"
)

// storage pools
//
// note all fields must be exported (i.e. initial capital) or
// initialisation will panic
type pools struct {
	Drafts      *PoolHandle `prefix:"D"`
	DraftExpiry *PoolHandle `prefix:"E"`
	Versions    *PoolHandle `prefix:"V"`
	VersionAge  *PoolHandle `prefix:"W"`
	Changes     *PoolHandle `prefix:"C"`
	Metadata    *PoolHandle `prefix:"M"`
}

// Store - one open draft database
//
// constructed once per process and handed to the engine; there is no
// package-level global instance
type Store struct {
	sync.RWMutex

	// Pool - the set of pools of this store
	Pool pools

	log      *logger.L
	db       *leveldb.DB
	access   Access
	trx      Transaction
	readOnly bool
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDatabaseVersion = 0x101

// file name inside the database directory
const databaseFileName = "drafts.leveldb"

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Initialise - open the draft database in the given directory
//
// a missing database is created unless read-only was requested; the
// stored format version is verified so a newer on-disk format is
// never opened by older software
func Initialise(directory string, readOnly bool) (*Store, error) {

	log := logger.New("storage")

	databasePath := filepath.Join(directory, databaseFileName)

	db, version, err := openDatabase(databasePath, readOnly)
	if nil != err {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	if version > currentDatabaseVersion {
		log.Criticalf("database version: %d > current version: %d", version, currentDatabaseVersion)
		return nil, fault.ErrWrongDatabaseVersion
	}

	if 0 == version && !readOnly {
		// database was empty so tag as current version
		err = putVersion(db, currentDatabaseVersion)
		if nil != err {
			return nil, err
		}
	}

	store := &Store{
		log:      log,
		db:       db,
		readOnly: readOnly,
	}
	store.access = newAccess(db, newCache(), log)
	store.trx = newTransaction(store.access)

	// this will be a struct type
	poolType := reflect.TypeOf(store.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&store.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: store.access,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	log.Infof("opened: %s", databasePath)

	ok = true // prevent db close
	return store, nil
}

// Finalise - close the database
func (store *Store) Finalise() {
	store.Lock()
	defer store.Unlock()

	if nil == store.db {
		return
	}
	store.db.Close()
	store.db = nil
	store.log.Info("closed")
}

// IsReadOnly - access mode of this store
func (store *Store) IsReadOnly() bool {
	return store.readOnly
}

// NewTransaction - begin the store-wide batch transaction
//
// only one transaction can be in flight; the engine serialises its
// mutating operations so this never contends in normal use
func (store *Store) NewTransaction() (Transaction, error) {
	err := store.trx.Begin()
	if nil != err {
		return nil, err
	}
	return store.trx, nil
}

// return:
//   database handle
//   version number
func openDatabase(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
