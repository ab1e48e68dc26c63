// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"time"

	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/records"
	"github.com/universalautobrokers/draftstore/storage"
)

// queue a snapshot of the pre-overwrite draft state into the
// transaction, retained under the version number of the replacing
// save so a history of N saves reads [N .. N-cap+1]
//
// caller must hold the engine lock
func (e *DraftEngine) snapshotVersion(trx storage.Transaction, existing *records.DraftDocument, replacedBy uint64, now time.Time) error {
	pool := e.store.Pool

	v := records.NewDraftVersion(existing, replacedBy, now)
	packed, err := records.PackVersion(v)
	if nil != err {
		return err
	}
	trx.Put(pool.Versions, records.VersionKey(v.DocumentID, v.Version), packed)
	trx.Put(pool.VersionAge, records.VersionAgeKey(now, v.DocumentID, v.Version), records.PackUint64(v.Size))
	return nil
}

// queue deletion of the oldest snapshots so the per-document count
// stays within the configured cap
//
// the cursor only sees committed snapshots, so the snapshot pending
// inside the transaction is accounted for by the pending count
func (e *DraftEngine) trimVersions(trx storage.Transaction, id string, pending int) {
	pool := e.store.Pool

	type entry struct {
		key     []byte
		created time.Time
		version uint64
	}
	entries := []entry{}

	// ascending version order
	_ = pool.Versions.NewPrefixCursor(records.VersionPrefix(id)).Map(func(key []byte, value []byte) error {
		v, err := records.UnpackVersion(value)
		if nil != err {
			e.log.Warnf("corrupt version record: %q", key)
			return nil
		}
		k := make([]byte, len(key))
		copy(k, key)
		entries = append(entries, entry{
			key:     k,
			created: v.CreatedAt,
			version: v.Version,
		})
		return nil
	})

	excess := len(entries) + pending - e.cfg.MaximumVersions
	for i := 0; i < excess && i < len(entries); i += 1 {
		trx.Delete(pool.Versions, entries[i].key)
		trx.Delete(pool.VersionAge, records.VersionAgeKey(entries[i].created, id, entries[i].version))
	}
}

// GetVersionHistory - version metadata of one draft, newest first
func (e *DraftEngine) GetVersionHistory(id string) ([]records.VersionInfo, error) {
	if err := e.isReady(); nil != err {
		return nil, err
	}
	if err := validateID(id); nil != err {
		return nil, err
	}

	e.RLock()
	defer e.RUnlock()
	if nil == e.store {
		return nil, fault.ErrNotInitialised
	}

	infos := []records.VersionInfo{}
	err := e.store.Pool.Versions.NewPrefixCursor(records.VersionPrefix(id)).Map(func(key []byte, value []byte) error {
		v, err := records.UnpackVersion(value)
		if nil != err {
			e.log.Warnf("corrupt version record: %q", key)
			return nil
		}
		infos = append(infos, v.Info())
		return nil
	})
	if nil != err {
		return nil, err
	}

	// scan order is oldest first
	for i, j := 0, len(infos)-1; i < j; i, j = i+1, j-1 {
		infos[i], infos[j] = infos[j], infos[i]
	}
	return infos, nil
}

// LoadVersion - the payload of one historical snapshot
//
// a corrupt or missing snapshot is a miss
func (e *DraftEngine) LoadVersion(id string, version uint64) ([]byte, bool) {
	if err := e.isReady(); nil != err {
		return nil, false
	}
	if err := validateID(id); nil != err {
		return nil, false
	}

	e.RLock()
	value := []byte(nil)
	if nil != e.store {
		value = e.store.Pool.Versions.Get(records.VersionKey(id, version))
	}
	e.RUnlock()
	if nil == value {
		return nil, false
	}
	v, err := records.UnpackVersion(value)
	if nil != err {
		e.log.Errorf("corrupt version record: %q version: %d", id, version)
		return nil, false
	}
	buffer, err := v.PayloadCopy()
	if nil != err {
		e.log.Errorf("corrupt version payload: %q version: %d", id, version)
		return nil, false
	}
	return buffer, true
}
