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

// queue change-log entries for every field of the patch that differs
// from the prior values, returning the entry count
//
// caller must hold the engine lock
func (e *DraftEngine) logChanges(trx storage.Transaction, id string, oldValues map[string]string, newValues map[string]string, now time.Time) int {
	pool := e.store.Pool

	entries := records.DiffFieldValues(id, oldValues, newValues, now)
	for i := range entries {
		packed, err := records.PackChange(&entries[i])
		if nil != err {
			e.log.Errorf("pack change: %q field: %q error: %s", id, entries[i].Field, err)
			continue
		}
		trx.Put(pool.Changes, records.ChangeKey(id, now, entries[i].Field), packed)
	}
	return len(entries)
}

// queue deletion of the oldest change entries so the per-document
// count stays within the configured cap
//
// committed entries plus the pending count from this transaction
func (e *DraftEngine) trimChanges(trx storage.Transaction, id string, pending int) {
	pool := e.store.Pool

	// ascending timestamp order
	keys := [][]byte{}
	_ = pool.Changes.NewPrefixCursor(records.ChangePrefix(id)).Map(func(key []byte, value []byte) error {
		k := make([]byte, len(key))
		copy(k, key)
		keys = append(keys, k)
		return nil
	})

	excess := len(keys) + pending - e.cfg.MaximumChanges
	for i := 0; i < excess && i < len(keys); i += 1 {
		trx.Delete(pool.Changes, keys[i])
	}
}

// GetChangeHistory - recent change entries of one draft, newest first
//
// limit zero or negative selects the default of 50
func (e *DraftEngine) GetChangeHistory(id string, limit int) ([]records.ChangeLogEntry, error) {
	if err := e.isReady(); nil != err {
		return nil, err
	}
	if err := validateID(id); nil != err {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultChangeHistoryLimit
	}

	e.RLock()
	defer e.RUnlock()
	if nil == e.store {
		return nil, fault.ErrNotInitialised
	}

	entries := []records.ChangeLogEntry{}
	err := e.store.Pool.Changes.NewPrefixCursor(records.ChangePrefix(id)).Map(func(key []byte, value []byte) error {
		c, err := records.UnpackChange(value)
		if nil != err {
			e.log.Warnf("corrupt change record: %q", key)
			return nil
		}
		entries = append(entries, *c)
		return nil
	})
	if nil != err {
		return nil, err
	}

	// scan order is oldest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
