// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"errors"
	"time"

	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/records"
)

// MarkFinalizing - the draft entered the signing/upload flow
func (e *DraftEngine) MarkFinalizing(id string) error {
	_, err := e.transition(id, records.StatusFinalizing)
	return err
}

// MarkFinalized - the document is complete
//
// the payload moves from the active blob to the finalized document
// file, the cache entry is dropped and the quota is re-evaluated
// immediately
func (e *DraftEngine) MarkFinalized(id string) error {
	doc, err := e.transition(id, records.StatusFinalized)
	if nil != err {
		return err
	}

	e.buffers.Evict(id)
	if nil != e.mirror {
		e.mirror.WriteFinalized(id, doc.Payload)
		e.mirror.RemoveActive(id)
	}

	e.Lock()
	if nil != e.store {
		e.recomputeMetadata(time.Time{})
		e.enforceQuota()
	}
	e.Unlock()
	return nil
}

// advance the status of a draft; status only ever moves forward, a
// backward or same-state transition is an error
func (e *DraftEngine) transition(id string, to records.Status) (*records.DraftDocument, error) {
	if err := e.isReady(); nil != err {
		return nil, err
	}
	if err := validateID(id); nil != err {
		return nil, err
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return nil, fault.ErrNotInitialised
	}

	now := time.Now()
	pool := e.store.Pool

	trx, err := e.store.NewTransaction()
	if nil != err {
		return nil, err
	}

	existing := e.getDraft(id)
	if nil == existing {
		trx.Abort()
		return nil, fault.ErrDraftNotFound
	}
	if !existing.Status.CanTransition(to) {
		trx.Abort()
		return nil, fault.ErrInvalidStatusTransition
	}

	updated := *existing
	updated.Status = to
	updated.LastModified = now

	packed, err := records.PackDraft(&updated)
	if nil != err {
		trx.Abort()
		return nil, err
	}
	trx.Put(pool.Drafts, records.DraftKey(id), packed)
	trx.Delete(pool.DraftExpiry, records.DraftExpiryKey(existing.Status, existing.LastModified, id))
	trx.Put(pool.DraftExpiry, records.DraftExpiryKey(updated.Status, updated.LastModified, id), []byte(id))

	if err := trx.Commit(); nil != err {
		trx.Abort()
		return nil, err
	}

	e.log.Infof("status: %q %s → %s", id, existing.Status, to)
	return &updated, nil
}

// CleanupOldDrafts - delete finalized drafts not modified within the
// retention window, returning the number removed
//
// zero or negative days selects the configured retention
func (e *DraftEngine) CleanupOldDrafts(daysOld int) (int, error) {
	if err := e.isReady(); nil != err {
		return 0, err
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return 0, fault.ErrNotInitialised
	}

	removed := e.cleanupOldDrafts(daysOld)
	e.recomputeMetadata(time.Now())
	return removed, nil
}

// scan stop sentinel, never escapes this file
var errScanDone = errors.New("scan done")

// caller must hold the engine lock
func (e *DraftEngine) cleanupOldDrafts(daysOld int) int {
	if daysOld <= 0 {
		daysOld = e.cfg.RetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	pool := e.store.Pool

	// expiry keys for one status are ordered by modification time, so
	// the scan can stop at the first draft inside the window
	ids := []string{}
	err := pool.DraftExpiry.NewPrefixCursor(records.DraftExpiryPrefix(records.StatusFinalized)).Map(func(key []byte, value []byte) error {
		modified, ok := records.DraftExpiryModifiedFromKey(key)
		if !ok {
			return nil
		}
		if !modified.Before(cutoff) {
			return errScanDone
		}
		id, ok := records.DraftExpiryIdFromKey(key)
		if !ok {
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if nil != err && errScanDone != err {
		e.log.Errorf("cleanup scan error: %s", err)
		return 0
	}
	if 0 == len(ids) {
		return 0
	}

	trx, err := e.store.NewTransaction()
	if nil != err {
		e.log.Errorf("cleanup transaction error: %s", err)
		return 0
	}
	for _, id := range ids {
		e.deleteDraftLocked(trx, id)
	}
	if err := trx.Commit(); nil != err {
		trx.Abort()
		e.log.Errorf("cleanup commit error: %s", err)
		return 0
	}

	for _, id := range ids {
		e.buffers.Evict(id)
		if nil != e.mirror {
			e.mirror.RemoveActive(id)
			e.mirror.RemoveFinalized(id)
		}
	}

	e.log.Infof("cleanup removed %d finalized drafts older than %d days", len(ids), daysOld)
	return len(ids)
}
