// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"time"

	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/records"
)

// EnforceQuota - force a quota evaluation now
//
// normal saves go through a rate-limited path; this one always runs
func (e *DraftEngine) EnforceQuota() error {
	if err := e.isReady(); nil != err {
		return err
	}
	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return fault.ErrNotInitialised
	}
	e.enforceQuota()
	return nil
}

// rate-limited sweep for the routine save path
//
// caller must hold the engine lock
func (e *DraftEngine) enforceQuotaThrottled() {
	if !e.limiter.Allow() {
		e.log.Debug("quota sweep throttled")
		return
	}
	e.enforceQuota()
}

// bring total store usage back under the quota
//
// the quota is soft: reclamation deletes finalized drafts oldest
// first, then old version snapshots oldest first; active drafts are
// never touched, so usage can legitimately stay over the limit
//
// caller must hold the engine lock with no transaction open
func (e *DraftEngine) enforceQuota() {
	meta := e.readMetadata()
	limit := e.cfg.QuotaMaximumBytes
	total := meta.TotalBytes()
	if total <= limit {
		return
	}

	e.log.Warnf("over quota: %d > %d", total, limit)
	pool := e.store.Pool

	trx, err := e.store.NewTransaction()
	if nil != err {
		e.log.Errorf("quota transaction error: %s", err)
		return
	}

	// phase one: whole finalized drafts, oldest modification first
	removed := []string{}
	removedIds := map[string]bool{}
	err = pool.DraftExpiry.NewPrefixCursor(records.DraftExpiryPrefix(records.StatusFinalized)).Map(func(key []byte, value []byte) error {
		if total <= limit {
			return errScanDone
		}
		id, ok := records.DraftExpiryIdFromKey(key)
		if !ok {
			return nil
		}
		freed := e.deleteDraftLocked(trx, id)
		total -= min64(freed, total)
		removed = append(removed, id)
		removedIds[id] = true
		return nil
	})
	if nil != err && errScanDone != err {
		e.log.Errorf("quota draft scan error: %s", err)
	}

	// phase two: individual version snapshots, oldest creation first
	//
	// the cursor still sees rows queued for deletion by phase one;
	// counting those again would end the sweep early, so they are
	// skipped by document id
	trimmed := 0
	if total > limit {
		err = pool.VersionAge.NewFetchCursor().Map(func(key []byte, value []byte) error {
			if total <= limit {
				return errScanDone
			}
			if id, ok := records.VersionAgeIdFromKey(key); ok && removedIds[id] {
				return nil
			}
			versionKey, ok := records.VersionKeyFromAgeKey(key)
			if !ok {
				return nil
			}
			trx.Delete(pool.VersionAge, key)
			trx.Delete(pool.Versions, versionKey)
			size, _ := records.UnpackUint64(value)
			total -= min64(size, total)
			trimmed += 1
			return nil
		})
		if nil != err && errScanDone != err {
			e.log.Errorf("quota version scan error: %s", err)
		}
	}

	if 0 == len(removed) && 0 == trimmed {
		trx.Abort()
	} else if err := trx.Commit(); nil != err {
		trx.Abort()
		e.log.Errorf("quota commit error: %s", err)
		return
	}

	for _, id := range removed {
		e.buffers.Evict(id)
		if nil != e.mirror {
			e.mirror.RemoveActive(id)
			e.mirror.RemoveFinalized(id)
		}
	}

	e.recomputeMetadata(time.Time{})

	if total > limit {
		e.log.Warnf("active drafts alone exceed quota: %d > %d", total, limit)
	}
	e.log.Infof("quota reclaimed: drafts: %d versions: %d", len(removed), trimmed)
}

func min64(a uint64, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
