// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"strings"
	"time"

	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/records"
	"github.com/universalautobrokers/draftstore/storage"
)

// document ids become file names and key components
func validateID(id string) error {
	if "" == id || strings.ContainsRune(id, 0) {
		return fault.ErrInvalidDocumentId
	}
	return nil
}

// SaveDraft - store a complete draft state, returning the assigned
// version number
//
// a save over an existing draft snapshots the replaced state into
// the version history under the new version number and diffs the
// field values into the change log; everything lands in one atomic
// batch
func (e *DraftEngine) SaveDraft(id string, buffer []byte, fieldValues map[string]string) (uint64, error) {
	if err := e.isReady(); nil != err {
		return 0, err
	}
	if err := validateID(id); nil != err {
		return 0, err
	}
	if 0 == len(buffer) {
		return 0, fault.ErrEmptyPayload
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return 0, fault.ErrNotInitialised
	}

	now := time.Now()
	pool := e.store.Pool

	trx, err := e.store.NewTransaction()
	if nil != err {
		return 0, err
	}

	existing := e.getDraft(id)

	doc := &records.DraftDocument{
		ID:           id,
		Version:      1,
		Payload:      append([]byte(nil), buffer...),
		FieldValues:  records.CopyFieldValues(fieldValues),
		CreatedAt:    now,
		LastModified: now,
		Status:       records.StatusDraft,
		Size:         uint64(len(buffer)),
		Checksum:     records.PayloadChecksum(buffer),
	}

	changed := 0
	if nil != existing {
		doc.Version = existing.Version + 1
		doc.CreatedAt = existing.CreatedAt
		doc.Status = existing.Status

		if err := e.snapshotVersion(trx, existing, doc.Version, now); nil != err {
			trx.Abort()
			return 0, err
		}
		changed = e.logChanges(trx, id, existing.FieldValues, fieldValues, now)
	}

	packed, err := records.PackDraft(doc)
	if nil != err {
		trx.Abort()
		return 0, err
	}
	trx.Put(pool.Drafts, records.DraftKey(id), packed)

	if nil != existing {
		trx.Delete(pool.DraftExpiry, records.DraftExpiryKey(existing.Status, existing.LastModified, id))
	}
	trx.Put(pool.DraftExpiry, records.DraftExpiryKey(doc.Status, doc.LastModified, id), []byte(id))

	if nil != existing {
		e.trimVersions(trx, id, 1)
		e.trimChanges(trx, id, changed)
	}

	if err := trx.Commit(); nil != err {
		trx.Abort()
		return 0, err
	}

	e.buffers.Put(id, buffer)
	if nil != e.mirror {
		e.mirror.WriteActive(id, buffer)
	}
	e.recomputeMetadata(time.Time{})
	e.enforceQuotaThrottled()

	e.log.Debugf("saved: %q version: %d size: %d", id, doc.Version, doc.Size)
	return doc.Version, nil
}

// LoadDraft - read the payload of a draft
//
// tiers are tried fastest first: buffer cache, record store, mirror
// active file, mirror finalized file; a hit from a slower tier is
// promoted into the cache; a zero-length buffer counts as a miss at
// every tier
func (e *DraftEngine) LoadDraft(id string) ([]byte, bool) {
	if err := e.isReady(); nil != err {
		return nil, false
	}
	if err := validateID(id); nil != err {
		return nil, false
	}

	if buffer, ok := e.buffers.Get(id); ok && len(buffer) > 0 {
		return buffer, true
	}

	e.RLock()
	doc := (*records.DraftDocument)(nil)
	if nil != e.store {
		doc = e.getDraft(id)
	}
	e.RUnlock()
	if nil != doc && len(doc.Payload) > 0 {
		buffer := doc.PayloadCopy()
		e.buffers.Put(id, buffer)
		return buffer, true
	}

	if nil != e.mirror {
		if buffer, ok := e.mirror.ReadActive(id); ok && len(buffer) > 0 {
			e.buffers.Put(id, buffer)
			return buffer, true
		}
		if buffer, ok := e.mirror.ReadFinalized(id); ok && len(buffer) > 0 {
			e.buffers.Put(id, buffer)
			return buffer, true
		}
	}
	return nil, false
}

// HasDraft - check a draft record exists in the store
func (e *DraftEngine) HasDraft(id string) bool {
	if err := e.isReady(); nil != err {
		return false
	}
	if err := validateID(id); nil != err {
		return false
	}
	e.RLock()
	defer e.RUnlock()
	if nil == e.store {
		return false
	}
	return e.store.Pool.Drafts.Has(records.DraftKey(id))
}

// GetDraftMetadata - draft metadata without the payload
func (e *DraftEngine) GetDraftMetadata(id string) (records.DraftInfo, bool) {
	if err := e.isReady(); nil != err {
		return records.DraftInfo{}, false
	}
	e.RLock()
	doc := (*records.DraftDocument)(nil)
	if nil != e.store {
		doc = e.getDraft(id)
	}
	e.RUnlock()
	if nil == doc {
		return records.DraftInfo{}, false
	}
	return doc.Info(), true
}

// GetFieldValues - a copy of the current field-value map
func (e *DraftEngine) GetFieldValues(id string) (map[string]string, bool) {
	if err := e.isReady(); nil != err {
		return nil, false
	}
	e.RLock()
	doc := (*records.DraftDocument)(nil)
	if nil != e.store {
		doc = e.getDraft(id)
	}
	e.RUnlock()
	if nil == doc {
		return nil, false
	}
	return doc.FieldValuesCopy(), true
}

// UpdateFieldValues - merge a partial field-value patch into an
// existing draft without touching the payload or version number
//
// the diffed fields are still recorded in the change log and the
// modification timestamp advances
func (e *DraftEngine) UpdateFieldValues(id string, fieldValues map[string]string) error {
	if err := e.isReady(); nil != err {
		return err
	}
	if err := validateID(id); nil != err {
		return err
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return fault.ErrNotInitialised
	}

	now := time.Now()
	pool := e.store.Pool

	trx, err := e.store.NewTransaction()
	if nil != err {
		return err
	}

	existing := e.getDraft(id)
	if nil == existing {
		trx.Abort()
		return fault.ErrDraftNotFound
	}

	changed := e.logChanges(trx, id, existing.FieldValues, fieldValues, now)

	updated := *existing
	updated.FieldValues = records.MergeFieldValues(existing.FieldValues, fieldValues)
	updated.LastModified = now

	packed, err := records.PackDraft(&updated)
	if nil != err {
		trx.Abort()
		return err
	}
	trx.Put(pool.Drafts, records.DraftKey(id), packed)
	trx.Delete(pool.DraftExpiry, records.DraftExpiryKey(existing.Status, existing.LastModified, id))
	trx.Put(pool.DraftExpiry, records.DraftExpiryKey(updated.Status, updated.LastModified, id), []byte(id))

	e.trimChanges(trx, id, changed)

	if err := trx.Commit(); nil != err {
		trx.Abort()
		return err
	}

	e.log.Debugf("updated fields: %q changed: %d", id, changed)
	return nil
}

// ListAllDrafts - metadata of every stored draft
//
// corrupt records are skipped, not fatal
func (e *DraftEngine) ListAllDrafts() ([]records.DraftInfo, error) {
	if err := e.isReady(); nil != err {
		return nil, err
	}

	e.RLock()
	defer e.RUnlock()
	if nil == e.store {
		return nil, fault.ErrNotInitialised
	}

	infos := []records.DraftInfo{}
	err := e.store.Pool.Drafts.NewFetchCursor().Map(func(key []byte, value []byte) error {
		doc, err := records.UnpackDraft(value)
		if nil != err {
			e.log.Warnf("skipping corrupt draft: %q", key)
			return nil
		}
		infos = append(infos, doc.Info())
		return nil
	})
	if nil != err {
		return nil, err
	}
	return infos, nil
}

// DeleteDraft - remove a draft and everything attached to it
//
// versions, change entries and mirrored files all go; deleting an
// absent draft is not an error
func (e *DraftEngine) DeleteDraft(id string) error {
	if err := e.isReady(); nil != err {
		return err
	}
	if err := validateID(id); nil != err {
		return err
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return fault.ErrNotInitialised
	}

	trx, err := e.store.NewTransaction()
	if nil != err {
		return err
	}

	e.deleteDraftLocked(trx, id)

	if err := trx.Commit(); nil != err {
		trx.Abort()
		return err
	}

	e.buffers.Evict(id)
	if nil != e.mirror {
		e.mirror.RemoveActive(id)
		e.mirror.RemoveFinalized(id)
	}
	e.recomputeMetadata(time.Time{})

	e.log.Infof("deleted: %q", id)
	return nil
}

// ClearAll - wipe every draft, version and change entry
func (e *DraftEngine) ClearAll() error {
	if err := e.isReady(); nil != err {
		return err
	}

	e.Lock()
	defer e.Unlock()
	if nil == e.store {
		return fault.ErrNotInitialised
	}

	pool := e.store.Pool

	// ids first, for the mirror removals after commit
	ids := []string{}
	err := pool.Drafts.NewFetchCursor().Map(func(key []byte, value []byte) error {
		ids = append(ids, string(key))
		return nil
	})
	if nil != err {
		return err
	}

	trx, err := e.store.NewTransaction()
	if nil != err {
		return err
	}

	for _, p := range []*storage.PoolHandle{
		pool.Drafts,
		pool.DraftExpiry,
		pool.Versions,
		pool.VersionAge,
		pool.Changes,
		pool.Metadata,
	} {
		handle := p
		err := handle.NewFetchCursor().Map(func(key []byte, value []byte) error {
			trx.Delete(handle, key)
			return nil
		})
		if nil != err {
			trx.Abort()
			return err
		}
	}

	if err := trx.Commit(); nil != err {
		trx.Abort()
		return err
	}

	e.buffers.Clear()
	if nil != e.mirror {
		for _, id := range ids {
			e.mirror.RemoveActive(id)
			e.mirror.RemoveFinalized(id)
		}
	}
	e.recomputeMetadata(time.Now())

	e.log.Infof("cleared %d drafts", len(ids))
	return nil
}

// read one draft record; nil on absent or corrupt
//
// caller must hold the engine lock
func (e *DraftEngine) getDraft(id string) *records.DraftDocument {
	value := e.store.Pool.Drafts.Get(records.DraftKey(id))
	if nil == value {
		return nil
	}
	doc, err := records.UnpackDraft(value)
	if nil != err {
		e.log.Errorf("corrupt draft record: %q", id)
		return nil
	}
	return doc
}

// queue deletion of a draft and all attached records into the open
// transaction, returning the store bytes that will be freed
//
// caller must hold the engine lock
func (e *DraftEngine) deleteDraftLocked(trx storage.Transaction, id string) uint64 {
	pool := e.store.Pool

	freed := uint64(0)

	existing := e.getDraft(id)
	if nil != existing {
		freed += existing.Size
		trx.Delete(pool.DraftExpiry, records.DraftExpiryKey(existing.Status, existing.LastModified, id))
	}
	trx.Delete(pool.Drafts, records.DraftKey(id))

	_ = pool.Versions.NewPrefixCursor(records.VersionPrefix(id)).Map(func(key []byte, value []byte) error {
		trx.Delete(pool.Versions, key)
		v, err := records.UnpackVersion(value)
		if nil != err {
			// orphaned age entry self-heals on the next recompute
			e.log.Warnf("corrupt version record: %q", key)
			return nil
		}
		freed += v.Size
		trx.Delete(pool.VersionAge, records.VersionAgeKey(v.CreatedAt, id, v.Version))
		return nil
	})

	_ = pool.Changes.NewPrefixCursor(records.ChangePrefix(id)).Map(func(key []byte, value []byte) error {
		trx.Delete(pool.Changes, key)
		return nil
	})

	return freed
}
