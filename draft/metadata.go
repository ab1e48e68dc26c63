// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"time"

	"github.com/universalautobrokers/draftstore/records"
)

// StorageStats - engine-wide usage readout
type StorageStats struct {
	DraftBytes     uint64
	VersionBytes   uint64
	TotalBytes     uint64
	DraftCount     uint64
	VersionCount   uint64
	QuotaBytes     uint64
	OverQuota      bool
	LastCleanup    time.Time
	CacheBytes     uint64
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
}

// GetStorageStats - current aggregate usage
func (e *DraftEngine) GetStorageStats() (StorageStats, error) {
	if err := e.isReady(); nil != err {
		return StorageStats{}, err
	}

	e.RLock()
	meta := records.StorageMetadata{}
	if nil != e.store {
		meta = e.readMetadata()
	}
	e.RUnlock()

	hits, misses, evictions := e.buffers.Statistics()
	return StorageStats{
		DraftBytes:     meta.DraftBytes,
		VersionBytes:   meta.VersionBytes,
		TotalBytes:     meta.TotalBytes(),
		DraftCount:     meta.DraftCount,
		VersionCount:   meta.VersionCount,
		QuotaBytes:     e.cfg.QuotaMaximumBytes,
		OverQuota:      meta.TotalBytes() > e.cfg.QuotaMaximumBytes,
		LastCleanup:    meta.LastCleanup,
		CacheBytes:     e.buffers.CurrentBytes(),
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheEvictions: evictions,
	}, nil
}

// read the metadata singleton; zero value when absent or corrupt
//
// caller must hold the engine lock
func (e *DraftEngine) readMetadata() records.StorageMetadata {
	value := e.store.Pool.Metadata.Get(records.MetadataKey())
	if nil == value {
		return records.StorageMetadata{}
	}
	meta, err := records.UnpackMetadata(value)
	if nil != err {
		e.log.Errorf("corrupt metadata record, recomputing")
		return records.StorageMetadata{}
	}
	return *meta
}

// recompute the metadata singleton from the actual records
//
// the aggregate is derived, never trusted as a running tally; this
// keeps sizes honest after any combination of saves, trims and
// deletions, and heals age-index entries orphaned by a corrupt
// snapshot deletion
//
// caller must hold the engine lock with no transaction open
func (e *DraftEngine) recomputeMetadata(cleanup time.Time) {
	pool := e.store.Pool

	meta := records.StorageMetadata{
		LastCleanup: e.readMetadata().LastCleanup,
	}
	if !cleanup.IsZero() {
		meta.LastCleanup = cleanup
	}

	err := pool.Drafts.NewFetchCursor().Map(func(key []byte, value []byte) error {
		doc, err := records.UnpackDraft(value)
		if nil != err {
			e.log.Warnf("skipping corrupt draft: %q", key)
			return nil
		}
		meta.DraftBytes += doc.Size
		meta.DraftCount += 1
		return nil
	})
	if nil != err {
		e.log.Errorf("metadata draft scan error: %s", err)
		return
	}

	orphans := [][]byte{}
	err = pool.VersionAge.NewFetchCursor().Map(func(key []byte, value []byte) error {
		versionKey, ok := records.VersionKeyFromAgeKey(key)
		if !ok {
			return nil
		}
		if !pool.Versions.Has(versionKey) {
			k := make([]byte, len(key))
			copy(k, key)
			orphans = append(orphans, k)
			return nil
		}
		size, _ := records.UnpackUint64(value)
		meta.VersionBytes += size
		meta.VersionCount += 1
		return nil
	})
	if nil != err {
		e.log.Errorf("metadata version scan error: %s", err)
		return
	}

	for _, key := range orphans {
		e.log.Warnf("removing orphaned age entry: %x", key)
		pool.VersionAge.Delete(key)
	}

	packed, err := records.PackMetadata(&meta)
	if nil != err {
		e.log.Errorf("pack metadata error: %s", err)
		return
	}
	pool.Metadata.Put(records.MetadataKey(), packed)
}
