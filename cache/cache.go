// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cache

import (
	"sync"

	"github.com/universalautobrokers/draftstore/counter"
)

// DefaultMaximumBytes - byte budget when none is configured (50 MB)
const DefaultMaximumBytes = 50 * 1024 * 1024

// BufferCache - bounded in-process cache of recently used binary
// documents keyed by document id
//
// every buffer crossing the cache boundary is transferred by value: a
// put stores a private copy and a get returns a fresh copy, so no
// caller can invalidate another holder's bytes by detaching or
// rewriting a shared buffer
//
// eviction is strict insertion order (FIFO); a get does not refresh
// recency
type BufferCache struct {
	sync.Mutex

	maximumBytes uint64
	entries      map[string][]byte
	order        []string // ids in insertion order, oldest first

	currentBytes counter.Counter
	hits         counter.Counter
	misses       counter.Counter
	evictions    counter.Counter
}

// New - create a cache with a byte budget
//
// a zero or negative budget selects the default
func New(maximumBytes uint64) *BufferCache {
	if 0 == maximumBytes {
		maximumBytes = DefaultMaximumBytes
	}
	return &BufferCache{
		maximumBytes: maximumBytes,
		entries:      make(map[string][]byte),
		order:        make([]string, 0, 16),
	}
}

// Put - store a private copy of a buffer
//
// replaces any existing entry for the id; evicts oldest-inserted
// entries once cumulative bytes would exceed the budget; a buffer
// larger than the whole budget is simply not cached
func (c *BufferCache) Put(id string, buffer []byte) {
	c.Lock()
	defer c.Unlock()

	c.removeLocked(id)

	size := uint64(len(buffer))
	if size > c.maximumBytes {
		return
	}

	for c.currentBytes.Uint64()+size > c.maximumBytes && len(c.order) > 0 {
		oldest := c.order[0]
		c.removeLocked(oldest)
		c.evictions.Increment()
	}

	private := make([]byte, len(buffer))
	copy(private, buffer)
	c.entries[id] = private
	c.order = append(c.order, id)
	c.currentBytes.Add(size)
}

// Get - fetch a fresh copy of a cached buffer
func (c *BufferCache) Get(id string) ([]byte, bool) {
	c.Lock()
	defer c.Unlock()

	stored, ok := c.entries[id]
	if !ok {
		c.misses.Increment()
		return nil, false
	}
	c.hits.Increment()

	buffer := make([]byte, len(stored))
	copy(buffer, stored)
	return buffer, true
}

// Evict - drop one entry
func (c *BufferCache) Evict(id string) {
	c.Lock()
	c.removeLocked(id)
	c.Unlock()
}

// Clear - drop all entries
func (c *BufferCache) Clear() {
	c.Lock()
	c.entries = make(map[string][]byte)
	c.order = c.order[:0]
	c.currentBytes.Sub(c.currentBytes.Uint64())
	c.Unlock()
}

// CurrentBytes - cumulative size of all cached buffers
func (c *BufferCache) CurrentBytes() uint64 {
	return c.currentBytes.Uint64()
}

// Statistics - cache effectiveness readout
func (c *BufferCache) Statistics() (hits uint64, misses uint64, evictions uint64) {
	return c.hits.Uint64(), c.misses.Uint64(), c.evictions.Uint64()
}

// internal: must hold lock
func (c *BufferCache) removeLocked(id string) {
	stored, ok := c.entries[id]
	if !ok {
		return
	}
	delete(c.entries, id)
	c.currentBytes.Sub(uint64(len(stored)))
	for i, queued := range c.order {
		if queued == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
