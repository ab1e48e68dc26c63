// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cache_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/universalautobrokers/draftstore/cache"
)

func TestPutGet(t *testing.T) {
	c := cache.New(1024)

	c.Put("doc-1", []byte("payload one"))
	buffer, ok := c.Get("doc-1")
	assert.True(t, ok)
	assert.Equal(t, []byte("payload one"), buffer)

	_, ok = c.Get("doc-2")
	assert.False(t, ok)

	assert.Equal(t, uint64(len("payload one")), c.CurrentBytes())
}

// the central invariant: buffers cross the boundary by value
func TestNonAliasing(t *testing.T) {
	c := cache.New(1024)

	original := []byte("immutable payload")
	c.Put("doc", original)

	// mutating the caller's buffer must not change the cached copy
	original[0] = 'X'
	first, ok := c.Get("doc")
	assert.True(t, ok)
	assert.Equal(t, []byte("immutable payload"), first)

	// mutating a returned buffer must not change later gets
	first[0] = 'Y'
	second, ok := c.Get("doc")
	assert.True(t, ok)
	assert.Equal(t, []byte("immutable payload"), second)

	// distinct slices every time
	assert.False(t, &first[0] == &second[0])
}

// eviction is insertion order, not recency of use
func TestFIFOEviction(t *testing.T) {
	c := cache.New(30)

	c.Put("a", bytes.Repeat([]byte{'a'}, 10))
	c.Put("b", bytes.Repeat([]byte{'b'}, 10))
	c.Put("c", bytes.Repeat([]byte{'c'}, 10))

	// read "a" repeatedly; a FIFO cache must still evict it first
	c.Get("a")
	c.Get("a")

	c.Put("d", bytes.Repeat([]byte{'d'}, 10))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest-inserted entry survived")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	_, ok = c.Get("d")
	assert.True(t, ok)

	assert.Equal(t, uint64(30), c.CurrentBytes())

	_, _, evictions := c.Statistics()
	assert.Equal(t, uint64(1), evictions)
}

func TestReplaceSameId(t *testing.T) {
	c := cache.New(100)

	c.Put("doc", bytes.Repeat([]byte{'1'}, 40))
	c.Put("doc", bytes.Repeat([]byte{'2'}, 60))

	assert.Equal(t, uint64(60), c.CurrentBytes())
	buffer, ok := c.Get("doc")
	assert.True(t, ok)
	assert.Equal(t, byte('2'), buffer[0])

	// replacement refreshes insertion position
	c.Put("other", bytes.Repeat([]byte{'3'}, 40))
	c.Put("doc", bytes.Repeat([]byte{'4'}, 60))
	c.Put("third", bytes.Repeat([]byte{'5'}, 40))

	_, ok = c.Get("other")
	assert.False(t, ok, "oldest entry survived")
	_, ok = c.Get("doc")
	assert.True(t, ok)
}

func TestOversizeBuffer(t *testing.T) {
	c := cache.New(10)

	c.Put("small", []byte("1234"))
	c.Put("huge", bytes.Repeat([]byte{'x'}, 100))

	// the oversize buffer is not cached and evicted nothing
	_, ok := c.Get("huge")
	assert.False(t, ok)
	_, ok = c.Get("small")
	assert.True(t, ok)
	assert.Equal(t, uint64(4), c.CurrentBytes())
}

func TestEvictAndClear(t *testing.T) {
	c := cache.New(1024)

	c.Put("one", []byte("11111"))
	c.Put("two", []byte("22222"))

	c.Evict("one")
	_, ok := c.Get("one")
	assert.False(t, ok)
	assert.Equal(t, uint64(5), c.CurrentBytes())

	// evicting an absent id is harmless
	c.Evict("never-stored")

	c.Clear()
	_, ok = c.Get("two")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), c.CurrentBytes())
}

func TestZeroLengthBuffer(t *testing.T) {
	c := cache.New(1024)

	// the cache itself stores empty buffers; corruption policy is the
	// engine's concern
	c.Put("empty", []byte{})
	buffer, ok := c.Get("empty")
	assert.True(t, ok)
	assert.Equal(t, 0, len(buffer))
}
