// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalautobrokers/draftstore/draft"
	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/fixtures"
)

// collects flush deliveries for inspection
type flushRecorder struct {
	sync.Mutex
	flushes []map[string]string
	buffers [][]byte
}

func (r *flushRecorder) handle(buffer []byte, values map[string]string) {
	r.Lock()
	r.flushes = append(r.flushes, values)
	r.buffers = append(r.buffers, buffer)
	r.Unlock()
}

func (r *flushRecorder) count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.flushes)
}

func regenerateJoin(values map[string]string) ([]byte, error) {
	return append([]byte("pdf:"), byte('0'+len(values))), nil
}

func TestQueueCoalescesBurst(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	recorder := &flushRecorder{}
	q := draft.NewUpdateQueue(regenerateJoin, recorder.handle, 50*time.Millisecond)
	defer q.Stop()

	// a typing burst: many changes, later value wins
	require.NoError(t, q.Queue("buyer_name", "P"))
	require.NoError(t, q.Queue("buyer_name", "Pa"))
	require.NoError(t, q.Queue("buyer_name", "Pat"))
	require.NoError(t, q.Queue("price", "25000"))

	assert.Zero(t, recorder.count(), "flushed before the quiet period")

	time.Sleep(200 * time.Millisecond)

	require.Equal(t, 1, recorder.count(), "burst must flush exactly once")
	recorder.Lock()
	assert.Equal(t, map[string]string{"buyer_name": "Pat", "price": "25000"}, recorder.flushes[0])
	recorder.Unlock()
}

func TestQueueTimerRestarts(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	recorder := &flushRecorder{}
	q := draft.NewUpdateQueue(regenerateJoin, recorder.handle, 80*time.Millisecond)
	defer q.Stop()

	// keep typing faster than the interval
	for i := 0; i < 4; i += 1 {
		require.NoError(t, q.Queue("vin", "1HGBH41JXMN10918"))
		time.Sleep(30 * time.Millisecond)
	}
	assert.Zero(t, recorder.count(), "timer not restarted by later changes")

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 1, recorder.count())
}

func TestFlushImmediate(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	recorder := &flushRecorder{}
	q := draft.NewUpdateQueue(regenerateJoin, recorder.handle, time.Hour)
	defer q.Stop()

	require.NoError(t, q.Queue("price", "25000"))
	q.Flush()

	require.Equal(t, 1, recorder.count())

	// nothing pending means nothing delivered
	q.Flush()
	assert.Equal(t, 1, recorder.count())
}

func TestStopDrainsAndRefuses(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	recorder := &flushRecorder{}
	q := draft.NewUpdateQueue(regenerateJoin, recorder.handle, time.Hour)

	require.NoError(t, q.Queue("price", "25000"))
	q.Stop()

	assert.Equal(t, 1, recorder.count(), "pending changes lost on stop")
	assert.Equal(t, fault.ErrQueueStopped, q.Queue("price", "26000"))
}

func TestRegenerateFailure(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	recorder := &flushRecorder{}
	broken := func(values map[string]string) ([]byte, error) {
		return nil, errors.New("render failed")
	}
	q := draft.NewUpdateQueue(broken, recorder.handle, 30*time.Millisecond)
	defer q.Stop()

	require.NoError(t, q.Queue("price", "25000"))
	time.Sleep(150 * time.Millisecond)

	assert.Zero(t, recorder.count(), "failed regeneration must not deliver")
}
