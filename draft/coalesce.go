// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/records"
)

// DefaultDebounceInterval - trailing-edge flush delay
const DefaultDebounceInterval = 300 * time.Millisecond

// Regenerator - rebuild the document payload from the coalesced
// field values
type Regenerator func(values map[string]string) ([]byte, error)

// FlushHandler - receive the regenerated payload and the field
// values that produced it; invoked once per flush
type FlushHandler func(buffer []byte, values map[string]string)

// UpdateQueue - debounced field-update coalescer
//
// the UI produces a field change per keystroke; regenerating the PDF
// for each would thrash the engine, so changes accumulate and a
// trailing timer flushes them as one batch; every new change restarts
// the timer
type UpdateQueue struct {
	sync.Mutex

	log        *logger.L
	regenerate Regenerator
	onFlush    FlushHandler
	interval   time.Duration
	pending    map[string]string
	timer      *time.Timer
	stopped    bool
}

// NewUpdateQueue - create a coalescer
//
// a zero or negative interval selects the default of 300 ms
func NewUpdateQueue(regenerate Regenerator, onFlush FlushHandler, interval time.Duration) *UpdateQueue {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &UpdateQueue{
		log:        logger.New("coalesce"),
		regenerate: regenerate,
		onFlush:    onFlush,
		interval:   interval,
		pending:    make(map[string]string),
	}
}

// Queue - record one field change and restart the flush timer
//
// a later value for the same field replaces the earlier one
func (q *UpdateQueue) Queue(field string, value string) error {
	q.Lock()
	defer q.Unlock()

	if q.stopped {
		return fault.ErrQueueStopped
	}

	q.pending[field] = value
	if nil != q.timer {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.interval, func() {
		q.flush()
	})
	return nil
}

// Flush - force an immediate flush of anything pending
//
// used before navigation or shutdown so no typed value is lost
func (q *UpdateQueue) Flush() {
	q.Lock()
	if nil != q.timer {
		q.timer.Stop()
		q.timer = nil
	}
	q.Unlock()
	q.flush()
}

// Stop - flush anything pending and refuse further changes
func (q *UpdateQueue) Stop() {
	q.Lock()
	q.stopped = true
	if nil != q.timer {
		q.timer.Stop()
		q.timer = nil
	}
	q.Unlock()
	q.flush()
}

// drain the pending set and run regeneration outside the lock
//
// a flush with nothing pending is a no-op, so a timer firing
// concurrently with an explicit Flush cannot double-deliver
func (q *UpdateQueue) flush() {
	q.Lock()
	if 0 == len(q.pending) {
		q.Unlock()
		return
	}
	values := q.pending
	q.pending = make(map[string]string)
	q.Unlock()

	buffer, err := q.regenerate(records.CopyFieldValues(values))
	if nil != err {
		q.log.Errorf("regenerate error: %s", err)
		return
	}
	q.onFlush(buffer, values)
}
