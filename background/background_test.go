// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/universalautobrokers/draftstore/background"
)

type ticker struct {
	count *uint64
}

func (t *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	interval := args.(time.Duration)
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			atomic.AddUint64(t.count, 1)
		case <-shutdown:
			return
		}
	}
}

func TestStartStop(t *testing.T) {
	var n1, n2 uint64

	processes := background.Processes{
		&ticker{count: &n1},
		&ticker{count: &n2},
	}

	bg := background.Start(processes, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	bg.Stop()

	if 0 == atomic.LoadUint64(&n1) || 0 == atomic.LoadUint64(&n2) {
		t.Fatalf("background processes did not run")
	}

	// stop must have terminated the processes
	c1 := atomic.LoadUint64(&n1)
	time.Sleep(50 * time.Millisecond)
	if c1 != atomic.LoadUint64(&n1) {
		t.Errorf("process still running after stop")
	}
}

func TestStopNil(t *testing.T) {
	var bg *background.T
	bg.Stop() // must not panic
}
