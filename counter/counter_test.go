// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"testing"

	"github.com/universalautobrokers/draftstore/counter"
)

func TestCounter(t *testing.T) {
	var c counter.Counter

	if !c.IsZero() {
		t.Fatalf("new counter is not zero")
	}

	if 1 != c.Increment() {
		t.Errorf("increment did not return 1")
	}
	c.Increment()
	c.Increment()
	if 3 != c.Uint64() {
		t.Errorf("expected 3, got: %d", c.Uint64())
	}
	if 2 != c.Decrement() {
		t.Errorf("decrement did not return 2")
	}
}

func TestCounterAddSub(t *testing.T) {
	var c counter.Counter

	if 1000 != c.Add(1000) {
		t.Errorf("add did not return 1000")
	}
	if 300 != c.Sub(700) {
		t.Errorf("sub did not return 300")
	}
	c.Sub(300)
	if !c.IsZero() {
		t.Errorf("counter did not return to zero")
	}
}
