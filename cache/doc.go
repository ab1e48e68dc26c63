// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cache - the in-memory tier of the draft store
//
// holds copies of recently used document payloads so repeated loads
// of the same draft do not touch levelDB; never the source of truth
package cache
