// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package draft - the local draft document storage engine
//
// holds in-progress PDF paperwork before it is finalized and
// uploaded, layered over three tiers:
//
//   buffer cache  →  record store  →  filesystem mirror
//
// writes always land in the record store, are cached, and are
// mirrored best-effort; reads try the fastest tier first and
// repopulate it from slower tiers on a hit
//
// each overwrite snapshots the replaced state into a bounded version
// history under the new save's number, diffs the field values into a
// bounded change log and re-evaluates the storage quota
package draft
