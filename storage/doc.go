// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the persistent draft object store
//
//  ***** Pool Structure *****
//
//  Pool          Prefix  Key                                  Value
//  |___ Drafts        D  id                                   packed DraftDocument
//  |___ DraftExpiry   E  status ‖ modifiedNs ‖ id             id
//  |___ Versions      V  id ‖ NUL ‖ versionBE                 packed DraftVersion
//  |___ VersionAge    W  createdNs ‖ id ‖ NUL ‖ versionBE     sizeBE
//  |___ Changes       C  id ‖ NUL ‖ timestampNs ‖ field       packed ChangeLogEntry
//  |___ Metadata      M  "metadata"                           packed StorageMetadata
//
//  ***** Purpose *****
//
//  Drafts:
//    the authoritative record of every in-progress document
//
//  DraftExpiry:
//    secondary index so quota pruning and old-draft cleanup can scan
//    finalized drafts in oldest-first order without touching payloads
//
//  Versions / VersionAge:
//    bounded per-document version history plus a global oldest-first
//    index used by the second quota pruning phase
//
//  Changes:
//    bounded per-document field-level edit log
//
//  Metadata:
//    cached aggregate byte totals, recomputed from the other pools
//
// all pools live in a single levelDB database; a mutation that spans
// several pools is accumulated in one batch and committed atomically
package storage
