// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/binary"
	"time"
)

// key layouts within the storage pools
//
//   Drafts:      id                                  → DraftDocument
//   DraftExpiry: status ‖ modifiedNs ‖ id            → id
//   Versions:    id ‖ 0x00 ‖ versionBE               → DraftVersion
//   VersionAge:  createdNs ‖ id ‖ 0x00 ‖ versionBE   → sizeBE
//   Changes:     id ‖ 0x00 ‖ timestampNs ‖ field     → ChangeLogEntry
//   Metadata:    "metadata"                          → StorageMetadata
//
// timestamps and version numbers are big endian so lexical key order
// is chronological / numeric order; document ids must not contain NUL

const keySeparator = 0x00

// metadataKey - the single metadata row
var metadataKey = []byte("metadata")

// MetadataKey - key of the metadata singleton
func MetadataKey() []byte {
	return metadataKey
}

// PackUint64 - 8-byte big endian encoding
func PackUint64(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// UnpackUint64 - decode 8-byte big endian, false on short input
func UnpackUint64(b []byte) (uint64, bool) {
	if len(b) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b[:8]), true
}

// PackTimestamp - nanosecond timestamp as 8-byte big endian
func PackTimestamp(t time.Time) []byte {
	return PackUint64(uint64(t.UnixNano()))
}

// DraftKey - key of a draft document
func DraftKey(id string) []byte {
	return []byte(id)
}

// DraftExpiryKey - secondary index key ordered by status then age
func DraftExpiryKey(status Status, modified time.Time, id string) []byte {
	key := make([]byte, 0, 9+len(id))
	key = append(key, byte(status))
	key = append(key, PackTimestamp(modified)...)
	return append(key, id...)
}

// DraftExpiryPrefix - scan prefix for one status
func DraftExpiryPrefix(status Status) []byte {
	return []byte{byte(status)}
}

// DraftExpiryIdFromKey - recover the document id from an expiry key
func DraftExpiryIdFromKey(key []byte) (string, bool) {
	if len(key) < 10 {
		return "", false
	}
	return string(key[9:]), true
}

// DraftExpiryModifiedFromKey - recover the modification time from an
// expiry key
func DraftExpiryModifiedFromKey(key []byte) (time.Time, bool) {
	if len(key) < 9 {
		return time.Time{}, false
	}
	ns, _ := UnpackUint64(key[1:9])
	return time.Unix(0, int64(ns)), true
}

// VersionKey - key of one version snapshot
func VersionKey(id string, version uint64) []byte {
	key := make([]byte, 0, len(id)+9)
	key = append(key, id...)
	key = append(key, keySeparator)
	return append(key, PackUint64(version)...)
}

// VersionPrefix - scan prefix for all versions of one document
func VersionPrefix(id string) []byte {
	key := make([]byte, 0, len(id)+1)
	key = append(key, id...)
	return append(key, keySeparator)
}

// VersionNumberFromKey - recover the version number from a version key
func VersionNumberFromKey(key []byte) (uint64, bool) {
	if len(key) < 9 {
		return 0, false
	}
	return UnpackUint64(key[len(key)-8:])
}

// VersionAgeKey - global index key ordered by snapshot creation time
func VersionAgeKey(created time.Time, id string, version uint64) []byte {
	key := make([]byte, 0, 8+len(id)+9)
	key = append(key, PackTimestamp(created)...)
	key = append(key, id...)
	key = append(key, keySeparator)
	return append(key, PackUint64(version)...)
}

// VersionAgeIdFromKey - the document id embedded in an age key
func VersionAgeIdFromKey(key []byte) (string, bool) {
	if len(key) < 18 { // timestamp + 1 char id + separator + version
		return "", false
	}
	return string(key[8 : len(key)-9]), true
}

// VersionKeyFromAgeKey - the Versions pool key embedded in an age key
func VersionKeyFromAgeKey(key []byte) ([]byte, bool) {
	if len(key) < 18 { // timestamp + 1 char id + separator + version
		return nil, false
	}
	versionKey := make([]byte, len(key)-8)
	copy(versionKey, key[8:])
	return versionKey, true
}

// ChangeKey - key of one change-log entry
func ChangeKey(id string, timestamp time.Time, field string) []byte {
	key := make([]byte, 0, len(id)+9+len(field))
	key = append(key, id...)
	key = append(key, keySeparator)
	key = append(key, PackTimestamp(timestamp)...)
	return append(key, field...)
}

// ChangePrefix - scan prefix for all change entries of one document
func ChangePrefix(id string) []byte {
	return VersionPrefix(id)
}
