// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"sort"
	"time"
)

// DraftDocument - the authoritative record of one in-progress document
//
// the record store owns this record; the buffer cache and the
// filesystem mirror only ever hold copies of the payload
type DraftDocument struct {
	ID           string            `cbor:"id"`
	Version      uint64            `cbor:"version"`
	Payload      []byte            `cbor:"payload"`
	FieldValues  map[string]string `cbor:"field_values"`
	CreatedAt    time.Time         `cbor:"created_at"`
	LastModified time.Time         `cbor:"last_modified"`
	Status       Status            `cbor:"status"`
	Size         uint64            `cbor:"size"`
	Checksum     Digest            `cbor:"checksum"`
}

// DraftInfo - draft metadata without the binary payload
type DraftInfo struct {
	ID           string
	Version      uint64
	Status       Status
	CreatedAt    time.Time
	LastModified time.Time
	Size         uint64
	Checksum     Digest
}

// Info - metadata view of a draft
func (d *DraftDocument) Info() DraftInfo {
	return DraftInfo{
		ID:           d.ID,
		Version:      d.Version,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		LastModified: d.LastModified,
		Size:         d.Size,
		Checksum:     d.Checksum,
	}
}

// PayloadCopy - a fresh copy of the payload, never the stored slice
func (d *DraftDocument) PayloadCopy() []byte {
	buffer := make([]byte, len(d.Payload))
	copy(buffer, d.Payload)
	return buffer
}

// FieldValuesCopy - a fresh copy of the field-value map
func (d *DraftDocument) FieldValuesCopy() map[string]string {
	return CopyFieldValues(d.FieldValues)
}

// CopyFieldValues - copy a field-value map
func CopyFieldValues(values map[string]string) map[string]string {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return m
}

// MergeFieldValues - merge a partial patch over a snapshot
//
// always returns a new map; neither input is modified
func MergeFieldValues(current map[string]string, patch map[string]string) map[string]string {
	m := make(map[string]string, len(current)+len(patch))
	for k, v := range current {
		m[k] = v
	}
	for k, v := range patch {
		m[k] = v
	}
	return m
}

// DraftVersion - immutable snapshot of a draft taken immediately
// before an overwrite
//
// the snapshot is retained under the version number of the save that
// replaced it, so after save N the history holds versions up to N;
// the payload is stored as a compressed snapshot frame; Size is the
// uncompressed payload size
type DraftVersion struct {
	DocumentID  string            `cbor:"document_id"`
	Version     uint64            `cbor:"version"`
	Payload     []byte            `cbor:"payload"`
	FieldValues map[string]string `cbor:"field_values"`
	CreatedAt   time.Time         `cbor:"created_at"`
	Size        uint64            `cbor:"size"`
}

// NewDraftVersion - snapshot the current state of a draft
//
// version is the number of the save replacing this state
func NewDraftVersion(d *DraftDocument, version uint64, now time.Time) *DraftVersion {
	return &DraftVersion{
		DocumentID:  d.ID,
		Version:     version,
		Payload:     CompressSnapshot(d.Payload),
		FieldValues: d.FieldValuesCopy(),
		CreatedAt:   now,
		Size:        d.Size,
	}
}

// PayloadCopy - expand the snapshot frame to a fresh payload copy
func (v *DraftVersion) PayloadCopy() ([]byte, error) {
	return ExpandSnapshot(v.Payload)
}

// Info - metadata view of a version snapshot
func (v *DraftVersion) Info() VersionInfo {
	return VersionInfo{
		Version:   v.Version,
		CreatedAt: v.CreatedAt,
		Size:      v.Size,
	}
}

// VersionInfo - version metadata without the payload
type VersionInfo struct {
	Version   uint64
	CreatedAt time.Time
	Size      uint64
}

// ChangeLogEntry - one field transition between two saves
//
// Present is false when the field was absent before this save
type ChangeLogEntry struct {
	DocumentID string    `cbor:"document_id"`
	Field      string    `cbor:"field"`
	OldValue   string    `cbor:"old_value"`
	NewValue   string    `cbor:"new_value"`
	Present    bool      `cbor:"present"`
	Timestamp  time.Time `cbor:"timestamp"`
}

// DiffFieldValues - produce one entry per field in newValues whose
// value differs from oldValues
//
// unchanged fields never produce an entry; a field absent from
// oldValues counts as changed; entries are ordered by field name so
// a diff is deterministic
func DiffFieldValues(documentID string, oldValues map[string]string, newValues map[string]string, now time.Time) []ChangeLogEntry {

	fields := make([]string, 0, len(newValues))
	for field := range newValues {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	entries := make([]ChangeLogEntry, 0, len(fields))
	for _, field := range fields {
		newValue := newValues[field]
		oldValue, present := oldValues[field]
		if present && oldValue == newValue {
			continue
		}
		entries = append(entries, ChangeLogEntry{
			DocumentID: documentID,
			Field:      field,
			OldValue:   oldValue,
			NewValue:   newValue,
			Present:    present,
			Timestamp:  now,
		})
	}
	return entries
}

// StorageMetadata - cached aggregate readout, recomputed from the
// draft and version records; never the source of truth
type StorageMetadata struct {
	DraftBytes   uint64    `cbor:"draft_bytes"`
	VersionBytes uint64    `cbor:"version_bytes"`
	DraftCount   uint64    `cbor:"draft_count"`
	VersionCount uint64    `cbor:"version_count"`
	LastCleanup  time.Time `cbor:"last_cleanup"`
}

// TotalBytes - aggregate of draft and version bytes
func (m *StorageMetadata) TotalBytes() uint64 {
	return m.DraftBytes + m.VersionBytes
}
