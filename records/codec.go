// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/universalautobrokers/draftstore/fault"
)

// encMode is configured with Core Deterministic Encoding so the same
// logical record always produces identical bytes; timestamps keep
// nanosecond precision
var encMode cbor.EncMode

// decMode accepts standard CBOR; unknown fields are ignored so old
// software can read records written by newer versions
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if nil != err {
		panic("records: CBOR encoder initialisation failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if nil != err {
		panic("records: CBOR decoder initialisation failed: " + err.Error())
	}
}

// PackDraft - encode a draft document
func PackDraft(d *DraftDocument) ([]byte, error) {
	return encMode.Marshal(d)
}

// UnpackDraft - decode a draft document
//
// a zero-length or undecodable record is corrupt
func UnpackDraft(data []byte) (*DraftDocument, error) {
	if 0 == len(data) {
		return nil, fault.ErrCorruptRecord
	}
	d := &DraftDocument{}
	if err := decMode.Unmarshal(data, d); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	return d, nil
}

// PackVersion - encode a version snapshot
func PackVersion(v *DraftVersion) ([]byte, error) {
	return encMode.Marshal(v)
}

// UnpackVersion - decode a version snapshot
func UnpackVersion(data []byte) (*DraftVersion, error) {
	if 0 == len(data) {
		return nil, fault.ErrCorruptRecord
	}
	v := &DraftVersion{}
	if err := decMode.Unmarshal(data, v); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	return v, nil
}

// PackChange - encode a change-log entry
func PackChange(c *ChangeLogEntry) ([]byte, error) {
	return encMode.Marshal(c)
}

// UnpackChange - decode a change-log entry
func UnpackChange(data []byte) (*ChangeLogEntry, error) {
	if 0 == len(data) {
		return nil, fault.ErrCorruptRecord
	}
	c := &ChangeLogEntry{}
	if err := decMode.Unmarshal(data, c); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	return c, nil
}

// PackMetadata - encode the metadata singleton
func PackMetadata(m *StorageMetadata) ([]byte, error) {
	return encMode.Marshal(m)
}

// UnpackMetadata - decode the metadata singleton
func UnpackMetadata(data []byte) (*StorageMetadata, error) {
	if 0 == len(data) {
		return nil, fault.ErrCorruptRecord
	}
	m := &StorageMetadata{}
	if err := decMode.Unmarshal(data, m); nil != err {
		return nil, fault.ErrCorruptRecord
	}
	return m, nil
}
