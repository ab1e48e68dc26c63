// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"

	"github.com/universalautobrokers/draftstore/fault"
)

// snapshot frame compression tags, stored in the first frame byte
// these values are storage format constants
const (
	compressionNone byte = 0
	compressionLZ4  byte = 1
)

// frame layout: 1 tag byte + 8-byte big endian uncompressed size + body
const snapshotHeaderLength = 9

// CompressSnapshot - wrap a payload in a snapshot frame
//
// the payload is LZ4 block compressed unless that would not shrink
// it (already-compressed PDF streams are common), in which case it
// is framed uncompressed
func CompressSnapshot(data []byte) []byte {

	header := func(tag byte, body []byte) []byte {
		frame := make([]byte, snapshotHeaderLength+len(body))
		frame[0] = tag
		binary.BigEndian.PutUint64(frame[1:snapshotHeaderLength], uint64(len(data)))
		copy(frame[snapshotHeaderLength:], body)
		return frame
	}

	if 0 == len(data) {
		return header(compressionNone, nil)
	}

	var c lz4.Compressor
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := c.CompressBlock(data, compressed)
	if nil != err || 0 == n || n >= len(data) {
		return header(compressionNone, data)
	}
	return header(compressionLZ4, compressed[:n])
}

// ExpandSnapshot - recover a fresh payload copy from a snapshot frame
func ExpandSnapshot(frame []byte) ([]byte, error) {
	if len(frame) < snapshotHeaderLength {
		return nil, fault.ErrCorruptRecord
	}

	size := binary.BigEndian.Uint64(frame[1:snapshotHeaderLength])
	body := frame[snapshotHeaderLength:]

	switch frame[0] {
	case compressionNone:
		if uint64(len(body)) != size {
			return nil, fault.ErrCorruptRecord
		}
		data := make([]byte, size)
		copy(data, body)
		return data, nil

	case compressionLZ4:
		data := make([]byte, size)
		n, err := lz4.UncompressBlock(body, data)
		if nil != err || uint64(n) != size {
			return nil, fault.ErrCorruptRecord
		}
		return data, nil

	default:
		return nil, fault.ErrCorruptRecord
	}
}
