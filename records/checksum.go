// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/universalautobrokers/draftstore/fault"
)

// DigestLength - number of bytes in a payload digest
const DigestLength = 32

// Digest - a 32-byte keyed BLAKE3 digest of a draft payload
type Digest [DigestLength]byte

// domain separation key for payload hashing, ASCII zero-padded so the
// key is readable in hex dumps; changing it invalidates stored checksums
var payloadDomainKey = [32]byte{
	'd', 'r', 'a', 'f', 't', 's', 't', 'o', 'r', 'e', '.',
	'p', 'a', 'y', 'l', 'o', 'a', 'd',
}

// PayloadChecksum - compute the digest of a binary payload
func PayloadChecksum(data []byte) Digest {
	var d Digest

	h, err := blake3.NewKeyed(payloadDomainKey[:])
	if nil != err {
		// only possible with a wrong key size
		panic("records: blake3 initialisation failed: " + err.Error())
	}
	_, _ = h.Write(data)
	copy(d[:], h.Sum(nil))
	return d
}

// VerifyPayload - check a payload against a stored digest
func VerifyPayload(data []byte, expected Digest) bool {
	return PayloadChecksum(data) == expected
}

// String - hexadecimal representation
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalCBOR - encode as a CBOR byte string rather than an array
// of 32 small integers
func (d Digest) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(d[:])
}

// UnmarshalCBOR - decode from a CBOR byte string
func (d *Digest) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); nil != err {
		return err
	}
	if DigestLength != len(b) {
		return fault.ErrCorruptRecord
	}
	copy(d[:], b)
	return nil
}
