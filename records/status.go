// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

// Status - lifecycle state of a draft document
//
// the only valid movement is forward:
//   Draft → Finalizing → Finalized
// deletion is possible from any state but is not a status
type Status uint8

// draft document states
const (
	StatusDraft      Status = 1
	StatusFinalizing Status = 2
	StatusFinalized  Status = 3
)

// IsValid - check the status is one of the defined states
func (s Status) IsValid() bool {
	return s >= StatusDraft && s <= StatusFinalized
}

// IsActive - drafts that are not finalized are active and are
// protected from quota eviction
func (s Status) IsActive() bool {
	return StatusDraft == s || StatusFinalizing == s
}

// CanTransition - check a forward transition
//
// skipping a state is allowed (a draft may be finalized without an
// explicit finalizing step) but moving backwards never is
func (s Status) CanTransition(to Status) bool {
	return s.IsValid() && to.IsValid() && to > s
}

// String - printable representation
func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusFinalizing:
		return "FINALIZING"
	case StatusFinalized:
		return "FINALIZED"
	default:
		return "INVALID"
	}
}
