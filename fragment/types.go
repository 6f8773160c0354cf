// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fragment implements the fragment processing core of a Lux node:
// bounded multi-pool admission, a status/log index, propagation handoff,
// deadline-driven selection for block production, and an hourly-rotated
// persistent log. It generalizes the shape of luxfi/evm's core/txpool (an
// account/nonce-sharded Ethereum mempool) to opaque, content-addressed
// fragments with no notion of account or nonce.
package fragment

import (
	"time"

	"github.com/luxfi/node/utils/hashing"

	"github.com/luxfi/ids"
)

// ID is a fragment's content-addressed identifier.
type ID = ids.ID

// ComputeID hashes fragment bytes into their content-addressed ID, the
// same helper luxfi/evm uses for block IDs (plugin/evm/vm.go).
func ComputeID(data []byte) ID {
	return ids.ID(hashing.ComputeHash256Array(data))
}

// Origin records a fragment's provenance for logging and propagation
// policy. Fragments of OriginRest are always propagated; OriginNetwork
// fragments may be propagated onward.
type Origin uint8

const (
	OriginRest Origin = iota
	OriginNetwork
)

func (o Origin) String() string {
	switch o {
	case OriginRest:
		return "rest"
	case OriginNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Fragment is an opaque signed byte blob. The core never inspects its
// contents beyond ID and length; signature verification and ledger
// semantics are external collaborators.
type Fragment struct {
	ID    ID
	Bytes []byte
}

// Len returns the fragment's byte length.
func (f *Fragment) Len() int { return len(f.Bytes) }

// StatusKind is the tag of a FragmentStatus sum type.
type StatusKind uint8

const (
	// StatusPending means the fragment sits in some pool, not yet included.
	StatusPending StatusKind = iota
	// StatusRejected means the fragment failed admission or basic validity.
	StatusRejected
	// StatusInABlock means the fragment was confirmed in a block.
	StatusInABlock
)

func (k StatusKind) String() string {
	switch k {
	case StatusPending:
		return "pending"
	case StatusRejected:
		return "rejected"
	case StatusInABlock:
		return "in_a_block"
	default:
		return "unknown"
	}
}

// BlockRef identifies the block a fragment was confirmed in.
type BlockRef struct {
	Date  uint64 // block-date, an opaque monotonically increasing epoch/slot marker
	Block ID     // block-id
}

// Status is the sum type described in spec §3: Pending, Rejected{reason},
// or InABlock{date, block}. Status is monotonic per id except for the
// single terminal transition out of Pending.
type Status struct {
	Kind   StatusKind
	Reason RejectReason // valid only when Kind == StatusRejected
	Block  BlockRef     // valid only when Kind == StatusInABlock
}

// Terminal reports whether this status can never change again.
func (s Status) Terminal() bool {
	return s.Kind == StatusRejected || s.Kind == StatusInABlock
}

func PendingStatus() Status { return Status{Kind: StatusPending} }

func RejectedStatus(reason RejectReason) Status {
	return Status{Kind: StatusRejected, Reason: reason}
}

func InABlockStatus(block BlockRef) Status {
	return Status{Kind: StatusInABlock, Block: block}
}

// LogEntry is one insertion-ordered record in the Logs index.
type LogEntry struct {
	FragmentID ID
	ReceivedAt time.Time
	Origin     Origin
	Status     Status
}

// RejectReason explains why a fragment did not end up Pending. It is a
// recorded value, never an error (spec §7).
type RejectReason string

const (
	ReasonAlreadyInLogs         RejectReason = "AlreadyInLogs"
	ReasonPoolOverflow          RejectReason = "PoolOverflow"
	ReasonFailedSignature       RejectReason = "FailedSignature"
	ReasonFailedStructuralCheck RejectReason = "FailedStructuralCheck"
	ReasonInvalidForLedger      RejectReason = "InvalidForLedger"
)

// RejectedFragment pairs an id with why it was rejected, for a Summary.
type RejectedFragment struct {
	ID     ID
	Reason RejectReason
}

// Summary is the result of an admission batch.
type Summary struct {
	Accepted []ID
	Rejected []RejectedFragment
}
