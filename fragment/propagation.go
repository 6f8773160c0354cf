// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"encoding/binary"
	"hash"

	"github.com/holiman/bloomfilter/v2"
	"github.com/luxfi/log"
)

// PropagateMsg is the outbound handoff the core enqueues on successful
// admission (spec §6): "PropagateFragment { id, bytes, origin }".
// Downstream decides whether and to whom to forward.
type PropagateMsg struct {
	ID     ID
	Bytes  []byte
	Origin Origin
}

// idHash64 adapts an ID's low 8 bytes to hash.Hash64 so it can be
// tested against a bloomfilter.Filter, the same way go-ethereum's state
// snapshot layer adapts account hashes for its destructed-accounts
// bloom (core/state/snapshot): the filter only ever compares Sum64, so
// a fixed, already-random 64 bits from the content-addressed id is a
// perfectly good hash.Hash64 without actually hashing anything further.
type idHash64 uint64

func (idHash64) Write(p []byte) (int, error) { return len(p), nil }
func (idHash64) Reset()                      {}
func (idHash64) Size() int                   { return 8 }
func (idHash64) BlockSize() int              { return 8 }
func (h idHash64) Sum64() uint64             { return uint64(h) }
func (h idHash64) Sum(b []byte) []byte        { return binary.BigEndian.AppendUint64(b, uint64(h)) }

func idToHash64(id ID) idHash64 {
	var v uint64
	for _, b := range id[:8] {
		v = v<<8 | uint64(b)
	}
	return idHash64(v)
}

// PropagationSink is the bounded outbound queue of component E. Send is
// non-blocking try-send: on a full channel the message is dropped and a
// warning logged — propagation is best-effort, the fragment remains
// admitted locally regardless (spec §4.5). A small bloom filter
// suppresses repeat warnings for the same id so a sustained downstream
// stall logs at most one line per id rather than flooding the log.
type PropagationSink struct {
	out chan PropagateMsg
	log log.Logger

	recentlyWarned *bloomfilter.Filter
}

const (
	propagationWarnFilterM = 1 << 16 // bits
	propagationWarnFilterK = 4       // hash rounds
)

// NewPropagationSink creates a sink with the given outbound buffer size.
func NewPropagationSink(bufferSize int, logger log.Logger) *PropagationSink {
	if logger == nil {
		logger = log.Root()
	}
	filter, err := bloomfilter.New(propagationWarnFilterM, propagationWarnFilterK)
	if err != nil {
		// Only fails on m==0 or k==0, both compile-time constants here.
		panic(err)
	}
	return &PropagationSink{
		out:            make(chan PropagateMsg, bufferSize),
		log:            logger,
		recentlyWarned: filter,
	}
}

// Out exposes the receive side for the downstream network subsystem.
func (s *PropagationSink) Out() <-chan PropagateMsg { return s.out }

// trySend attempts the non-blocking handoff, warning at most once per
// id on backpressure. The filter is never reset, so as it fills, a
// false positive can also suppress the first warning for a new id.
func (s *PropagationSink) trySend(msg PropagateMsg) bool {
	select {
	case s.out <- msg:
		return true
	default:
		h := idToHash64(msg.ID)
		if !s.recentlyWarned.Contains(h) {
			s.recentlyWarned.Add(h)
			s.log.Warn("dropping propagation message, sink full", "id", msg.ID)
		}
		return false
	}
}

var _ hash.Hash64 = idHash64(0)
