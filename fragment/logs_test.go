// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func testID(b byte) ID {
	var id ID
	id[0] = b
	return id
}

func TestLogsInsertAndExists(t *testing.T) {
	require := require.New(t)
	l := newLogs(4)

	id := testID(1)
	require.False(l.exists(id))
	l.insert(LogEntry{FragmentID: id, ReceivedAt: time.Now(), Origin: OriginRest, Status: PendingStatus()})
	require.True(l.exists(id))

	entry, ok := l.get(id)
	require.True(ok)
	require.Equal(StatusPending, entry.Status.Kind)
}

func TestLogsSetStatusMonotonic(t *testing.T) {
	require := require.New(t)
	l := newLogs(4)
	id := testID(1)
	l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})

	require.NoError(l.setStatus(id, RejectedStatus(ReasonPoolOverflow)))
	entry, _ := l.get(id)
	require.Equal(StatusRejected, entry.Status.Kind)

	// A terminal status never regresses, even to another terminal kind.
	require.ErrorIs(l.setStatus(id, InABlockStatus(BlockRef{Date: 1, Block: testID(2)})), ErrTerminalStatus)
	entry, _ = l.get(id)
	require.Equal(StatusRejected, entry.Status.Kind)
}

func TestLogsSetStatusUnknownIsNoop(t *testing.T) {
	require := require.New(t)
	l := newLogs(4)
	require.ErrorIs(l.setStatus(testID(9), RejectedStatus(ReasonPoolOverflow)), ErrUnknownFragment)
	require.False(l.exists(testID(9)))
}

func TestLogsEvictsTerminalBeforePending(t *testing.T) {
	require := require.New(t)
	l := newLogs(2)

	a, b, c := testID(1), testID(2), testID(3)
	l.insert(LogEntry{FragmentID: a, Status: PendingStatus()})
	l.insert(LogEntry{FragmentID: b, Status: PendingStatus()})
	l.setStatus(b, RejectedStatus(ReasonFailedStructuralCheck)) // b is now terminal

	// At capacity; inserting c must evict the terminal entry (b), not
	// the oldest entry (a, still pending): evict preference is
	// terminal-first regardless of insertion order.
	l.insert(LogEntry{FragmentID: c, Status: PendingStatus()})

	require.True(l.exists(a))
	require.False(l.exists(b))
	require.True(l.exists(c))
}

func TestLogsEvictsOldestPendingWhenNoneTerminal(t *testing.T) {
	require := require.New(t)
	l := newLogs(2)

	a, b, c := testID(1), testID(2), testID(3)
	l.insert(LogEntry{FragmentID: a, Status: PendingStatus()})
	l.insert(LogEntry{FragmentID: b, Status: PendingStatus()})
	l.insert(LogEntry{FragmentID: c, Status: PendingStatus()})

	require.False(l.exists(a)) // oldest pending evicted
	require.True(l.exists(b))
	require.True(l.exists(c))
}

func TestLogsSnapshotAllPreservesInsertionOrder(t *testing.T) {
	require := require.New(t)
	l := newLogs(4)
	a, b, c := testID(1), testID(2), testID(3)
	l.insert(LogEntry{FragmentID: a, Status: PendingStatus()})
	l.insert(LogEntry{FragmentID: b, Status: PendingStatus()})
	l.setStatus(a, RejectedStatus(ReasonFailedSignature)) // status update must not reorder a
	l.insert(LogEntry{FragmentID: c, Status: PendingStatus()})

	entries := l.snapshotAll()
	require.Len(entries, 3)
	require.Equal(a, entries[0].FragmentID)
	require.Equal(b, entries[1].FragmentID)
	require.Equal(c, entries[2].FragmentID)
}

func TestLogsQueryByIDs(t *testing.T) {
	require := require.New(t)
	l := newLogs(4)
	a, b := testID(1), testID(2)
	l.insert(LogEntry{FragmentID: a, Status: PendingStatus()})

	got := l.queryByIDs([]ID{a, b})
	require.Len(got, 1)
	_, ok := got[b]
	require.False(ok)
}

func TestComputeIDIsContentAddressed(t *testing.T) {
	require := require.New(t)
	data := []byte("fragment-bytes")
	require.Equal(ComputeID(data), ComputeID(append([]byte{}, data...)))
	require.NotEqual(ComputeID(data), ComputeID([]byte("other-bytes")))
	require.NotEqual(ids.Empty, ComputeID(data))
}
