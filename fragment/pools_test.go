// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPools(t *testing.T, poolMax, nPools int) *Pools {
	t.Helper()
	pools, err := NewPools(Config{PoolMaxEntries: poolMax, NPools: nPools}, nil)
	require.NoError(t, err)
	return pools
}

func frag(b byte) *Fragment {
	return &Fragment{ID: testID(b), Bytes: []byte{b}}
}

func TestPoolsLogsCapacityRaisedToFitEveryPool(t *testing.T) {
	require := require.New(t)
	pools, err := NewPools(Config{PoolMaxEntries: 2, NPools: 3, LogsMaxEntries: 1}, nil)
	require.NoError(err)
	require.Equal(6, pools.cfg.LogsMaxEntries) // 3*2, raised from 1
}

func TestInsertAndPropagateAllAcceptsAcrossEveryPool(t *testing.T) {
	require := require.New(t)
	pools := newTestPools(t, 4, 3)

	summary := pools.insertAndPropagateAll(OriginRest, []*Fragment{frag(1)}, false)
	require.Equal([]ID{testID(1)}, summary.Accepted)
	require.Empty(summary.Rejected)

	for _, p := range pools.pools {
		require.True(p.has(testID(1)))
	}
	msg := <-pools.Sink()
	require.Equal(testID(1), msg.ID)
}

func TestInsertAndPropagateAllDuplicateRejection(t *testing.T) {
	require := require.New(t)
	pools := newTestPools(t, 4, 1)

	s1 := pools.insertAndPropagateAll(OriginRest, []*Fragment{frag(1)}, false)
	require.Equal([]ID{testID(1)}, s1.Accepted)
	<-pools.Sink()

	s2 := pools.insertAndPropagateAll(OriginRest, []*Fragment{frag(1)}, false)
	require.Empty(s2.Accepted)
	require.Equal([]RejectedFragment{{ID: testID(1), Reason: ReasonAlreadyInLogs}}, s2.Rejected)
}

func TestInsertAndPropagateAllOverflowWithFailFast(t *testing.T) {
	require := require.New(t)
	pools := newTestPools(t, 2, 1)

	summary := pools.insertAndPropagateAll(OriginRest, []*Fragment{frag(1), frag(2), frag(3), frag(4)}, true)
	require.Equal([]ID{testID(1), testID(2)}, summary.Accepted)
	require.Equal([]RejectedFragment{{ID: testID(3), Reason: ReasonPoolOverflow}}, summary.Rejected)
	require.False(pools.logs.exists(testID(4))) // never processed
}

func TestInsertAndPropagateAllRejectsOversizedFragment(t *testing.T) {
	require := require.New(t)
	pools, err := NewPools(Config{PoolMaxEntries: 4, NPools: 1, MaxFragmentSize: 2}, nil)
	require.NoError(err)

	big := &Fragment{ID: testID(1), Bytes: []byte{1, 2, 3}}
	summary := pools.insertAndPropagateAll(OriginRest, []*Fragment{big}, false)
	require.Empty(summary.Accepted)
	require.Equal(ReasonFailedStructuralCheck, summary.Rejected[0].Reason)
}

func TestRemoveInBlockUpdatesStatusAcrossPools(t *testing.T) {
	require := require.New(t)
	pools := newTestPools(t, 4, 2)
	pools.insertAndPropagateAll(OriginRest, []*Fragment{frag(1)}, false)
	<-pools.Sink()

	block := BlockRef{Date: 1, Block: testID(200)}
	pools.removeInBlock([]ID{testID(1)}, block)

	entry, ok := pools.logs.get(testID(1))
	require.True(ok)
	require.Equal(StatusInABlock, entry.Status.Kind)
	require.Equal(block, entry.Status.Block)
	for _, p := range pools.pools {
		require.False(p.has(testID(1)))
	}
}

func TestNPoolsLessThanOneRejected(t *testing.T) {
	_, err := NewPools(Config{PoolMaxEntries: 1, NPools: 0}, nil)
	require.Error(t, err)
}
