// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPoolInsertAndOverflow(t *testing.T) {
	require := require.New(t)
	p := newPool(2)

	_, ok := p.insert(&Fragment{ID: testID(1)})
	require.True(ok)
	_, ok = p.insert(&Fragment{ID: testID(2)})
	require.True(ok)

	reason, ok := p.insert(&Fragment{ID: testID(3)})
	require.False(ok)
	require.Equal(ReasonPoolOverflow, reason)
	require.Equal(2, p.len())
}

func TestPoolRemove(t *testing.T) {
	require := require.New(t)
	p := newPool(2)
	id := testID(1)
	p.insert(&Fragment{ID: id})

	f, ok := p.remove(id)
	require.True(ok)
	require.Equal(id, f.ID)
	require.Equal(0, p.len())

	_, ok = p.remove(id)
	require.False(ok)
}

// alwaysIncludeAlgo includes everything until it has seen `cap` fragments.
type alwaysIncludeAlgo struct{ cap int }

func (a *alwaysIncludeAlgo) Visit(ctx context.Context, contents BlockContents, ledger LedgerView, params LedgerParams, f *Fragment, softExpired bool) (Verdict, BlockContents) {
	ids, _ := contents.([]ID)
	if len(ids) >= a.cap {
		return VerdictFull, contents
	}
	return VerdictInclude, append(ids, f.ID)
}

func TestPoolSelectTourInsertionOrder(t *testing.T) {
	require := require.New(t)
	p := newPool(4)
	l := newLogs(4)

	for _, b := range []byte{1, 2, 3} {
		id := testID(b)
		p.insert(&Fragment{ID: id})
		l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})
	}

	res := p.selectFragments(context.Background(), l, nil, nil, &alwaysIncludeAlgo{cap: 10}, Deadlines{})
	ids := res.contents.([]ID)
	require.Equal([]ID{testID(1), testID(2), testID(3)}, ids)
	require.Equal(3, p.len()) // selection never removes; only RemoveInBlock does
}

func TestPoolSelectHonorsVerdictFull(t *testing.T) {
	require := require.New(t)
	p := newPool(4)
	l := newLogs(4)
	for _, b := range []byte{1, 2, 3} {
		id := testID(b)
		p.insert(&Fragment{ID: id})
		l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})
	}

	res := p.selectFragments(context.Background(), l, nil, nil, &alwaysIncludeAlgo{cap: 2}, Deadlines{})
	require.Equal([]ID{testID(1), testID(2)}, res.contents.([]ID))
}

func TestPoolSelectHardDeadlineAlreadyElapsedSkipsAlgorithm(t *testing.T) {
	require := require.New(t)
	p := newPool(4)
	l := newLogs(4)
	id := testID(1)
	p.insert(&Fragment{ID: id})
	l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})

	past := time.Now().Add(-time.Minute)
	res := p.selectFragments(context.Background(), l, nil, nil, &alwaysIncludeAlgo{cap: 10}, Deadlines{Hard: past})
	require.Nil(res.contents)
}

// invalidatingAlgo marks every fragment invalid.
type invalidatingAlgo struct{}

func (invalidatingAlgo) Visit(ctx context.Context, contents BlockContents, ledger LedgerView, params LedgerParams, f *Fragment, softExpired bool) (Verdict, BlockContents) {
	return VerdictInvalid, contents
}

func TestPoolSelectRemovesInvalidFragments(t *testing.T) {
	require := require.New(t)
	p := newPool(4)
	l := newLogs(4)
	id := testID(1)
	p.insert(&Fragment{ID: id})
	l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})

	res := p.selectFragments(context.Background(), l, nil, nil, invalidatingAlgo{}, Deadlines{})
	require.Equal([]ID{id}, res.invalid)
	require.Equal(0, p.len())
}

// TestPoolSelectPassesSoftExpiredToAlgorithm uses a gomock mock rather
// than a hand-written fake so the exact per-call argument sequence
// (in particular softExpired being true on every call once the soft
// deadline has already fired) is asserted by the mock itself, not by
// bespoke bookkeeping in the fake.
func TestPoolSelectPassesSoftExpiredToAlgorithm(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	algo := NewMockSelectionAlgorithm(ctrl)

	p := newPool(4)
	l := newLogs(4)
	a, b := testID(1), testID(2)
	for _, id := range []ID{a, b} {
		p.insert(&Fragment{ID: id})
		l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})
	}

	past := time.Now().Add(-time.Minute)
	gomock.InOrder(
		algo.EXPECT().Visit(gomock.Any(), gomock.Nil(), gomock.Nil(), gomock.Nil(), gomock.Any(), true).Return(VerdictInclude, []ID{a}),
		algo.EXPECT().Visit(gomock.Any(), []ID{a}, gomock.Nil(), gomock.Nil(), gomock.Any(), true).Return(VerdictInclude, []ID{a, b}),
	)

	res := p.selectFragments(context.Background(), l, nil, nil, algo, Deadlines{Soft: past})
	require.Equal([]ID{a, b}, res.contents.([]ID))
}

func TestPoolSelectDropsStaleLogsEntry(t *testing.T) {
	require := require.New(t)
	p := newPool(4)
	l := newLogs(4)
	id := testID(1)
	p.insert(&Fragment{ID: id})
	l.insert(LogEntry{FragmentID: id, Status: PendingStatus()})
	l.setStatus(id, InABlockStatus(BlockRef{Date: 1, Block: testID(9)})) // confirmed via another pool

	res := p.selectFragments(context.Background(), l, nil, nil, &alwaysIncludeAlgo{cap: 10}, Deadlines{})
	require.Nil(res.contents)
	require.Equal(0, p.len()) // dropped on touch
}
