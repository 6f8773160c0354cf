// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"container/list"
	"context"
)

// Pool is a single bounded, insertion-ordered shard of admitted
// fragments (component C). It uses container/list plus a map of
// id -> *list.Element for O(1) insertion-order-preserving removal, the
// same technique hashicorp/golang-lru's own simplelru builds its
// eviction list on — but Pool cannot reuse golang-lru itself: capacity
// here is enforced by flat rejection (PoolOverflow), not automatic
// eviction, and entries must survive untouched until a later
// RemoveInBlock confirms them, which an LRU's automatic recency-based
// eviction could silently violate.
//
// Pool holds no reference to the shared Logs index; Pools (D) owns
// dedup, Logs bookkeeping and persistence, and calls Pool only for the
// per-shard membership operations P1-P4 describe.
type Pool struct {
	maxEntries int
	order      *list.List
	elems      map[ID]*list.Element
	frags      map[ID]*Fragment
}

func newPool(maxEntries int) *Pool {
	return &Pool{
		maxEntries: maxEntries,
		order:      list.New(),
		elems:      make(map[ID]*list.Element),
		frags:      make(map[ID]*Fragment),
	}
}

func (p *Pool) len() int { return p.order.Len() }

func (p *Pool) has(id ID) bool {
	_, ok := p.elems[id]
	return ok
}

// insert admits f into this shard. Returns false with PoolOverflow if
// the pool is already at maxEntries (P2); the caller (Pools) is
// responsible for dedup against Logs (P1 follows from that dedup,
// since an id dedup'd globally can never reach two inserts here).
func (p *Pool) insert(f *Fragment) (RejectReason, bool) {
	if p.order.Len() >= p.maxEntries {
		return ReasonPoolOverflow, false
	}
	elem := p.order.PushBack(f.ID)
	p.elems[f.ID] = elem
	p.frags[f.ID] = f
	return "", true
}

// remove deletes id if present, returning the removed fragment.
func (p *Pool) remove(id ID) (*Fragment, bool) {
	elem, ok := p.elems[id]
	if !ok {
		return nil, false
	}
	p.order.Remove(elem)
	delete(p.elems, id)
	f := p.frags[id]
	delete(p.frags, id)
	return f, true
}

// selectResult is what touring one pool for block inclusion produces:
// the accumulated contents plus any fragments the algorithm judged
// permanently invalid, which the caller must reject in Logs.
type selectResult struct {
	contents BlockContents
	invalid  []ID
}

// selectFragments tours the pool in insertion order driving algorithm,
// honoring Deadlines, and lazily dropping any fragment whose shared
// Logs entry is no longer Pending (spec §4.1/§4.3: an id evicted from
// Logs, or confirmed/rejected through another pool, must be dropped
// from this pool "on next touch" rather than eagerly reconciled).
// Selected fragments are left in the pool; only VerdictInvalid entries
// are removed here.
func (p *Pool) selectFragments(ctx context.Context, logs *Logs, ledger LedgerView, params LedgerParams, algo SelectionAlgorithm, dl Deadlines) selectResult {
	var res selectResult

	elem := p.order.Front()
	for elem != nil {
		next := elem.Next()
		id := elem.Value.(ID)

		if dl.hardFired(nowUnix()) {
			break
		}

		entry, ok := logs.get(id)
		if !ok || entry.Status.Kind != StatusPending {
			// Evicted from Logs, or already resolved by another pool
			// sharing the same id space; drop our stale copy.
			p.order.Remove(elem)
			delete(p.elems, id)
			delete(p.frags, id)
			elem = next
			continue
		}

		f := p.frags[id]
		verdict, contents := algo.Visit(ctx, res.contents, ledger, params, f, dl.softFired(nowUnix()))
		res.contents = contents

		switch verdict {
		case VerdictInclude, VerdictSkip:
			// stays in the pool either way
		case VerdictInvalid:
			res.invalid = append(res.invalid, id)
			p.order.Remove(elem)
			delete(p.elems, id)
			delete(p.frags, id)
		case VerdictFull:
			return res
		}
		elem = next
	}
	return res
}
