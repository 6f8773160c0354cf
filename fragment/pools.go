// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"context"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/fragment/stats"
)

// Pools holds n_pools independent Pool shards plus the shared Logs,
// the optional persistent writer, and the outbound propagation sink
// (component D). It is the fan-in admission / fan-out selection point
// the Process event loop drives; every method here assumes it is
// called from that single owning goroutine (spec §5 "no locks needed").
type Pools struct {
	cfg    Config
	pools  []*Pool
	logs   *Logs
	sink   *PropagationSink
	writer *persistentWriter
	stats  *stats.Collector
	log    log.Logger
}

// NewPools validates cfg, applies the (L3) logs-capacity floor (warning
// once if raised), and builds n_pools empty shards plus a shared Logs
// index. Persistence is NOT opened here; the owning Process event loop
// opens the first persistent writer for "now" if PersistentLogDir is set.
func NewPools(cfg Config, collector *stats.Collector) (*Pools, error) {
	eff, raised, err := cfg.effective()
	if err != nil {
		return nil, err
	}
	if raised {
		eff.Log.Warn("raising logs_max_entries to fit every pool",
			"configured", cfg.LogsMaxEntries, "effective", eff.LogsMaxEntries,
			"n_pools", eff.NPools, "pool_max_entries", eff.PoolMaxEntries)
	}
	if collector == nil {
		collector = stats.NewCollector(nil, eff.NPools)
	}

	pools := make([]*Pool, eff.NPools)
	for i := range pools {
		pools[i] = newPool(eff.PoolMaxEntries)
	}

	return &Pools{
		cfg:   eff,
		pools: pools,
		logs:  newLogs(eff.LogsMaxEntries),
		sink:  NewPropagationSink(eff.NPools*eff.PoolMaxEntries, eff.Log),
		stats: collector,
		log:   eff.Log,
	}, nil
}

// Sink exposes the propagation sink's receive side.
func (p *Pools) Sink() <-chan PropagateMsg { return p.sink.Out() }

// setPersistentLog installs w as the active persistent writer, closing
// none (the caller, Process's rotation handling, already closed the
// previous one). A nil w disables persistence.
func (p *Pools) setPersistentLog(w *persistentWriter) {
	p.writer = w
}

// closePersistentLog flushes and closes the active writer, if any.
func (p *Pools) closePersistentLog() error {
	if p.writer == nil {
		return nil
	}
	err := p.writer.close()
	p.writer = nil
	return err
}

// validateWellFormed performs the "basic internal well-formedness"
// check spec §4.4 step 2 calls for, deliberately leaving ledger
// semantics (balances, fees, signatures) to external collaborators.
func (p *Pools) validateWellFormed(f *Fragment) (RejectReason, bool) {
	if len(f.Bytes) == 0 || len(f.Bytes) > p.cfg.MaxFragmentSize {
		return ReasonFailedStructuralCheck, false
	}
	return "", true
}

// insertAndPropagateAll is 4.4: dedup, validate, fan out admission into
// every pool, persist, and enqueue one propagation message per accepted
// fragment. Batch order is preserved in the returned Summary.
func (p *Pools) insertAndPropagateAll(origin Origin, fragments []*Fragment, failFast bool) Summary {
	var summary Summary

	for _, f := range fragments {
		reason, ok := p.admitOne(origin, f)
		if !ok {
			summary.Rejected = append(summary.Rejected, RejectedFragment{ID: f.ID, Reason: reason})
			if failFast {
				break
			}
			continue
		}
		summary.Accepted = append(summary.Accepted, f.ID)
	}

	p.stats.IncAccepted(len(summary.Accepted))
	p.stats.IncRejected(len(summary.Rejected))
	p.reportPoolSizes()
	p.stats.SetLogsSize(p.logs.len())
	return summary
}

// admitOne runs steps 1-4 of 4.4 for a single fragment.
func (p *Pools) admitOne(origin Origin, f *Fragment) (RejectReason, bool) {
	if p.logs.exists(f.ID) {
		return ReasonAlreadyInLogs, false
	}
	if reason, ok := p.validateWellFormed(f); !ok {
		return reason, false
	}

	// Admit into every pool; a single PoolOverflow rejects globally. Any
	// pool already holding it is left untouched on a later failure,
	// which cannot happen here since dedup above guarantees this id is
	// new to every pool.
	for _, pool := range p.pools {
		if reason, ok := pool.insert(f); !ok {
			// Unwind the partial admission so P1/P4 hold: no pool is
			// left holding an id whose Logs entry never exists.
			for _, done := range p.pools {
				done.remove(f.ID)
			}
			return reason, false
		}
	}

	now := nowUnix()
	p.logs.insert(LogEntry{FragmentID: f.ID, ReceivedAt: now, Origin: origin, Status: PendingStatus()})

	if p.writer != nil {
		if err := p.writer.write(now, origin, f.Bytes); err != nil {
			p.log.Error("persistent log write failed", "err", err)
			p.stats.IncWriteFailures()
		}
	}

	if p.sink.trySend(PropagateMsg{ID: f.ID, Bytes: f.Bytes, Origin: origin}) {
		p.stats.IncPropagated()
	} else {
		p.stats.IncPropagationDropped()
	}
	return "", true
}

// removeInBlock is 4.3's remove_in_block fanned out across every pool,
// plus the single shared Logs status transition (spec §4.3, §4.4).
func (p *Pools) removeInBlock(ids []ID, block BlockRef) {
	status := InABlockStatus(block)
	for _, id := range ids {
		for _, pool := range p.pools {
			pool.remove(id)
		}
		if err := p.logs.setStatus(id, status); err != nil {
			p.log.Debug("remove_in_block: logs status unchanged", "id", id, "err", err)
		}
	}
	p.reportPoolSizes()
}

// selectAt delegates to the pool at poolIdx (spec §4.4 select); an
// out-of-range index is a programming error, matching the spec's
// "panic-equivalent" contract.
func (p *Pools) selectAt(ctx context.Context, poolIdx int, ledger LedgerView, params LedgerParams, algo SelectionAlgorithm, soft, hard time.Time) BlockContents {
	pool := p.pools[poolIdx]
	res := pool.selectFragments(ctx, p.logs, ledger, params, algo, Deadlines{Soft: soft, Hard: hard})
	for _, id := range res.invalid {
		if err := p.logs.setStatus(id, RejectedStatus(ReasonInvalidForLedger)); err != nil {
			p.log.Debug("select: logs status unchanged", "id", id, "err", err)
		}
	}
	if len(res.invalid) > 0 {
		p.reportPoolSizes()
	}
	return res.contents
}

// snapshotAll and queryByIDs proxy 4.1's read path.
func (p *Pools) snapshotAll() []LogEntry          { return p.logs.snapshotAll() }
func (p *Pools) queryByIDs(ids []ID) map[ID]LogEntry { return p.logs.queryByIDs(ids) }

func (p *Pools) reportPoolSizes() {
	for i, pool := range p.pools {
		p.stats.SetPoolSize(i, pool.len())
	}
}
