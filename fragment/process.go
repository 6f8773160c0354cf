// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"context"
	"time"

	"github.com/luxfi/log"
)

// The command types below are the "TransactionCommand variants" of spec
// §4.6, modeled the way luxfi/evm's core/txpool.TxPool.loop multiplexes
// a handful of request channels in one select, and the way the Rust
// original's Process::start matches on an enum of the same shape
// (jormungandr/src/fragment/process.rs). Each carries its own reply
// channel rather than a shared "response" union, which keeps every
// caller's Processor method a simple send-then-recv pair.
type submitCmd struct {
	origin   Origin
	fragments []*Fragment
	failFast bool
	reply    chan Summary
}

type removeInBlockCmd struct {
	ids   []ID
	block BlockRef
}

type getLogsCmd struct {
	reply chan []LogEntry
}

type getStatusesCmd struct {
	ids   []ID
	reply chan map[ID]LogEntry
}

type selectCmd struct {
	ctx     context.Context
	poolIdx int
	ledger  LedgerView
	params  LedgerParams
	algo    SelectionAlgorithm
	soft    time.Time
	hard    time.Time
	reply   chan BlockContents
}

// Processor is the single cooperative task (component F) owning Pools
// and multiplexing the input command stream with the hourly rotation
// timer. All Pools/Logs/writer mutation happens inside Run's goroutine,
// so none of it needs locking (spec §5).
type Processor struct {
	pools *Pools
	dir   string
	log   log.Logger

	cmds   chan any
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewProcessor builds a Processor around pools. The persistent log
// directory is taken from cfg.PersistentLogDir (empty disables
// persistence) and the logger from cfg.Log (log.Root() when nil).
func NewProcessor(pools *Pools, cfg Config) *Processor {
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Processor{
		pools:  pools,
		dir:    cfg.PersistentLogDir,
		log:    logger,
		cmds:   make(chan any, 64),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run is the event loop. It blocks until Shutdown is called or ctx is
// done; callers typically run it in its own goroutine. On return, the
// active persistent file (if any) has been flushed and closed — the
// port of spec §4.6's "current persistent file is flushed on drop".
func (p *Processor) Run(ctx context.Context) error {
	defer close(p.doneCh)

	if p.dir != "" {
		w, err := openPersistentWriter(p.dir, nowUnix())
		if err != nil {
			return err
		}
		p.pools.setPersistentLog(w)
		defer func() { _ = p.pools.closePersistentLog() }()
	}

	rotationTimer := p.newRotationTimer()
	defer rotationTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stopCh:
			return nil

		case c := <-p.cmds:
			p.dispatch(ctx, c)

		case <-rotationTimer.C():
			if err := p.rotate(); err != nil {
				p.log.Error("persistent log rotation failed", "err", err)
				p.pools.stats.IncRotationFailures()
				return err
			}
			rotationTimer = p.newRotationTimer()
		}
	}
}

func (p *Processor) dispatch(ctx context.Context, c any) {
	switch cmd := c.(type) {
	case submitCmd:
		cmd.reply <- p.pools.insertAndPropagateAll(cmd.origin, cmd.fragments, cmd.failFast)
	case removeInBlockCmd:
		p.pools.removeInBlock(cmd.ids, cmd.block)
	case getLogsCmd:
		cmd.reply <- p.pools.snapshotAll()
	case getStatusesCmd:
		cmd.reply <- p.pools.queryByIDs(cmd.ids)
	case selectCmd:
		selCtx := cmd.ctx
		if selCtx == nil {
			selCtx = ctx
		}
		cmd.reply <- p.pools.selectAt(selCtx, cmd.poolIdx, cmd.ledger, cmd.params, cmd.algo, cmd.soft, cmd.hard)
	}
}

// rotate closes the current file and opens the next hour's, per spec
// §4.6: close, open, install, reschedule.
func (p *Processor) rotate() error {
	if err := p.pools.closePersistentLog(); err != nil {
		return err
	}
	p.log.Info("opening next hourly persistent log file", "dir", p.dir)
	w, err := openPersistentWriter(p.dir, nowUnix())
	if err != nil {
		return err
	}
	p.pools.setPersistentLog(w)
	p.pools.stats.IncRotations()
	return nil
}

// rotationTimer wraps a channel that fires at the top of the next UTC
// hour, or never fires when persistence is disabled — "a never-resolving
// future so the select arm is inert" (spec §4.6).
type rotationTimer struct {
	timer *time.Timer
	never <-chan time.Time
}

func (p *Processor) newRotationTimer() rotationTimer {
	if p.dir == "" {
		return rotationTimer{never: make(chan time.Time)}
	}
	next := nowUnix().Truncate(time.Hour).Add(time.Hour)
	return rotationTimer{timer: time.NewTimer(time.Until(next))}
}

func (r rotationTimer) C() <-chan time.Time {
	if r.timer != nil {
		return r.timer.C
	}
	return r.never
}

func (r rotationTimer) Stop() {
	if r.timer != nil {
		r.timer.Stop()
	}
}

// Submit enqueues a batch for admission and blocks for its Summary
// (spec §4.6 Submit). Returns ErrProcessorClosed if the loop has
// already exited.
func (p *Processor) Submit(ctx context.Context, origin Origin, fragments []*Fragment, failFast bool) (Summary, error) {
	reply := make(chan Summary, 1)
	cmd := submitCmd{origin: origin, fragments: fragments, failFast: failFast, reply: reply}
	if err := p.send(ctx, cmd); err != nil {
		return Summary{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case <-p.doneCh:
		return Summary{}, ErrProcessorClosed
	}
}

// RemoveInBlock confirms ids as included in block; it has no reply,
// matching spec §4.6 (the variant carries no reply handle).
func (p *Processor) RemoveInBlock(ctx context.Context, ids []ID, block BlockRef) error {
	return p.send(ctx, removeInBlockCmd{ids: ids, block: block})
}

// GetLogs returns a snapshot of every tracked fragment.
func (p *Processor) GetLogs(ctx context.Context) ([]LogEntry, error) {
	reply := make(chan []LogEntry, 1)
	if err := p.send(ctx, getLogsCmd{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case entries := <-reply:
		return entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.doneCh:
		return nil, ErrProcessorClosed
	}
}

// GetStatuses returns the present subset of ids with their log entries.
func (p *Processor) GetStatuses(ctx context.Context, ids []ID) (map[ID]LogEntry, error) {
	reply := make(chan map[ID]LogEntry, 1)
	if err := p.send(ctx, getStatusesCmd{ids: ids, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.doneCh:
		return nil, ErrProcessorClosed
	}
}

// Select drives algo over pool poolIdx under soft/hard deadlines and
// returns the accumulated BlockContents (spec §4.6 Select). selectCtx,
// if non-nil, is handed to the algorithm instead of the Run loop's own
// context, so a caller can impose its own cancellation independent of
// the processor's lifetime.
func (p *Processor) Select(ctx context.Context, selectCtx context.Context, poolIdx int, ledger LedgerView, params LedgerParams, algo SelectionAlgorithm, soft, hard time.Time) (BlockContents, error) {
	reply := make(chan BlockContents, 1)
	cmd := selectCmd{ctx: selectCtx, poolIdx: poolIdx, ledger: ledger, params: params, algo: algo, soft: soft, hard: hard, reply: reply}
	if err := p.send(ctx, cmd); err != nil {
		return nil, err
	}
	select {
	case c := <-reply:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.doneCh:
		return nil, ErrProcessorClosed
	}
}

func (p *Processor) send(ctx context.Context, cmd any) error {
	select {
	case p.cmds <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.doneCh:
		return ErrProcessorClosed
	}
}

// Shutdown stops Run and waits for it to return. Any command already
// in flight whose reply has not yet been sent never receives one — the
// "closed-channel error" callers see per spec §5's cancellation policy,
// surfaced here as ErrProcessorClosed from doneCh instead.
func (p *Processor) Shutdown() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
	<-p.doneCh
}
