// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"context"
	"time"
)

// LedgerView and LedgerParams are opaque collaborators a SelectionAlgorithm
// consults; the core never inspects them (spec §1 "ledger state and fee
// rules... external collaborators").
type LedgerView any
type LedgerParams any

// BlockContents is whatever a SelectionAlgorithm accumulates while
// touring the pool; the core treats it opaquely and hands it back to
// the caller of Select unexamined.
type BlockContents any

// Verdict is a SelectionAlgorithm's per-fragment decision.
type Verdict uint8

const (
	// VerdictSkip leaves the fragment in place, uncounted, and continues.
	VerdictSkip Verdict = iota
	// VerdictInclude adds the fragment to BlockContents; it remains in
	// the pool until a later RemoveInBlock confirms it.
	VerdictInclude
	// VerdictInvalid means the algorithm judged the fragment permanently
	// inadmissible against the given ledger view; Pool removes it and
	// Pools sets its Logs status to Rejected{InvalidForLedger}.
	VerdictInvalid
	// VerdictFull tells Pool to stop touring entirely.
	VerdictFull
)

//go:generate go.uber.org/mock/mockgen -source=selection.go -destination=selection_mock.go -package=fragment

// SelectionAlgorithm is the pluggable, external block-building strategy
// driven by Pool.selectFragments (spec §4.3). Visit is called once per fragment
// in insertion order; it may itself suspend on ctx (e.g. re-checking
// ledger state against a slow backing store). softExpired tells the
// algorithm the soft deadline has already fired, so per spec §4.3 it
// should "finish what it is already evaluating and then stop" rather
// than start weighing further alternatives for this one fragment.
type SelectionAlgorithm interface {
	// Visit considers one fragment for inclusion into contents and
	// returns the verdict plus the (possibly unchanged) contents.
	Visit(ctx context.Context, contents BlockContents, ledger LedgerView, params LedgerParams, f *Fragment, softExpired bool) (Verdict, BlockContents)
}

// Deadlines bundles the two externally supplied deadlines driving
// Pool.selectFragments (spec §4.3): hard halts the tour outright; soft is
// advisory only. A zero time.Time means "never fires".
type Deadlines struct {
	Soft time.Time
	Hard time.Time
}

func (d Deadlines) softFired(now time.Time) bool {
	return !d.Soft.IsZero() && !now.Before(d.Soft)
}

func (d Deadlines) hardFired(now time.Time) bool {
	return !d.Hard.IsZero() && !now.Before(d.Hard)
}
