// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Logs is the bounded, insertion-ordered id -> LogEntry index (component
// A). It is built on hashicorp/golang-lru the way luxfi/evm's tx_noncer
// and IGSON2-berith_log's consensus cache use it as a bounded key/value
// store, but its own recency-based eviction (bumping an entry's position
// on every Get/Add) cannot express (L2) — "evict the oldest *terminal*
// entry, falling back to the oldest *pending* one" — nor can it preserve
// pure insertion order across status updates. So Logs never calls
// Cache.Get, and stores a *LogEntry per key: setStatus mutates the
// entry through its pointer instead of re-Adding it, which would
// otherwise bump it to most-recently-used and reorder Keys(). Only Peek
// (no recency bump), Keys (oldest-to-newest insertion order) and
// Remove/Add-of-a-new-key are used; eviction is a manual terminal-aware
// scan.
type Logs struct {
	cache *lru.Cache
	cap   int
}

// newLogs builds a Logs index with the given effective capacity.
func newLogs(capacity int) *Logs {
	c, err := lru.New(capacity)
	if err != nil {
		// lru.New only errors on size <= 0; effective() already enforces
		// a positive capacity, so this is unreachable in practice.
		panic(err)
	}
	return &Logs{cache: c, cap: capacity}
}

// exists reports whether id has a logs entry, used for dedup.
func (l *Logs) exists(id ID) bool {
	_, ok := l.cache.Peek(id)
	return ok
}

// get returns a copy of the entry for id, if present.
func (l *Logs) get(id ID) (LogEntry, bool) {
	v, ok := l.cache.Peek(id)
	if !ok {
		return LogEntry{}, false
	}
	return *v.(*LogEntry), true
}

// insert adds a fresh entry, evicting per (L2) if at capacity. Callers
// must have already checked exists(id) == false; inserting a known id
// here would silently move it to newest, which insert itself assumes
// cannot happen (dedup is enforced by Pools.admitOne above it).
func (l *Logs) insert(entry LogEntry) {
	if l.cache.Len() >= l.cap {
		l.evictOne()
	}
	e := entry
	l.cache.Add(e.FragmentID, &e)
}

// setStatus transitions id's status enforcing the monotonicity rule:
// Pending may move to Rejected or InABlock; a status already terminal
// never regresses. Mutates the stored entry through its pointer rather
// than re-Adding it, so the key's position in the eviction list (and
// thus insertion order) never moves on a status update.
//
// Both failure modes are spec §4.1 no-ops from the caller's point of
// view (an id evicted or already resolved elsewhere is not a bug in
// the caller), so setStatus still leaves the index unchanged on error;
// callers log the returned error rather than surfacing it as a fault.
func (l *Logs) setStatus(id ID, status Status) error {
	v, ok := l.cache.Peek(id)
	if !ok {
		return ErrUnknownFragment
	}
	entry := v.(*LogEntry)
	if entry.Status.Terminal() {
		if entry.Status == status {
			return nil
		}
		return ErrTerminalStatus
	}
	entry.Status = status
	return nil
}

// snapshotAll returns a deep copy of every entry in insertion order.
func (l *Logs) snapshotAll() []LogEntry {
	keys := l.cache.Keys() // oldest to newest
	out := make([]LogEntry, 0, len(keys))
	for _, k := range keys {
		if v, ok := l.cache.Peek(k); ok {
			out = append(out, *v.(*LogEntry))
		}
	}
	return out
}

// queryByIDs returns the present subset of ids, in no particular order.
func (l *Logs) queryByIDs(ids []ID) map[ID]LogEntry {
	out := make(map[ID]LogEntry, len(ids))
	for _, id := range ids {
		if v, ok := l.cache.Peek(id); ok {
			out[id] = *v.(*LogEntry)
		}
	}
	return out
}

// len reports the current number of entries.
func (l *Logs) len() int { return l.cache.Len() }

// evictOne implements (L2): evict the least-recently-inserted entry
// whose status is terminal; if none is terminal, evict the oldest
// Pending entry instead. Keys() returns oldest-to-newest, so the first
// terminal key found in that order is the correct victim.
func (l *Logs) evictOne() {
	keys := l.cache.Keys()
	for _, k := range keys {
		v, ok := l.cache.Peek(k)
		if !ok {
			continue
		}
		if v.(*LogEntry).Status.Terminal() {
			l.cache.Remove(k)
			return
		}
	}
	if len(keys) > 0 {
		l.cache.Remove(keys[0])
	}
}

func nowUnix() time.Time { return time.Now().UTC() }
