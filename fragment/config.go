// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"fmt"

	"github.com/luxfi/log"
)

// defaultMaxFragmentSize bounds an individual fragment's byte length. It
// is not one of the four options the core recognises at the wire level,
// but every admission path enforces it as part of "basic well-formedness"
// (spec §4.4 step 2), so it lives here alongside the rest of Config.
const defaultMaxFragmentSize = 256 * 1024

// Config holds the four options the core recognises (spec §6) plus the
// structural-validation ceiling and an optional logger. NewPools
// validates it and applies its defaults; NewProcessor reads
// PersistentLogDir and Log from it. Neither mutates the caller's Config.
type Config struct {
	// PoolMaxEntries is the per-pool capacity (P2).
	PoolMaxEntries int
	// LogsMaxEntries is the logs index capacity (L1), raised at
	// construction to max(LogsMaxEntries, NPools*PoolMaxEntries) (L3).
	LogsMaxEntries int
	// NPools is the number of independent pool shards (D). Must be >= 1.
	NPools int
	// PersistentLogDir, if non-empty, enables persistence and hourly
	// rotation (B). Leave empty to run purely in-memory.
	PersistentLogDir string
	// MaxFragmentSize bounds an admitted fragment's byte length; zero
	// selects defaultMaxFragmentSize.
	MaxFragmentSize int

	// Log receives operational messages (rotation, dropped propagation,
	// raised logs_max_entries warning). Defaults to log.Root() so the
	// zero Config is still usable, following luxfi/evm's convention of
	// never requiring a caller to plumb a logger through just to get one.
	Log log.Logger
}

// effective returns a Config with defaults applied and LogsMaxEntries
// raised per (L3), plus whether the raise actually changed anything
// (the caller emits a one-time warning, per spec §8 edge case 2).
func (c Config) effective() (Config, bool, error) {
	if c.NPools < 1 {
		return Config{}, false, fmt.Errorf("fragment: n_pools must be >= 1, got %d", c.NPools)
	}
	if c.PoolMaxEntries < 1 {
		return Config{}, false, fmt.Errorf("fragment: pool_max_entries must be >= 1, got %d", c.PoolMaxEntries)
	}
	if c.MaxFragmentSize <= 0 {
		c.MaxFragmentSize = defaultMaxFragmentSize
	}
	if c.Log == nil {
		c.Log = log.Root()
	}

	floor := c.NPools * c.PoolMaxEntries
	raised := c.LogsMaxEntries < floor
	if raised {
		c.LogsMaxEntries = floor
	}
	return c, raised, nil
}
