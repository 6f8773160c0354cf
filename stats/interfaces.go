// (c) 2025 Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stats

import "github.com/luxfi/geth/metrics"

var _ Registry = (*metrics.StandardRegistry)(nil)

// Registry is the subset of a geth-style metrics registry the gatherer
// needs to walk in order to export every registered fragment stat.
type Registry interface {
	// Each calls the given function for every registered metric.
	Each(func(string, any))
	// Get returns the metric registered under name, or nil.
	Get(string) any
}
