// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stats holds the counters the fragment core increments as it
// admits, rejects, and propagates fragments. Following the pattern in
// luxfi/evm's core/txpool (reservationsGaugeName, metrics.Enabled guards),
// every update is a no-op unless metrics collection is enabled, and the
// registry is exported to Prometheus through Gatherer.
package stats

import (
	"fmt"

	"github.com/luxfi/geth/metrics"
)

// Collector is the set of counters/gauges a Processor reports to. The
// core only increments these; scraping and presentation are a host
// concern (spec §1, "stats counters... the core only increments them").
type Collector struct {
	registry metrics.Registry

	accepted            metrics.Counter
	rejected            metrics.Counter
	propagated          metrics.Counter
	propagationDropped  metrics.Counter
	rotations           metrics.Counter
	rotationFailures    metrics.Counter
	writeFailures       metrics.Counter
	logsSize            metrics.Gauge
	poolSize            []metrics.Gauge
}

// NewCollector registers a fresh set of fragment stats under registry.
// Passing a nil registry is valid: the Collector then registers into a
// fresh private registry, reachable through Registry().
func NewCollector(registry metrics.Registry, nPools int) *Collector {
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	c := &Collector{
		registry:           registry,
		accepted:           metrics.NewRegisteredCounter("fragment/accepted", registry),
		rejected:           metrics.NewRegisteredCounter("fragment/rejected", registry),
		propagated:         metrics.NewRegisteredCounter("fragment/propagated", registry),
		propagationDropped: metrics.NewRegisteredCounter("fragment/propagation_dropped", registry),
		rotations:          metrics.NewRegisteredCounter("fragment/persistent_log_rotations", registry),
		rotationFailures:   metrics.NewRegisteredCounter("fragment/persistent_log_rotation_failures", registry),
		writeFailures:      metrics.NewRegisteredCounter("fragment/persistent_log_write_failures", registry),
		logsSize:           metrics.NewRegisteredGauge("fragment/logs_size", registry),
		poolSize:           make([]metrics.Gauge, nPools),
	}
	for i := range c.poolSize {
		c.poolSize[i] = metrics.NewRegisteredGauge(fmt.Sprintf("fragment/pool/%d/size", i), registry)
	}
	return c
}

// Registry exposes the underlying registry, e.g. to wrap in a Gatherer.
func (c *Collector) Registry() metrics.Registry { return c.registry }

func (c *Collector) IncAccepted(n int) {
	if metrics.Enabled && n > 0 {
		c.accepted.Inc(int64(n))
	}
}

func (c *Collector) IncRejected(n int) {
	if metrics.Enabled && n > 0 {
		c.rejected.Inc(int64(n))
	}
}

func (c *Collector) IncPropagated() {
	if metrics.Enabled {
		c.propagated.Inc(1)
	}
}

func (c *Collector) IncPropagationDropped() {
	if metrics.Enabled {
		c.propagationDropped.Inc(1)
	}
}

func (c *Collector) IncRotations() {
	if metrics.Enabled {
		c.rotations.Inc(1)
	}
}

func (c *Collector) IncRotationFailures() {
	if metrics.Enabled {
		c.rotationFailures.Inc(1)
	}
}

// IncWriteFailures counts a single record write failing against the
// currently open persistent log file, distinct from IncRotationFailures
// (which counts the hourly close-and-reopen itself failing).
func (c *Collector) IncWriteFailures() {
	if metrics.Enabled {
		c.writeFailures.Inc(1)
	}
}

func (c *Collector) SetLogsSize(n int) {
	if metrics.Enabled {
		c.logsSize.Update(int64(n))
	}
}

func (c *Collector) SetPoolSize(idx, n int) {
	if metrics.Enabled && idx >= 0 && idx < len(c.poolSize) {
		c.poolSize[idx].Update(int64(n))
	}
}
