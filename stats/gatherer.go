// (c) 2021-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/luxfi/geth/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Gatherer adapts a geth-style metrics [Registry] to [prometheus.Gatherer],
// so the counters and gauges the fragment core increments (see stats.go)
// can be scraped over a host's /metrics endpoint without the core itself
// knowing anything about HTTP or Prometheus wire formats.
type Gatherer struct {
	registry Registry
}

var _ prometheus.Gatherer = (*Gatherer)(nil)

// NewGatherer returns a Gatherer reading from the given registry.
func NewGatherer(registry Registry) *Gatherer {
	return &Gatherer{registry: registry}
}

// Gather implements prometheus.Gatherer.
func (g *Gatherer) Gather() ([]*dto.MetricFamily, error) {
	var names []string
	g.registry.Each(func(name string, _ any) {
		names = append(names, name)
	})
	sort.Strings(names) // pre-sort to avoid a randomly ordered scrape

	mfs := make([]*dto.MetricFamily, 0, len(names))
	for _, name := range names {
		mf, err := metricFamily(g.registry, name)
		switch {
		case errors.Is(err, errMetricSkip):
			continue
		case err != nil:
			return nil, err
		}
		mfs = append(mfs, mf)
	}
	return mfs, nil
}

var (
	errMetricSkip             = errors.New("metric skipped")
	errMetricTypeNotSupported = errors.New("metric type is not supported")
)

func ptrTo[T any](x T) *T { return &x }

// metricFamily converts one registry entry into its Prometheus wire
// representation. Only the metric kinds stats.go actually registers
// (counters and gauges) are supported; anything else is reported as
// unsupported rather than silently dropped.
func metricFamily(registry Registry, name string) (*dto.MetricFamily, error) {
	m := registry.Get(name)
	wireName := strings.ReplaceAll(name, "/", "_")

	if m == nil {
		return nil, fmt.Errorf("%w: %q metric is nil", errMetricSkip, name)
	}

	switch v := m.(type) {
	case metrics.Counter:
		return &dto.MetricFamily{
			Name: &wireName,
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{
				Counter: &dto.Counter{Value: ptrTo(float64(v.Snapshot().Count()))},
			}},
		}, nil

	case metrics.Gauge:
		return &dto.MetricFamily{
			Name: &wireName,
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Gauge: &dto.Gauge{Value: ptrTo(float64(v.Snapshot().Value()))},
			}},
		}, nil

	default:
		return nil, fmt.Errorf("%w: metric %q type %T", errMetricTypeNotSupported, name, m)
	}
}
