package stats

import (
	"testing"

	"github.com/luxfi/geth/metrics"
	"github.com/stretchr/testify/require"
)

func TestCollectorIncrementsAndGathers(t *testing.T) {
	require := require.New(t)

	registry := metrics.NewRegistry()
	c := NewCollector(registry, 2)

	c.IncAccepted(3)
	c.IncRejected(1)
	c.IncPropagated()
	c.IncPropagationDropped()
	c.IncRotations()
	c.IncRotationFailures()
	c.IncWriteFailures()
	c.SetLogsSize(4)
	c.SetPoolSize(0, 2)
	c.SetPoolSize(1, 2)

	gatherer := NewGatherer(registry)
	families, err := gatherer.Gather()
	require.NoError(err)
	require.NotEmpty(families)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	require.True(names["fragment_accepted"])
	require.True(names["fragment_rejected"])
	require.True(names["fragment_logs_size"])
	require.True(names["fragment_pool_0_size"])
}

func TestCollectorAcceptsNilRegistry(t *testing.T) {
	c := NewCollector(nil, 1)
	require.NotNil(t, c.Registry())
	c.IncAccepted(1) // must not panic
}
