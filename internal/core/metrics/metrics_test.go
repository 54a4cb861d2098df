package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistryRegistersDistinctMetrics(t *testing.T) {
	r := NewRegistry()

	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["graphstream_clamped_records_total"])
	require.True(t, names["graphstream_queue_saturated_total"])
	require.True(t, names["graphstream_invalid_slot_nudges_total"])
	require.True(t, names["graphstream_tick_duration_seconds"])
}

func TestQueueSaturatedTotalIsUnlabelled(t *testing.T) {
	r := NewRegistry()

	r.QueueSaturatedTotal.Inc()
	r.QueueSaturatedTotal.Inc()

	var m dto.Metric
	require.NoError(t, r.QueueSaturatedTotal.Write(&m))
	require.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestNewRegistryProducesIndependentInstances(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	require.NotSame(t, a, b)

	a.SessionsReady.Inc()

	var m dto.Metric
	require.NoError(t, b.SessionsReady.Write(&m))
	require.Equal(t, float64(0), m.GetGauge().GetValue())
}
