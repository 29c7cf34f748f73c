package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

func newTestMetrics(t *testing.T, specs ...domain.ProviderSpec) (*Registry, *MetricsAggregator) {
	t.Helper()
	reg, err := NewRegistry(specs)
	require.NoError(t, err)
	return reg, NewMetricsAggregator(reg, zap.NewNop())
}

func TestRecord_AggregatesAndFeedsRegistry(t *testing.T) {
	reg, agg := newTestMetrics(t, testSpec("p1"))

	for i := 0; i < 80; i++ {
		agg.Record("p1", true, 100, 0.01)
	}
	for i := 0; i < 20; i++ {
		agg.Record("p1", false, 200, 0)
	}

	snap, ok := agg.Snapshot("p1")
	require.True(t, ok)
	assert.EqualValues(t, 100, snap.TotalRequests)
	assert.EqualValues(t, 80, snap.Successes)
	assert.InDelta(t, 0.8, snap.SuccessRate, 0.001)
	assert.InDelta(t, 120, snap.AvgLatencyMS, 0.001)
	assert.InDelta(t, 0.8, snap.CostSumUSD, 0.001)
	assert.Len(t, snap.Recent, 100)

	// The registry's adaptive performance converged on the same story.
	p, _ := reg.Get("p1")
	assert.EqualValues(t, 100, p.Perf.TotalRequests)
	assert.InDelta(t, 0.8, p.Perf.SuccessRate, 0.01)
	assert.InDelta(t, 120, p.Perf.AvgLatencyMS, 1)
}

func TestSnapshot_UnknownProvider(t *testing.T) {
	_, agg := newTestMetrics(t, testSpec("p1"))
	_, ok := agg.Snapshot("ghost")
	assert.False(t, ok)
}

func TestSnapshot_IsACopy(t *testing.T) {
	_, agg := newTestMetrics(t, testSpec("p1"))
	agg.Record("p1", true, 50, 0)

	snap, ok := agg.Snapshot("p1")
	require.True(t, ok)
	require.Len(t, snap.Recent, 1)
	snap.Recent[0].LatencyMS = 9999

	again, _ := agg.Snapshot("p1")
	assert.EqualValues(t, 50, again.Recent[0].LatencyMS)
}

func TestSnapshotAll(t *testing.T) {
	_, agg := newTestMetrics(t, testSpec("p1"), testSpec("p2"))
	agg.Record("p1", true, 50, 0)

	all := agg.SnapshotAll()
	assert.Len(t, all, 1) // p2 has no traffic yet
	assert.Contains(t, all, "p1")
}

func TestPrune_KeepsFreshSamples(t *testing.T) {
	_, agg := newTestMetrics(t, testSpec("p1"))
	agg.Record("p1", true, 50, 0)
	agg.Record("p1", false, 60, 0)

	agg.Prune()

	snap, _ := agg.Snapshot("p1")
	assert.Len(t, snap.Recent, 2)
	// Cumulative totals survive pruning regardless of window churn.
	assert.EqualValues(t, 2, snap.TotalRequests)
}
