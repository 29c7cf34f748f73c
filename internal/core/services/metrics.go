package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

const metricsWindow = time.Hour

// providerMetrics holds one provider's cumulative totals plus the
// rolling one-hour sample window. Locked per entry so recording against
// one provider never blocks reads of another.
type providerMetrics struct {
	mu               sync.Mutex
	totalRequests    int64
	successes        int64
	latencySumMS     int64
	costSumUSD       float64
	admissionDenials int64
	recent           []domain.Sample
}

// MetricsAggregator folds execution outcomes into per-provider rolling
// stats and pushes them back onto the registry's performance state.
type MetricsAggregator struct {
	registry *Registry
	logger   *zap.Logger

	mu         sync.RWMutex
	byProvider map[string]*providerMetrics
}

func NewMetricsAggregator(registry *Registry, logger *zap.Logger) *MetricsAggregator {
	return &MetricsAggregator{
		registry:   registry,
		logger:     logger,
		byProvider: make(map[string]*providerMetrics),
	}
}

func (m *MetricsAggregator) entry(providerID string) *providerMetrics {
	m.mu.RLock()
	pm, ok := m.byProvider[providerID]
	m.mu.RUnlock()
	if ok {
		return pm
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if pm, ok = m.byProvider[providerID]; ok {
		return pm
	}
	pm = &providerMetrics{}
	m.byProvider[providerID] = pm
	return pm
}

// Record appends one attempt to the rolling window, updates the
// cumulative totals, and feeds the registry's adaptive performance
// fields.
func (m *MetricsAggregator) Record(providerID string, success bool, latencyMS int64, costUSD float64) {
	pm := m.entry(providerID)

	pm.mu.Lock()
	pm.totalRequests++
	if success {
		pm.successes++
	}
	pm.latencySumMS += latencyMS
	pm.costSumUSD += costUSD
	pm.recent = append(pm.recent, domain.Sample{
		Timestamp: time.Now(),
		Success:   success,
		LatencyMS: latencyMS,
	})
	pm.mu.Unlock()

	m.registry.UpdatePerformance(providerID, latencyMS, success)
}

// RecordDenial counts an attempt turned away at admission. Denials do
// not touch the request totals or the registry's success rate; the
// provider never saw the call.
func (m *MetricsAggregator) RecordDenial(providerID string) {
	pm := m.entry(providerID)
	pm.mu.Lock()
	pm.admissionDenials++
	pm.mu.Unlock()
}

// Snapshot returns a copy of one provider's metrics. The copy is taken
// under the entry lock and handed out lock-free, so readers iterating
// the samples never block writers.
func (m *MetricsAggregator) Snapshot(providerID string) (domain.Metrics, bool) {
	m.mu.RLock()
	pm, ok := m.byProvider[providerID]
	m.mu.RUnlock()
	if !ok {
		return domain.Metrics{}, false
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	return snapshotLocked(pm), true
}

// SnapshotAll returns copies for every provider with recorded traffic.
func (m *MetricsAggregator) SnapshotAll() map[string]domain.Metrics {
	m.mu.RLock()
	ids := make([]string, 0, len(m.byProvider))
	for id := range m.byProvider {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	out := make(map[string]domain.Metrics, len(ids))
	for _, id := range ids {
		if snap, ok := m.Snapshot(id); ok {
			out[id] = snap
		}
	}
	return out
}

func snapshotLocked(pm *providerMetrics) domain.Metrics {
	snap := domain.Metrics{
		TotalRequests:    pm.totalRequests,
		Successes:        pm.successes,
		LatencySumMS:     pm.latencySumMS,
		CostSumUSD:       pm.costSumUSD,
		AdmissionDenials: pm.admissionDenials,
		Recent:           make([]domain.Sample, len(pm.recent)),
	}
	copy(snap.Recent, pm.recent)

	if pm.totalRequests > 0 {
		snap.AvgLatencyMS = float64(pm.latencySumMS) / float64(pm.totalRequests)
		snap.SuccessRate = float64(pm.successes) / float64(pm.totalRequests)
	}
	return snap
}

// Prune drops samples older than the rolling window. Per-entry locking;
// the sweep never holds the aggregator lock while trimming.
func (m *MetricsAggregator) Prune() {
	m.mu.RLock()
	entries := make([]*providerMetrics, 0, len(m.byProvider))
	for _, pm := range m.byProvider {
		entries = append(entries, pm)
	}
	m.mu.RUnlock()

	cutoff := time.Now().Add(-metricsWindow)
	for _, pm := range entries {
		pm.mu.Lock()
		i := 0
		for i < len(pm.recent) && pm.recent[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			pm.recent = append(pm.recent[:0:0], pm.recent[i:]...)
		}
		pm.mu.Unlock()
	}
}

// Run prunes the sample window on a fixed interval until ctx is
// cancelled.
func (m *MetricsAggregator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Prune()
			m.logger.Debug("Metrics sample window pruned")
		case <-ctx.Done():
			return
		}
	}
}
