package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

// perfState is the mutable performance record behind one provider.
// It carries its own lock so updates to different providers never
// contend with each other.
type perfState struct {
	mu   sync.Mutex
	perf domain.Performance
}

// Registry holds the immutable provider specs plus a separately
// synchronized performance state per provider. Specs are validated once
// at construction; malformed configuration fails fast here, never at
// request time.
type Registry struct {
	specs []domain.ProviderSpec // registration order, preserved for stable ranking
	index map[string]int
	perf  map[string]*perfState
}

// NewRegistry validates every spec and builds the registry. Models are
// kept sorted by ascending tier so tier selection is positional over a
// known ordering.
func NewRegistry(specs []domain.ProviderSpec) (*Registry, error) {
	validate := validator.New()

	r := &Registry{
		specs: make([]domain.ProviderSpec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
		perf:  make(map[string]*perfState, len(specs)),
	}

	for _, spec := range specs {
		if err := validate.Struct(&spec); err != nil {
			return nil, fmt.Errorf("invalid provider config %q: %w", spec.ID, err)
		}
		if _, dup := r.index[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate provider id %q", spec.ID)
		}
		if spec.Scope == "" {
			spec.Scope = domain.ScopeShared
		}

		models := make([]domain.ModelSpec, len(spec.Models))
		copy(models, spec.Models)
		sort.SliceStable(models, func(i, j int) bool { return models[i].Tier < models[j].Tier })
		spec.Models = models

		r.index[spec.ID] = len(r.specs)
		r.specs = append(r.specs, spec)
		r.perf[spec.ID] = &perfState{
			perf: domain.Performance{
				AvgLatencyMS: spec.BaselineLatencyMS,
				SuccessRate:  1.0,
				QualityScore: spec.QualityScore,
				LastUpdated:  time.Now(),
			},
		}
	}

	return r, nil
}

// ListActive returns snapshots of every enabled provider visible to the
// given org, in registration order.
func (r *Registry) ListActive(org string) []domain.Provider {
	out := make([]domain.Provider, 0, len(r.specs))
	for _, spec := range r.specs {
		if !spec.Enabled || !spec.VisibleTo(org) {
			continue
		}
		out = append(out, domain.Provider{Spec: spec, Perf: r.perfSnapshot(spec.ID)})
	}
	return out
}

// Get returns a snapshot of a single provider.
func (r *Registry) Get(id string) (domain.Provider, bool) {
	i, ok := r.index[id]
	if !ok {
		return domain.Provider{}, false
	}
	return domain.Provider{Spec: r.specs[i], Perf: r.perfSnapshot(id)}, true
}

// All returns snapshots of every registered provider regardless of the
// enabled flag. Used by the observability surface.
func (r *Registry) All() []domain.Provider {
	out := make([]domain.Provider, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, domain.Provider{Spec: spec, Perf: r.perfSnapshot(spec.ID)})
	}
	return out
}

// UpdatePerformance folds one observed attempt into the provider's
// performance state. Average latency is a cumulative running mean and
// success rate is successes/total, so both drift toward the newest
// behavior without a decay window.
func (r *Registry) UpdatePerformance(id string, latencyMS int64, success bool) {
	st, ok := r.perf[id]
	if !ok {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	total := st.perf.TotalRequests
	st.perf.AvgLatencyMS = (st.perf.AvgLatencyMS*float64(total) + float64(latencyMS)) / float64(total+1)

	successes := int64(st.perf.SuccessRate*float64(total) + 0.5)
	if success {
		successes++
	}
	st.perf.TotalRequests = total + 1
	st.perf.SuccessRate = float64(successes) / float64(total+1)
	st.perf.LastUpdated = time.Now()
}

// Limits returns the admission limits for a provider.
func (r *Registry) Limits(id string) (domain.RateLimits, bool) {
	i, ok := r.index[id]
	if !ok {
		return domain.RateLimits{}, false
	}
	return r.specs[i].Limits, true
}

func (r *Registry) perfSnapshot(id string) domain.Performance {
	st := r.perf[id]
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.perf
}
