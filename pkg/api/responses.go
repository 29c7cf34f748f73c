package api

import "github.com/nulzo/task-router-api/internal/core/domain"

// DecisionResponse wraps a routing decision for the wire.
type DecisionResponse struct {
	Decision *domain.RoutingDecision `json:"decision"`
}

// CompletionResponse wraps an executed request's outcome.
type CompletionResponse struct {
	Response *domain.Response `json:"response"`
}

// ProviderView is the observability shape for one provider: the static
// spec plus its live performance snapshot.
type ProviderView struct {
	ID              string             `json:"id"`
	Vendor          string             `json:"vendor"`
	Models          []domain.ModelSpec `json:"models"`
	Specializations []string           `json:"specializations,omitempty"`
	Scope           string             `json:"scope"`
	Enabled         bool               `json:"enabled"`
	Performance     domain.Performance `json:"performance"`
}

// NewProviderView flattens a registry snapshot.
func NewProviderView(p domain.Provider) ProviderView {
	return ProviderView{
		ID:              p.Spec.ID,
		Vendor:          p.Spec.Vendor,
		Models:          p.Spec.Models,
		Specializations: p.Spec.Specializations,
		Scope:           p.Spec.Scope,
		Enabled:         p.Spec.Enabled,
		Performance:     p.Perf,
	}
}

// ActiveRequestsResponse reports the current in-flight count.
type ActiveRequestsResponse struct {
	Active int `json:"active"`
}
