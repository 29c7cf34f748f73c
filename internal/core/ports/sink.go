package ports

import "github.com/nulzo/task-router-api/internal/core/domain"

// DecisionSink receives routing decisions and completed responses for
// storage. Both calls are best-effort and must never block the routing
// or execution path; implementations buffer internally and drop on
// overflow.
type DecisionSink interface {
	RecordDecision(requestID string, decision *domain.RoutingDecision)
	RecordResponse(response *domain.Response)
}

// NopSink discards everything. Useful for tests and decision-only
// callers that handle persistence themselves.
type NopSink struct{}

func (NopSink) RecordDecision(string, *domain.RoutingDecision) {}
func (NopSink) RecordResponse(*domain.Response)                {}
