package api

import "github.com/nulzo/task-router-api/internal/core/domain"

// RouteRequest is the inbound payload for /v1/route and
// /v1/completions.
type RouteRequest struct {
	// the kind of work being requested
	Task string `json:"task" binding:"required,oneof=code_generation code_review documentation debugging explanation refactoring testing analysis creative reasoning"`

	// advisory only; defaults to `medium`
	Priority string `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent"`

	Prompt    string   `json:"prompt" binding:"required"`
	Context   string   `json:"context,omitempty"`
	Files     []string `json:"files,omitempty"`
	Language  string   `json:"language,omitempty"`
	Framework string   `json:"framework,omitempty"`

	UserID string `json:"user_id,omitempty"`
	OrgID  string `json:"org_id,omitempty"`

	Constraints *RequestConstraints `json:"constraints,omitempty"`
	Metadata    map[string]string   `json:"metadata,omitempty"`
}

// RequestConstraints are the optional hard limits on routing.
type RequestConstraints struct {
	MaxTokens              int      `json:"max_tokens,omitempty" binding:"omitempty,gte=0"`
	MaxCostUSD             float64  `json:"max_cost_usd,omitempty" binding:"omitempty,gte=0"`
	MaxLatencyMS           int      `json:"max_latency_ms,omitempty" binding:"omitempty,gte=0"`
	IncludeProviders       []string `json:"include_providers,omitempty"`
	ExcludeProviders       []string `json:"exclude_providers,omitempty"`
	RequireStreaming       bool     `json:"require_streaming,omitempty"`
	RequireFunctionCalling bool     `json:"require_function_calling,omitempty"`
}

// ExecuteRequest carries both the task and a previously obtained (and
// possibly edited) decision for /v1/execute.
type ExecuteRequest struct {
	Request  RouteRequest            `json:"request" binding:"required"`
	Decision *domain.RoutingDecision `json:"decision" binding:"required"`
}

// ToDomain converts the wire payload into the immutable core request.
func (r *RouteRequest) ToDomain() *domain.Request {
	priority := domain.Priority(r.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}

	req := &domain.Request{
		UserID:    r.UserID,
		OrgID:     r.OrgID,
		Task:      domain.TaskType(r.Task),
		Priority:  priority,
		Prompt:    r.Prompt,
		Context:   r.Context,
		Files:     r.Files,
		Language:  r.Language,
		Framework: r.Framework,
		Metadata:  r.Metadata,
	}

	if c := r.Constraints; c != nil {
		req.Constraints = domain.Constraints{
			MaxTokens:              c.MaxTokens,
			MaxCostUSD:             c.MaxCostUSD,
			MaxLatencyMS:           c.MaxLatencyMS,
			IncludeProviders:       c.IncludeProviders,
			ExcludeProviders:       c.ExcludeProviders,
			RequireStreaming:       c.RequireStreaming,
			RequireFunctionCalling: c.RequireFunctionCalling,
		}
	}

	return req
}
