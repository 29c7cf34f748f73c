package domain

import "time"

// Candidate is a (provider, model) pair in a fallback chain.
type Candidate struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

// ScoreBreakdown exposes the individual weighted factors that produced a
// candidate's total score.
type ScoreBreakdown struct {
	Specialization float64 `json:"specialization"`
	Performance    float64 `json:"performance"`
	Cost           float64 `json:"cost"`
	Availability   float64 `json:"availability"`
	Quality        float64 `json:"quality"`
}

// Score is the result of ranking one provider for one request.
type Score struct {
	Total      float64        `json:"total"`
	Confidence float64        `json:"confidence"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

// RoutingDecision is the router's answer for a request: the chosen
// provider/model, the estimates backing the choice, and an ordered
// fallback chain for the executor.
type RoutingDecision struct {
	RequestID          string      `json:"request_id"`
	ProviderID         string      `json:"provider_id"`
	Model              string      `json:"model"`
	Reasoning          string      `json:"reasoning"`
	Confidence         float64     `json:"confidence"`
	EstimatedCostUSD   float64     `json:"estimated_cost_usd"`
	EstimatedLatencyMS int         `json:"estimated_latency_ms"`
	Fallbacks          []Candidate `json:"fallbacks"`
	CreatedAt          time.Time   `json:"created_at"`
}
