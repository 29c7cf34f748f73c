package domain

import "time"

// TokenUsage is the token breakdown of a completed attempt.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Response is the outcome of executing a request against a provider.
// A failed AI call is an expected outcome, so exhaustion of the fallback
// chain yields a Response with Success=false rather than an error.
type Response struct {
	RequestID  string     `json:"request_id"`
	ProviderID string     `json:"provider_id"`
	Model      string     `json:"model"`
	Content    string     `json:"content,omitempty"`
	Usage      TokenUsage `json:"usage"`
	CostUSD    float64    `json:"cost_usd"`
	LatencyMS  int64      `json:"latency_ms"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
