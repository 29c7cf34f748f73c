package model

import (
	"database/sql"
	"time"
)

// APIKey is the credential used to access the API.
type APIKey struct {
	ID         string       `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	KeyHash    string       `db:"key_hash" json:"-"`            // Never return hash
	KeyPrefix  string       `db:"key_prefix" json:"key_prefix"` // Display only
	LastUsedAt sql.NullTime `db:"last_used_at" json:"last_used_at,omitempty"`
	IsActive   bool         `db:"is_active" json:"is_active"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// DecisionLog is the persisted form of a routing decision.
type DecisionLog struct {
	ID                 string    `db:"id" json:"id"`
	RequestID          string    `db:"request_id" json:"request_id"`
	ProviderID         string    `db:"provider_id" json:"provider_id"`
	Model              string    `db:"model" json:"model"`
	Reasoning          string    `db:"reasoning" json:"reasoning"`
	Confidence         float64   `db:"confidence" json:"confidence"`
	EstimatedCostUSD   float64   `db:"estimated_cost_usd" json:"estimated_cost_usd"`
	EstimatedLatencyMS int       `db:"estimated_latency_ms" json:"estimated_latency_ms"`
	FallbacksJSON      string    `db:"fallbacks_json" json:"fallbacks_json"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ResponseLog is the persisted form of a completed (or terminally
// failed) execution.
type ResponseLog struct {
	ID           string    `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"request_id"`
	ProviderID   string    `db:"provider_id" json:"provider_id"`
	Model        string    `db:"model" json:"model"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	CostUSD      float64   `db:"cost_usd" json:"cost_usd"`
	LatencyMS    int64     `db:"latency_ms" json:"latency_ms"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DailyStats represents aggregated usage data for a specific day.
type DailyStats struct {
	Date           string  `db:"date" json:"date"`
	TotalRequests  int     `db:"total_requests" json:"total_requests"`
	TotalTokens    int     `db:"total_tokens" json:"total_tokens"`
	TotalCostUSD   float64 `db:"total_cost_usd" json:"total_cost_usd"`
	AverageLatency float64 `db:"avg_latency" json:"avg_latency"`
	SuccessRate    float64 `db:"success_rate" json:"success_rate"`
}
