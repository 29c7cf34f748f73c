package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) APIKeys() store.APIKeyRepository {
	return &apiKeyRepo{db: r.executor}
}

func (r *SqliteRepository) Decisions() store.DecisionRepository {
	return &decisionRepo{db: r.executor}
}

func (r *SqliteRepository) Responses() store.ResponseRepository {
	return &responseRepo{db: r.executor}
}

type apiKeyRepo struct {
	db DB
}

func (r *apiKeyRepo) GetByHash(ctx context.Context, hash string) (*model.APIKey, error) {
	var key model.APIKey
	// active check is part of the query for speed
	query := `SELECT * FROM api_keys WHERE key_hash = ? AND is_active = 1`
	err := r.db.GetContext(ctx, &key, query, hash)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, key *model.APIKey) error {
	query := `
	INSERT INTO api_keys (id, name, key_hash, key_prefix, is_active, created_at, updated_at)
	VALUES (:id, :name, :key_hash, :key_prefix, :is_active, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, key)
	return err
}

func (r *apiKeyRepo) Touch(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET last_used_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

type decisionRepo struct {
	db DB
}

func (r *decisionRepo) Log(ctx context.Context, decision *model.DecisionLog) error {
	query := `
	INSERT INTO routing_decisions (
		id, request_id, provider_id, model, reasoning, confidence,
		estimated_cost_usd, estimated_latency_ms, fallbacks_json, created_at
	) VALUES (
		:id, :request_id, :provider_id, :model, :reasoning, :confidence,
		:estimated_cost_usd, :estimated_latency_ms, :fallbacks_json, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, decision)
	return err
}

func (r *decisionRepo) GetByRequestID(ctx context.Context, requestID string) ([]model.DecisionLog, error) {
	var decisions []model.DecisionLog
	query := `SELECT * FROM routing_decisions WHERE request_id = ? ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &decisions, query, requestID)
	return decisions, err
}

type responseRepo struct {
	db DB
}

func (r *responseRepo) Log(ctx context.Context, response *model.ResponseLog) error {
	query := `
	INSERT INTO responses (
		id, request_id, provider_id, model, input_tokens, output_tokens,
		cost_usd, latency_ms, success, error_message, created_at
	) VALUES (
		:id, :request_id, :provider_id, :model, :input_tokens, :output_tokens,
		:cost_usd, :latency_ms, :success, :error_message, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, response)
	return err
}

func (r *responseRepo) GetRecent(ctx context.Context, limit int) ([]model.ResponseLog, error) {
	var responses []model.ResponseLog
	query := `SELECT * FROM responses ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &responses, query, limit)
	return responses, err
}

func (r *responseRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_requests,
			SUM(input_tokens + output_tokens) as total_tokens,
			SUM(cost_usd) as total_cost_usd,
			AVG(latency_ms) as avg_latency,
			AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) as success_rate
		FROM responses
		WHERE created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC
	`
	// SQLite date offset format is '-7 days'
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}
