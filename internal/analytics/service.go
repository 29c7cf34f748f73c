package analytics

import (
	"context"

	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/internal/store/model"
)

type Service interface {
	GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error)
	GetRecentResponses(ctx context.Context, limit int) ([]model.ResponseLog, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error) {
	if days <= 0 {
		days = 7 // default to last week
	}
	return s.repo.Responses().GetDailyStats(ctx, days)
}

func (s *service) GetRecentResponses(ctx context.Context, limit int) ([]model.ResponseLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.Responses().GetRecent(ctx, limit)
}
