package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/internal/store/model"
)

// Ingestor handles the asynchronous persistence of routing decisions
// and responses. It implements ports.DecisionSink: writes are buffered
// and flushed in the background, and a full buffer drops rather than
// blocks the routing path.
type Ingestor interface {
	RecordDecision(requestID string, decision *domain.RoutingDecision)
	RecordResponse(response *domain.Response)
	Start(ctx context.Context)
	Stop()
}

// record is either a decision or a response entry bound for the store.
type record struct {
	decision *model.DecisionLog
	response *model.ResponseLog
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	recordCh  chan record
	batchSize int
	flushTime time.Duration
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		recordCh:  make(chan record, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) RecordDecision(requestID string, decision *domain.RoutingDecision) {
	fallbacks, err := json.Marshal(decision.Fallbacks)
	if err != nil {
		fallbacks = []byte("[]")
	}

	i.enqueue(record{decision: &model.DecisionLog{
		ID:                 uuid.New().String(),
		RequestID:          requestID,
		ProviderID:         decision.ProviderID,
		Model:              decision.Model,
		Reasoning:          decision.Reasoning,
		Confidence:         decision.Confidence,
		EstimatedCostUSD:   decision.EstimatedCostUSD,
		EstimatedLatencyMS: decision.EstimatedLatencyMS,
		FallbacksJSON:      string(fallbacks),
		CreatedAt:          decision.CreatedAt,
	}})
}

func (i *ingestor) RecordResponse(response *domain.Response) {
	i.enqueue(record{response: &model.ResponseLog{
		ID:           uuid.New().String(),
		RequestID:    response.RequestID,
		ProviderID:   response.ProviderID,
		Model:        response.Model,
		InputTokens:  response.Usage.Input,
		OutputTokens: response.Usage.Output,
		CostUSD:      response.CostUSD,
		LatencyMS:    response.LatencyMS,
		Success:      response.Success,
		ErrorMessage: response.Error,
		CreatedAt:    response.Timestamp,
	}})
}

func (i *ingestor) enqueue(r record) {
	select {
	case i.recordCh <- r:
	default:
		i.logger.Warn("Analytics buffer full, dropping record")
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	close(i.recordCh)
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]record, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, r := range batch {
			var err error
			switch {
			case r.decision != nil:
				err = i.repo.Decisions().Log(context.Background(), r.decision)
			case r.response != nil:
				err = i.repo.Responses().Log(context.Background(), r.response)
			}
			if err != nil {
				i.logger.Error("Failed to persist analytics record", zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case r, ok := <-i.recordCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, r)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}
