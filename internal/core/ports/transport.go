package ports

import (
	"context"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

// TransportResult is what a provider call returns on success.
type TransportResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Transport performs the actual call to a provider+model. The core does
// not know how it is implemented (HTTP, gRPC, simulation). The call must
// honor ctx cancellation and deadlines.
type Transport interface {
	Invoke(ctx context.Context, providerID, model string, req *domain.Request) (*TransportResult, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, providerID, model string, req *domain.Request) (*TransportResult, error)

func (f TransportFunc) Invoke(ctx context.Context, providerID, model string, req *domain.Request) (*TransportResult, error) {
	return f(ctx, providerID, model, req)
}
