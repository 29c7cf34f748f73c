package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
)

// MockTransport is a mock implementation of ports.Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Invoke(ctx context.Context, providerID, model string, req *domain.Request) (*ports.TransportResult, error) {
	args := m.Called(ctx, providerID, model, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TransportResult), args.Error(1)
}

// captureSink records everything it receives.
type captureSink struct {
	mu        sync.Mutex
	responses []*domain.Response
}

func (c *captureSink) RecordDecision(string, *domain.RoutingDecision) {}

func (c *captureSink) RecordResponse(resp *domain.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
}

func newTestExecutor(t *testing.T, transport ports.Transport, sink ports.DecisionSink, specs ...domain.ProviderSpec) (*Executor, *Registry, *LoadAccountant, *MetricsAggregator) {
	t.Helper()
	reg, err := NewRegistry(specs)
	require.NoError(t, err)
	load := NewLoadAccountant(reg, zap.NewNop())
	metrics := NewMetricsAggregator(reg, zap.NewNop())
	return NewExecutor(reg, load, metrics, transport, sink, zap.NewNop()), reg, load, metrics
}

func testDecision(primary string, fallbacks ...string) *domain.RoutingDecision {
	d := &domain.RoutingDecision{
		RequestID:  "req-1",
		ProviderID: primary,
		Model:      primary + "-medium",
	}
	for _, fb := range fallbacks {
		d.Fallbacks = append(d.Fallbacks, domain.Candidate{ProviderID: fb, Model: fb + "-medium"})
	}
	return d
}

func TestExecute_Success(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Invoke", mock.Anything, "p1", "p1-medium", mock.Anything).
		Return(&ports.TransportResult{Content: "done", InputTokens: 100, OutputTokens: 50}, nil).Once()

	sink := &captureSink{}
	exec, reg, load, _ := newTestExecutor(t, transport, sink, testSpec("p1"))

	resp := exec.Execute(context.Background(), codeRequest(), testDecision("p1"))

	require.True(t, resp.Success)
	assert.Equal(t, "p1", resp.ProviderID)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 150, resp.Usage.Total)
	assert.Greater(t, resp.CostUSD, 0.0)

	// Admission was released and the attempt fed performance back.
	assert.Equal(t, 0, load.ActiveRequests())
	p, _ := reg.Get("p1")
	assert.EqualValues(t, 1, p.Perf.TotalRequests)

	require.Len(t, sink.responses, 1)
	transport.AssertExpectations(t)
}

func TestExecute_AppliesCallDeadline(t *testing.T) {
	var sawDeadline time.Duration
	transport := ports.TransportFunc(func(ctx context.Context, providerID, model string, req *domain.Request) (*ports.TransportResult, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		sawDeadline = time.Until(deadline)
		return &ports.TransportResult{Content: "ok"}, nil
	})

	exec, _, _, _ := newTestExecutor(t, transport, ports.NopSink{}, testSpec("p1"))

	req := codeRequest()
	req.Constraints.MaxLatencyMS = 2000
	resp := exec.Execute(context.Background(), req, testDecision("p1"))

	require.True(t, resp.Success)
	assert.Greater(t, sawDeadline, time.Duration(0))
	assert.LessOrEqual(t, sawDeadline, 2*time.Second)
}

func TestExecute_FallsBackOnTransportFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Invoke", mock.Anything, "p1", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream exploded")).Once()
	transport.On("Invoke", mock.Anything, "p2", mock.Anything, mock.Anything).
		Return(&ports.TransportResult{Content: "saved", InputTokens: 10, OutputTokens: 5}, nil).Once()

	exec, reg, _, _ := newTestExecutor(t, transport, ports.NopSink{}, testSpec("p1"), testSpec("p2"))

	resp := exec.Execute(context.Background(), codeRequest(), testDecision("p1", "p2"))

	require.True(t, resp.Success)
	assert.Equal(t, "p2", resp.ProviderID)

	// The failed attempt still counts against p1's record.
	p1, _ := reg.Get("p1")
	assert.InDelta(t, 0.0, p1.Perf.SuccessRate, 0.001)

	transport.AssertExpectations(t)
}

func TestExecute_BoundedAttempts(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Invoke", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down")).Times(3)

	sink := &captureSink{}
	exec, _, load, _ := newTestExecutor(t, transport, sink, testSpec("p1"), testSpec("p2"), testSpec("p3"))

	resp := exec.Execute(context.Background(), codeRequest(), testDecision("p1", "p2", "p3"))

	require.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, "p1", resp.ProviderID) // terminal response names the primary
	assert.GreaterOrEqual(t, resp.LatencyMS, int64(0))

	// Exactly one attempt per chain entry, never more.
	transport.AssertNumberOfCalls(t, "Invoke", 3)
	assert.Equal(t, 0, load.ActiveRequests())
	require.Len(t, sink.responses, 1)
	assert.False(t, sink.responses[0].Success)
}

func TestExecute_AdmissionDenialEscalates(t *testing.T) {
	saturated := testSpec("p1")
	saturated.Limits = domain.RateLimits{RequestsPerMinute: 100, TokensPerMinute: 100000, MaxConcurrent: 1}

	transport := new(MockTransport)
	transport.On("Invoke", mock.Anything, "p2", mock.Anything, mock.Anything).
		Return(&ports.TransportResult{Content: "ok", InputTokens: 10, OutputTokens: 5}, nil).Once()

	exec, reg, load, metrics := newTestExecutor(t, transport, ports.NopSink{}, saturated, testSpec("p2"))

	// Fill p1's only slot so the executor's authoritative check denies it.
	require.True(t, load.TryAdmit("p1", 10))

	resp := exec.Execute(context.Background(), codeRequest(), testDecision("p1", "p2"))

	require.True(t, resp.Success)
	assert.Equal(t, "p2", resp.ProviderID)

	// p1 was never invoked.
	transport.AssertNumberOfCalls(t, "Invoke", 1)

	// The denial is counted apart from request totals; p1's record is
	// untouched because the call never reached it.
	snap, ok := metrics.Snapshot("p1")
	require.True(t, ok)
	assert.EqualValues(t, 1, snap.AdmissionDenials)
	assert.EqualValues(t, 0, snap.TotalRequests)

	p1, _ := reg.Get("p1")
	assert.EqualValues(t, 0, p1.Perf.TotalRequests)
	assert.InDelta(t, 1.0, p1.Perf.SuccessRate, 0.001)
}

func TestExecute_AllDenied(t *testing.T) {
	saturated := testSpec("p1")
	saturated.Limits = domain.RateLimits{RequestsPerMinute: 100, TokensPerMinute: 100000, MaxConcurrent: 1}

	transport := new(MockTransport)
	exec, _, load, metrics := newTestExecutor(t, transport, ports.NopSink{}, saturated)
	require.True(t, load.TryAdmit("p1", 10))

	resp := exec.Execute(context.Background(), codeRequest(), testDecision("p1"))

	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, domain.ErrAdmissionDenied.Error())
	transport.AssertNumberOfCalls(t, "Invoke", 0)

	snap, ok := metrics.Snapshot("p1")
	require.True(t, ok)
	assert.EqualValues(t, 1, snap.AdmissionDenials)
}
