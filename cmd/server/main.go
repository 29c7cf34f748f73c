package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/cmd"
	"github.com/nulzo/task-router-api/internal/analytics"
	"github.com/nulzo/task-router-api/internal/cli"
	"github.com/nulzo/task-router-api/internal/config"
	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/platform/logger"
	"github.com/nulzo/task-router-api/internal/platform/otel"
	"github.com/nulzo/task-router-api/internal/server"
	"github.com/nulzo/task-router-api/internal/store/cache"
	"github.com/nulzo/task-router-api/internal/store/cache/memory"
	"github.com/nulzo/task-router-api/internal/store/cache/redis"
	"github.com/nulzo/task-router-api/internal/store/sqlite"
	"github.com/nulzo/task-router-api/internal/transport/openai"
	"github.com/nulzo/task-router-api/internal/transport/sim"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to load config: %v\n", cli.CrossMark(), err)
		os.Exit(1)
	}

	logger.Initialize(logger.DefaultConfig())
	log := logger.Get()
	defer logger.Sync()

	go cmd.CheckForUpdates()

	shutdownTracer, err := otel.InitTracer("task-router", log, os.Stdout)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	var cacheService cache.CacheService
	if cfg.Redis.Enabled {
		cacheService, err = redis.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
			cacheService = memory.NewMemoryCache()
		}
	} else {
		cacheService = memory.NewMemoryCache()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingestor := analytics.NewIngestor(log, repo)
	ingestor.Start(ctx)

	specs := cfg.Providers
	if len(specs) == 0 {
		specs = defaultProviders()
		log.Info("no providers configured, using built-in defaults")
	}

	transport := buildTransport(cfg, log)

	svc, err := services.NewService(specs, transport, ingestor, log)
	if err != nil {
		log.Fatal("failed to build routing service", zap.Error(err))
	}
	svc.Start(ctx)

	for _, spec := range specs {
		fmt.Printf("%s registered provider %s (%s)\n", cli.CheckMark(), spec.ID, spec.Vendor)
	}

	analyticsService := analytics.NewService(repo)

	srv := server.New(cfg, log, svc, analyticsService, repo, cacheService)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting task router",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.Int("providers", len(specs)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Printf("%s shutting down\n", cli.Arrow())
	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	ingestor.Stop()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}

	if err := repo.Close(); err != nil {
		log.Error("database close failed", zap.Error(err))
	}
}

func buildTransport(cfg *config.Config, log *zap.Logger) ports.Transport {
	if cfg.Transport.Mode == "openai" {
		endpoints := make(map[string]openai.Endpoint, len(cfg.Transport.Endpoints))
		for id, ep := range cfg.Transport.Endpoints {
			endpoints[id] = openai.Endpoint{
				BaseURL:      ep.BaseURL,
				APIKey:       ep.APIKey,
				Organization: ep.Organization,
			}
		}
		log.Info("using openai-compatible transport", zap.Int("endpoints", len(endpoints)))
		return openai.New(endpoints)
	}
	return sim.New(cfg.Sim.Seed, simBehaviors(cfg.Sim))
}

func simBehaviors(cfg config.SimConfig) map[string]sim.Behavior {
	behaviors := make(map[string]sim.Behavior, len(cfg.Providers))
	for id, b := range cfg.Providers {
		behaviors[id] = sim.Behavior{
			BaseLatency: time.Duration(b.LatencyMS) * time.Millisecond,
			Jitter:      time.Duration(b.JitterMS) * time.Millisecond,
			FailureRate: b.FailureRate,
		}
	}
	return behaviors
}

// defaultProviders is the built-in registry used when no providers are
// configured. Pricing and limits roughly mirror public provider tiers.
func defaultProviders() []domain.ProviderSpec {
	return []domain.ProviderSpec{
		{
			ID:     "anthropic-main",
			Vendor: "anthropic",
			Models: []domain.ModelSpec{
				{ID: "claude-haiku", Tier: 1},
				{ID: "claude-sonnet", Tier: 2},
				{ID: "claude-opus", Tier: 3},
			},
			Pricing: domain.Pricing{InputPer1K: 0.003, OutputPer1K: 0.015},
			Limits:  domain.RateLimits{RequestsPerMinute: 100, TokensPerMinute: 100000, MaxConcurrent: 20},
			Capabilities: domain.Capabilities{
				MaxOutputTokens: 8192,
				ContextWindow:   200000,
				Streaming:       true,
				FunctionCalling: true,
			},
			Specializations:   []string{"code", "analysis", "reasoning"},
			Enabled:           true,
			BaselineLatencyMS: 800,
			QualityScore:      0.95,
		},
		{
			ID:     "openai-main",
			Vendor: "openai",
			Models: []domain.ModelSpec{
				{ID: "gpt-4o-mini", Tier: 1},
				{ID: "gpt-4o", Tier: 2},
			},
			Pricing: domain.Pricing{InputPer1K: 0.0025, OutputPer1K: 0.01},
			Limits:  domain.RateLimits{RequestsPerMinute: 200, TokensPerMinute: 150000, MaxConcurrent: 30},
			Capabilities: domain.Capabilities{
				MaxOutputTokens: 16384,
				ContextWindow:   128000,
				Streaming:       true,
				FunctionCalling: true,
				Vision:          true,
			},
			Specializations:   []string{"code", "creative", "writing"},
			Enabled:           true,
			BaselineLatencyMS: 600,
			QualityScore:      0.92,
		},
		{
			ID:     "local-ollama",
			Vendor: "ollama",
			Models: []domain.ModelSpec{
				{ID: "llama3", Tier: 1},
			},
			Pricing: domain.Pricing{},
			Limits:  domain.RateLimits{RequestsPerMinute: 60, TokensPerMinute: 50000, MaxConcurrent: 4},
			Capabilities: domain.Capabilities{
				MaxOutputTokens: 4096,
				ContextWindow:   8192,
				Streaming:       true,
			},
			Specializations:   []string{"code"},
			Enabled:           true,
			BaselineLatencyMS: 1500,
			QualityScore:      0.70,
		},
	}
}
