package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/analytics"
	"github.com/nulzo/task-router-api/internal/config"
	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/server/middleware"
	"github.com/nulzo/task-router-api/internal/server/validator"
	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/internal/store/cache"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	service   *services.Service
	analytics analytics.Service
	repo      store.Repository
	cache     cache.CacheService
}

func New(cfg *config.Config, logger *zap.Logger, service *services.Service, analyticsService analytics.Service, repo store.Repository, cacheService cache.CacheService) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.Init()

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Tracing("task-router"))

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		service:   service,
		analytics: analyticsService,
		repo:      repo,
		cache:     cacheService,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
