package server

import (
	"github.com/nulzo/task-router-api/internal/server/middleware"
	v1 "github.com/nulzo/task-router-api/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	s.router.Use(limiter.Middleware())

	healthHandler := v1.NewHealthHandler(s.service)
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/v1")
	if s.config.Auth.Enabled {
		api.Use(middleware.Auth(s.repo, s.config.Auth.StaticKeys))
	}
	{
		routeHandler := v1.NewRouteHandler(s.service)
		api.POST("/route", routeHandler.Route)
		api.POST("/execute", routeHandler.Execute)

		completionHandler := v1.NewCompletionHandler(s.service)
		api.POST("/completions", completionHandler.Create)

		providerHandler := v1.NewProviderHandler(s.service, s.cache)
		api.GET("/providers", providerHandler.List)

		metricsHandler := v1.NewMetricsHandler(s.service, s.cache)
		api.GET("/metrics", metricsHandler.List)
		api.GET("/metrics/:provider", metricsHandler.Get)

		api.GET("/requests/active", routeHandler.ActiveRequests)

		analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
		api.GET("/usage", analyticsHandler.GetUsage)
		api.GET("/responses/recent", analyticsHandler.GetRecentResponses)
	}
}
