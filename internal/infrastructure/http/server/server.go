// Package server provides the HTTP server for the meal plan API
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nutriplan/v1/internal/infrastructure/config"
	"github.com/nutriplan/v1/internal/infrastructure/http/handlers"
	"github.com/nutriplan/v1/internal/infrastructure/http/middleware"
	"github.com/nutriplan/v1/internal/infrastructure/monitoring"
	"github.com/nutriplan/v1/internal/ports/inbound"
	"github.com/nutriplan/v1/pkg/healthcheck"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *chi.Mux
	server  *http.Server
	service inbound.MealPlanService
	metrics *monitoring.MetricsCollector
	health  *healthcheck.HealthCheck
}

// NewServer creates a new HTTP server instance. metrics is nil when
// metrics are disabled; without health checks /health only reports
// liveness.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	service inbound.MealPlanService,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.Named("http-server"),
		service: service,
		metrics: metrics,
		health:  health,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	h := handlers.NewMealPlanHandlers(s.service, s.config.App.Version, s.logger)

	r.Get("/health/live", h.HealthCheck)
	if s.health != nil {
		r.Method(http.MethodGet, "/health", s.health.Handler())
	} else {
		r.Get("/health", h.HealthCheck)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath(), s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.Server.RateLimitRPS, s.config.Server.RateLimitBurst))
		r.Use(middleware.JSONOnly())
		// Plan generation fans out to remote providers; the per-request
		// deadline cancels them together
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
		h.Routes(r)
	})

	return r
}

func (s *Server) metricsPath() string {
	if p := s.config.Monitoring.MetricsPath; p != "" {
		return p
	}
	return "/metrics"
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
