// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/api/job"
	"github.com/quantrun/sigval/internal/api/middleware"
	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/metrics"
	"github.com/quantrun/sigval/internal/storage/archive"
)

// Config holds server configuration.
type Config struct {
	Host   string
	Port   int
	APIKey string
}

// Server exposes the backtest engine over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	apiKey     string

	backtester *backtest.Backtester
	defaults   backtest.Config
	jobs       *job.Store
	archiver   *archive.Archiver
	metrics    *metrics.Registry
}

// NewServer creates a new HTTP server around a backtester. defaults
// seeds run options that requests may override per field.
func NewServer(cfg Config, backtester *backtest.Backtester, defaults backtest.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:     logger,
		mux:        http.NewServeMux(),
		apiKey:     cfg.APIKey,
		backtester: backtester,
		defaults:   defaults,
		jobs:       job.NewStore(100),
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/backtest", s.handleBacktest)
	s.mux.HandleFunc("GET /api/backtest/{id}", s.handleBacktestStatus)
	s.mux.HandleFunc("GET /api/reports", s.handleListReports)

	return s
}

// WithArchiver enables report archiving on completed runs.
func (s *Server) WithArchiver(a *archive.Archiver) *Server {
	s.archiver = a
	return s
}

// WithMetrics attaches a metrics registry, served at path.
func (s *Server) WithMetrics(reg *metrics.Registry, path string) *Server {
	s.metrics = reg
	if path == "" {
		path = "/metrics"
	}
	s.mux.Handle("GET "+path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	handler := http.Handler(s.mux)
	handler = middleware.APIKeyAuth(s.apiKey)(handler)
	if s.metrics != nil {
		handler = metrics.HTTPMiddleware(s.metrics)(handler)
	}
	return handler
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.httpServer.Handler = s.Handler()
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
