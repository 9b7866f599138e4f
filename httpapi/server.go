// Package httpapi exposes the search manager over HTTP: routing, request
// decoding, error mapping and the response codec.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/config"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/models"
	"go.uber.org/zap"
)

// Searcher is the part of the search manager the handlers depend on.
type Searcher interface {
	Search(ctx context.Context, req proteograph.Request) (*proteograph.Response, error)
	Overview(ctx context.Context) (*models.Overview, error)
	Gene(ctx context.Context, id string) (*models.Gene, error)
}

// HealthChecker reports whether the graph store is reachable.
type HealthChecker interface {
	Verify(ctx context.Context) error
}

// Server holds the HTTP interface and the search manager behind it.
type Server struct {
	searcher Searcher
	health   HealthChecker
	cfg      config.HTTPConfig
	logger   *zap.Logger

	handler    http.Handler
	httpServer *http.Server
}

// NewServer wires the routes and middleware. health may be nil, in which case
// /healthz always reports ok.
func NewServer(searcher Searcher, health HealthChecker, cfg config.HTTPConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		searcher: searcher,
		health:   health,
		cfg:      cfg,
		logger:   logger.Named("http"),
	}

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	// Request id first so every later log line carries it; recovery wraps
	// everything that can panic.
	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}
	return s
}

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /overview", s.handleOverview)
	mux.HandleFunc("GET /genes/{id}", s.handleGene)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts listening and blocks until the server is shut down.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until
// ctx expires. It does not close the graph driver.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown of HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
