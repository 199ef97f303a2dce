// Package server exposes the textflow engine over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alnah/textflow"
	"github.com/alnah/textflow/internal/config"
)

// Defaults.
const (
	DefaultMaxRequestSize = 10 << 20
	DefaultRequestTimeout = 60 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Server routes API requests to per-request pipelines built over a shared
// registry.
type Server struct {
	Router *chi.Mux

	registry  *textflow.Registry
	logger    *slog.Logger
	observers []textflow.Observer
	metrics   http.Handler
	maxBody   int64
	timeout   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithObservers attaches observers to every pipeline the server builds.
// Observers must be safe for concurrent use.
func WithObservers(obs ...textflow.Observer) Option {
	return func(s *Server) {
		s.observers = append(s.observers, obs...)
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxRequestSize caps request bodies. Panics if n <= 0 (programmer error).
func WithMaxRequestSize(n int64) Option {
	if n <= 0 {
		panic("server: WithMaxRequestSize size must be positive")
	}
	return func(s *Server) {
		s.maxBody = n
	}
}

// WithRequestTimeout bounds each request's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New builds the router. A nil logger discards.
func New(reg *textflow.Registry, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		registry: reg,
		logger:   logger,
		maxBody:  DefaultMaxRequestSize,
		timeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "textflow")
	})

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/commands", s.handleCommands)
		r.Post("/execute", s.handleExecute)
		r.Post("/validate", s.handleValidate)
	})

	s.Router = r
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerSettings) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
