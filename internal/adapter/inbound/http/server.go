package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the inbound adapter that serves the storefront over a local
// JSON API.
type Server struct {
	handlers       *Handlers
	server         *http.Server
	addr           string
	allowedOrigins []string
	logger         *slog.Logger
	registry       *prometheus.Registry
	metrics        *Metrics
	healthChecker  *HealthChecker
}

// Option is a functional option for configuring Server.
type Option func(*Server)

// WithAddr sets the listen address.
// Default is "127.0.0.1:8090" (localhost only).
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithAllowedOrigins sets the Origin allowlist for browser requests.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry serves /metrics from reg, so other components can register
// on the same registry. By default the server creates its own.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithHealthChecker sets the /healthz checker.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(s *Server) {
		s.healthChecker = hc
	}
}

// NewServer creates a Server for sf.
func NewServer(sf Storefront, opts ...Option) *Server {
	s := &Server{
		addr:   "127.0.0.1:8090",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if s.healthChecker == nil {
		s.healthChecker = NewHealthChecker(nil, nil, sf.Cart, "")
	}
	s.metrics = NewMetrics(s.registry)
	s.handlers = NewHandlers(sf, s.metrics)
	return s
}

// Handler builds the routed handler. Middleware runs outermost first:
// metrics, request ID, client IP, then the origin check.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(
		MetricsMiddleware(s.metrics),
		RequestIDMiddleware(s.logger),
		RealIPMiddleware,
		OriginGuard(s.allowedOrigins),
	)

	r.Handle("/healthz", s.healthChecker.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	})).Methods(http.MethodGet)
	s.handlers.RegisterRoutes(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Kind: "not_found", Message: "no such route"}})
	})
	return r
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down HTTP server")
		return s.shutdown()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return err
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	return s.shutdown()
}
