// Package server exposes the analysis engine over HTTP: a small
// embedded web page and a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/depscout/depscout/pkg/analysis"
)

// Server wires the analysis engine to an HTTP listener.
type Server struct {
	engine          *analysis.Engine
	logger          *log.Logger
	addr            string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Defaults to ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithShutdownTimeout bounds how long graceful shutdown waits for
// in-flight requests. Defaults to 10s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a server around the engine. A nil logger falls back to
// the default logger.
func New(engine *analysis.Engine, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		engine:          engine,
		logger:          logger,
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes. Exposed separately from Run so tests
// can drive it through httptest without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Post("/api/check", s.handleCheck)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(err, srv.Close())
	}
	return nil
}
