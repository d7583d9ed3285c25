// Package server provides HTTP server wiring and lifecycle management
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/chiremba/chiremba/internal/explain"
	"github.com/chiremba/chiremba/internal/report"
	"github.com/chiremba/chiremba/internal/speech"
	"github.com/chiremba/chiremba/pkg/api"
	"go.uber.org/zap"
)

// ErrMissingDep is returned when a required dependency is nil
var ErrMissingDep = errors.New("missing required dependency")

// Reports is the report surface the server needs
type Reports interface {
	Download(ctx context.Context, data report.Data, w io.Writer) (api.Result, error)
	Print(ctx context.Context, data report.Data, w io.Writer) (api.Result, error)
}

// Deps holds all server dependencies
type Deps struct {
	Reports   Reports
	Explainer explain.Generator
	Speech    speech.Synthesizer
}

// Server wraps the HTTP server and its dependencies
type Server struct {
	addr       string
	httpServer *http.Server
	logger     *zap.Logger
	deps       *Deps
}

// New creates a new Server listening on addr
func New(addr string, logger *zap.Logger, deps *Deps) (*Server, error) {
	if err := validateDeps(deps); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{addr: addr, logger: logger, deps: deps}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// rasterization and provider calls can be slow
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is done, then shuts down gracefully within shutdownTimeout
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	s.logger.Info("starting server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// validateDeps checks that all required dependencies are provided
func validateDeps(deps *Deps) error {
	if deps == nil {
		return errors.New("deps is nil")
	}
	if deps.Reports == nil {
		return fmt.Errorf("%w: Reports", ErrMissingDep)
	}
	if deps.Explainer == nil {
		return fmt.Errorf("%w: Explainer", ErrMissingDep)
	}
	if deps.Speech == nil {
		return fmt.Errorf("%w: Speech", ErrMissingDep)
	}
	return nil
}
