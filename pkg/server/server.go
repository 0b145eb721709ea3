package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/themis/pkg/config"
)

// Server is the Themis HTTP API server.
type Server struct {
	config         *config.ServerConfig
	handlers       *Handlers
	metricsHandler http.Handler
	metricsPath    string
	logger         *slog.Logger
	httpServer     *http.Server
	shutdownOnce   sync.Once
	mu             sync.RWMutex
	isRunning      bool
}

// New creates an API server. metricsHandler may be nil to disable the
// metrics endpoint.
func New(cfg *config.ServerConfig, handlers *Handlers, metricsHandler http.Handler, metricsPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Server{
		config:         cfg,
		handlers:       handlers,
		metricsHandler: metricsHandler,
		metricsPath:    metricsPath,
		logger:         logger.With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until shutdown is triggered
// by context cancellation, SIGINT/SIGTERM, or a listener error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler with the full middleware
// chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/policies/ingest", s.handlers.handleIngest)
	mux.HandleFunc("/api/v1/compliance/check", s.handlers.handleCheck)
	mux.HandleFunc("/healthz", s.handlers.handleHealth)
	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}
