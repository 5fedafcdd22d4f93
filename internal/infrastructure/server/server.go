package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/adapter/httpapi"
	"github.com/eslsoft/drillnet/internal/infrastructure/config"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer builds the HTTP server around the API handler.
func NewServer(cfg *config.Config, logger *logrus.Logger, handler *httpapi.Handler) *Server {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpServer, logger: logger}
}

// Start serves until the listener closes.
func (s *Server) Start() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown HTTP server: %v", err)
		return err
	}
	s.logger.Info("Server shutdown complete")
	return nil
}
