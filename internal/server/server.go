// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"fitplan/pkg/logger"
)

type Server struct {
	server *http.Server
	logger *logger.Logger
}

// NewServer wraps handler in an http.Server listening on port. The write
// timeout leaves room for a full AI provider round trip.
func NewServer(port string, handler http.Handler, logger *logger.Logger) *Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Infow("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
