package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Server wraps the HTTP listener.
type Server struct {
	srv *http.Server
}

// NewServer returns a server for handler on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start serves until Shutdown. A graceful shutdown is not reported as an error.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }
