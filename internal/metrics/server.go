package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Server exposes /metrics until its context ends.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   pgdispatch.Logger
}

// Listen binds addr and prepares a /metrics endpoint for registry.
// Use ":0" to pick a free port; Addr reports the bound address.
func Listen(addr string, registry *prometheus.Registry, logger pgdispatch.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(registry))

	return &Server{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
		logger:   logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.listener)
	}()
	s.logger.Verbose("Serving metrics on http://%s/metrics", s.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
