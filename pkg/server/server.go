// Package server exposes the news search service over HTTP.
//
// Endpoints:
//
//	POST /search         - similarity search, body {"query": "..."}
//	POST /rebuild-index  - forced synchronous index rebuild
//	GET  /healthcheck    - liveness probe
//	GET  /metrics        - Prometheus metrics
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/orneryd/newsvec/pkg/search"
)

// ServiceName is reported by the healthcheck endpoint.
const ServiceName = "news-search-service"

// SearchService is the surface the HTTP layer needs from the search core.
// *search.Service satisfies it; handler tests substitute fakes.
type SearchService interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
	Rebuild(ctx context.Context) (int, error)
	Count() int
}

// Config holds HTTP server settings. DefaultConfig supplies sane values.
type Config struct {
	Address      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the server defaults. WriteTimeout is generous because
// /rebuild-index performs a full synchronous build.
func DefaultConfig() Config {
	return Config{
		Address:      "0.0.0.0",
		Port:         5001,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
}

// Server is the HTTP front of the service.
type Server struct {
	cfg        Config
	svc        SearchService
	metrics    *metrics
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server around the search service.
func New(svc SearchService, cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		metrics: newMetrics(svc),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/rebuild-index", s.handleRebuild)
	mux.HandleFunc("/healthcheck", s.handleHealthcheck)
	mux.Handle("/metrics", s.metrics.handler())

	s.httpServer = &http.Server{
		Handler:      s.withRecovery(s.withLogging(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start binds the listener and serves in the background. Returns once the
// listener is bound so callers know the port is live.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	log.Printf("[server] listening on %s", listener.Addr())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] serve error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when Port was 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully, letting in-flight requests finish
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
