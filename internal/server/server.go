package server

import (
	"context"
	"net/http"
	"time"

	"github.com/oggyb/wa-dispatch/internal/middleware"
	routes "github.com/oggyb/wa-dispatch/internal/router"
	"go.uber.org/zap"
)

// Server owns the underlying http.Server instance.
type Server struct {
	http *http.Server
}

// New creates a new HTTP server bound to the given address and configured
// with the provided application dependencies and middleware chain.
func New(addr string, deps routes.AppDeps, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           Handler(deps, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler builds the routed handler with the middleware chain applied.
func Handler(deps routes.AppDeps, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, deps)

	return Chain(
		mux,
		middleware.RequestLogger(logger),
		middleware.Recoverer(logger),
	)
}

// Start runs the HTTP server and blocks until ListenAndServe returns.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, waiting for in-flight
// requests to complete until the given context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
