// Package api serves the dashboard view-model, drill-down, live mode,
// notifications, mutations and the data wipe over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/phishing-dashboard/internal/config"
)

// Server represents the API server.
type Server struct {
	config config.ServerConfig
	router *chi.Mux
	server *http.Server
}

// NewServer wires the routes for h.
//
// There is no write timeout because the event stream stays open.
func NewServer(cfg config.ServerConfig, h *Handlers, health *HealthChecker, metricsHandler http.Handler) *Server {
	router := SetupRoutes(h, health, cfg.AllowedOrigins, metricsHandler)
	return &Server{
		config: cfg,
		router: router,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.server.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
