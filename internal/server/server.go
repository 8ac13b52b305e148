// Package server provides the HTTP server for FactVault.
// It assembles the middleware stack and mounts the API routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/apikey"
	"github.com/factvault/factvault/internal/blob"
	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/handler"
	"github.com/factvault/factvault/internal/index"
	fvMiddleware "github.com/factvault/factvault/internal/middleware"
	"github.com/factvault/factvault/internal/store"
)

// Server wraps the HTTP server with FactVault configuration.
type Server struct {
	httpServer *http.Server
	config     *config.Config
}

// New creates a new FactVault HTTP server.
func New(cfg *config.Config, backend blob.Store, stores *store.Stores,
	idx *index.Manager, keys *apikey.Manager, log *logrus.Logger) (*Server, error) {
	r := chi.NewRouter()

	// Apply middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(fvMiddleware.SecurityHeaders())

	h := handler.New(cfg, backend, stores, idx, keys, log)
	r.Mount("/api", h.Routes())

	addr := fmt.Sprintf("%s:%d", cfg.Main.Host, cfg.Main.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		config:     cfg,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
