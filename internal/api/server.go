// Package api exposes the retention pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opensource-finance/retention/internal/decision"
	"github.com/opensource-finance/retention/internal/domain"
	"go.opentelemetry.io/otel"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, processor *decision.Processor, model ModelInfo, repo domain.ArtifactRepository, cache domain.Cache, version string) *Server {
	handler := NewHandler(processor, model, repo, cache, version)
	router := chi.NewRouter()

	// Global middleware stack. Tracing and Logging wrap Recover so a
	// recovered panic is still recorded as a 500.
	router.Use(CORS(cfg.AllowedOrigins))
	router.Use(Tracing(otel.GetTracerProvider()))
	router.Use(Logging)
	router.Use(Recover)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	// Health endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	router.Post("/predict", handler.Predict)
	router.Get("/segments", handler.ListSegments)
	router.Get("/model", handler.GetModel)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
