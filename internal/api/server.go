package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/config"
	"github.com/ignite/kiwify-relay/internal/relay"
)

// Server represents the relay HTTP server.
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new relay server. classifier and reconciler may be nil
// when the directory API key is missing; the webhook endpoint then rejects
// events until the deployment is fixed, while health and metrics stay up.
func NewServer(cfg config.ServerConfig, classifier *relay.Classifier, reconciler *relay.Reconciler, products *catalog.Catalog) *Server {
	handlers := NewHandlers(classifier, reconciler, products)
	router := SetupRoutes(handlers)

	return &Server{
		config:   cfg,
		handler:  router,
		handlers: handlers,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
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

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
