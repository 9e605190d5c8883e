package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/kiwify-relay/internal/metrics"
	"github.com/ignite/kiwify-relay/internal/pkg/httputil"
)

// SetupRoutes configures the relay's routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Kiwify-Token", "X-Token"},
		MaxAge:         300,
	}))

	r.Post("/webhook", h.HandleWebhook)

	r.Get("/health", h.HealthCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Kiwify probes arbitrary paths when validating a webhook URL; anything
	// unrecognized answers 200 OK.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { httputil.OK(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { httputil.OK(w) })

	return r
}
