package api

import (
	"cruise-status-service/internal/api/handlers"
	"cruise-status-service/internal/services"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	// Served at /metrics when set.
	Metrics     http.Handler
	CORSOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(svc *services.StatusService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	statusHandler := &handlers.StatusHandler{Service: svc}

	r.Get("/health", handlers.Health)
	r.Get("/statuses", statusHandler.List)
	r.Get("/ships/{ship}/status", statusHandler.Ship)
	r.Get("/ships/{ship}/schedule", statusHandler.Schedule)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}
