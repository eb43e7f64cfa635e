// Package httpapi assembles the HTTP surface of the render service.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"manimrunner/internal/httpapi/handlers"
	"manimrunner/internal/httpkit"
	"manimrunner/internal/pkg/logger"
	"manimrunner/internal/pkg/middleware"
)

// NewRouter wires middleware and routes. Origins configures CORS; an
// empty list allows any origin, matching the service's open submission
// model.
func NewRouter(h *handlers.Handler, log *logger.Logger, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{AllowedOrigins: origins}))

	r.Get("/health", h.Health)
	r.Post("/run", h.Run)
	r.Get("/render/logs/stream", h.StreamLogs)

	return r
}
