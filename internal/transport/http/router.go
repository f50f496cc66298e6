package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aegis/internal/platform/health"
	"aegis/internal/platform/middleware"
	"aegis/internal/safety/handler"
)

// NewRouter wires all public endpoints with middleware. The safety handler
// owns the /safety subtree; health is served outside the JSON content-type
// guard so plain probes work.
func NewRouter(safety *handler.Handler, healthHandler *health.Handler, logger *slog.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))

	if healthHandler != nil {
		r.Method(http.MethodGet, "/healthz", healthHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		safety.Register(r)
	})

	return r
}
