// Package health exposes a liveness/readiness probe. The probe runs a
// caller-supplied check (a store round trip in practice) so a corrupted or
// unreadable data directory surfaces as unhealthy instead of a silent
// fail-open.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	respond "aegis/internal/transport/http/shared/json"
)

const checkTimeout = 5 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// Handler serves the health endpoint.
type Handler struct {
	logger *slog.Logger
	checks map[string]Check
}

// New creates a health Handler with named dependency checks.
func New(logger *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{logger: logger, checks: checks}
}

// ServeHTTP reports 200 with per-check status, or 503 when any check fails.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			results[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	respond.WriteJSON(w, status, body)
}
