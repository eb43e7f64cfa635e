package handlers

import (
	"net/http"

	"manimrunner/internal/httpkit"
)

// Health reports liveness plus the number of active log streams. With
// ?deep=true it also checks the configured backends.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"service":        ServiceName,
		"active_streams": h.registry.Count(),
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]string{
			"storage": h.provider,
		}
		if h.rdb != nil {
			if err := h.rdb.Ping(r.Context()).Err(); err != nil {
				checks["redis"] = "unreachable"
				body["status"] = "degraded"
			} else {
				checks["redis"] = "ok"
			}
		}
		body["checks"] = checks
	}

	httpkit.WriteJSON(w, http.StatusOK, body)
}
