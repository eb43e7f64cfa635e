package handlers

import (
	"fmt"
	"net/http"

	"manimrunner/internal/httpkit"
	"manimrunner/internal/pkg/errors"
	"manimrunner/internal/stream"
)

// keepaliveFrame is sent whenever the idle window elapses without a
// message, so proxies and clients keep the connection open.
const keepaliveFrame = "data: {\"data\": \"keepalive\"}\n\n"

// faultFrame is the synthetic frame sent when the stream itself fails.
const faultFrame = "data: {\"data\": \"Error: stream terminated unexpectedly\"}\n\n"

// StreamLogs streams progress messages for one job as server-sent
// events. The stream closes after a terminal message, on client
// disconnect, or on an internal fault.
func (h *Handler) StreamLogs(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("conversationId")
	if jobID == "" {
		httpkit.WriteErr(w, http.StatusBadRequest, string(errors.CodeValidation),
			"conversationId query parameter is required", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpkit.WriteErr(w, http.StatusInternalServerError, string(errors.CodeInternal),
			"streaming unsupported", nil)
		return
	}

	log := h.log.FromContext(r.Context()).WithJobID(jobID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	q := h.registry.Register(jobID)
	defer h.registry.Unregister(jobID, q)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("stream fault", "panic", fmt.Sprint(rec))
			// One synthetic frame so the client sees the fault instead
			// of a silent close. JSON-wrapped like the keepalive so
			// legacy terminal matching on bare "Error:" frames does not
			// fire for a stream-local fault.
			fmt.Fprint(w, faultFrame)
			flusher.Flush()
		}
	}()

	log.Info("stream opened")
	defer log.Info("stream closed")

	ctx := r.Context()
	for {
		msg, err := q.Next(ctx, h.idleTimeout)
		if err != nil {
			if errors.Is(err, stream.ErrIdle) {
				fmt.Fprint(w, keepaliveFrame)
				flusher.Flush()
				continue
			}
			// Context done: client disconnected or server shutting down.
			return
		}

		fmt.Fprintf(w, "data: %s\n\n", msg.Text)
		flusher.Flush()

		if msg.Terminal() {
			return
		}
	}
}
