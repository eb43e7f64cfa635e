package handlers

import (
	"net/http"
	"strings"

	"manimrunner/internal/httpkit"
	"manimrunner/internal/pkg/errors"
)

type runRequest struct {
	ConversationID string         `json:"conversation_id"`
	Code           string         `json:"code"`
	JSONData       map[string]any `json:"json_data"`
}

type runResponse struct {
	Status         string `json:"status"`
	URL            string `json:"url"`
	ConversationID string `json:"conversation_id"`
}

// Run accepts a rendering job, executes it synchronously, and returns
// the public URL of the uploaded video.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, http.StatusBadRequest, string(errors.CodeValidation), "invalid JSON body", nil)
		return
	}

	var missing []string
	if strings.TrimSpace(req.ConversationID) == "" {
		missing = append(missing, "conversation_id")
	}
	if strings.TrimSpace(req.Code) == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		httpkit.WriteErr(w, http.StatusBadRequest, string(errors.CodeValidation),
			"missing required fields", map[string]any{"fields": missing})
		return
	}

	log := h.log.FromContext(r.Context()).WithJobID(req.ConversationID)
	log.Info("render job accepted")

	url, err := h.runner.Execute(r.Context(), req.ConversationID, req.Code, req.JSONData)
	if err != nil {
		httpkit.WriteErr(w, errors.GetHTTPStatus(err), string(errors.GetCode(err)),
			errorMessage(err), errors.GetFields(err))
		return
	}

	httpkit.WriteJSON(w, http.StatusOK, runResponse{
		Status:         "success",
		URL:            url,
		ConversationID: req.ConversationID,
	})
}

// errorMessage returns the client-facing message for an execution
// error, without internal op or cause chains.
func errorMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
