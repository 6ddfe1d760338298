package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/fingerspell/internal/app"
)

// PipelineHandler reports and controls the camera pipeline.
//
//	GET  /api/pipeline        status
//	POST /api/pipeline        {"enabled": bool}
//	POST /api/pipeline/reset  drop classifier history and start a new session
type PipelineHandler struct {
	app *app.App
}

// NewPipelineHandler creates a PipelineHandler for a.
func NewPipelineHandler(a *app.App) *PipelineHandler {
	return &PipelineHandler{app: a}
}

type pipelineStatus struct {
	Running   bool             `json:"running"`
	Enabled   bool             `json:"enabled"`
	SessionID string           `json:"session_id,omitempty"`
	Last      *app.Recognition `json:"last,omitempty"`
}

type pipelineRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *PipelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/pipeline"), "/")

	switch {
	case action == "" && r.Method == http.MethodGet:
	case action == "" && r.Method == http.MethodPost:
		var req pipelineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.app.SetEnabled(*req.Enabled)
	case action == "reset" && r.Method == http.MethodPost:
		h.app.Reset()
	case action == "" || action == "reset":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	default:
		http.NotFound(w, r)
		return
	}

	status := pipelineStatus{
		Running:   h.app.IsRunning(),
		Enabled:   h.app.IsEnabled(),
		SessionID: h.app.SessionID(),
	}
	if last, ok := h.app.LastRecognition(); ok {
		status.Last = &last
	}

	writeJSON(w, http.StatusOK, status)
}
