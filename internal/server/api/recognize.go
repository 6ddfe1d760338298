package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
)

// RecognizeHandler classifies single frames posted over HTTP. Frames that
// share a session_id share a classifier.
type RecognizeHandler struct {
	registry *Registry
}

// NewRecognizeHandler creates a RecognizeHandler backed by registry.
func NewRecognizeHandler(registry *Registry) *RecognizeHandler {
	return &RecognizeHandler{registry: registry}
}

type recognizeRequest struct {
	SessionID string             `json:"session_id"`
	Landmarks []detector.Point3D `json:"landmarks"`
}

type recognizeResponse struct {
	SessionID string          `json:"session_id"`
	Result    *gesture.Result `json:"result"`
}

// ServeHTTP handles POST /api/recognize.
func (h *RecognizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Landmarks) == 0 {
		writeError(w, http.StatusBadRequest, "landmarks are required")
		return
	}

	// A frame of the wrong size is not an error: it just yields no letter.
	id, result := h.registry.Classify(req.SessionID, req.Landmarks)

	writeJSON(w, http.StatusOK, recognizeResponse{SessionID: id, Result: result})
}

// AnalyzeHandler reports the ungated features and primary letter of one
// frame. It keeps no history.
type AnalyzeHandler struct{}

type analyzeRequest struct {
	Landmarks []detector.Point3D `json:"landmarks"`
}

// ServeHTTP handles POST /api/analyze.
func (AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, ok := gesture.Analyze(req.Landmarks)
	if !ok {
		writeError(w, http.StatusBadRequest, "expected 21 landmarks")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
