// Package api provides HTTP API handlers for controlling the rangoli
// pipeline.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/loop"
)

// PipelineController is the slice of the application the API needs: variant
// and source switching.
type PipelineController interface {
	ActiveVariant() detect.Variant
	SwitchVariant(v detect.Variant) error
	SetCameraSource(deviceID int) error
	SetFileSource(path string) error
}

// ModeHandler reports and switches the active detector variant.
type ModeHandler struct {
	pipeline PipelineController
	loop     *loop.Loop
}

// NewModeHandler creates a ModeHandler.
func NewModeHandler(pipeline PipelineController, l *loop.Loop) *ModeHandler {
	return &ModeHandler{pipeline: pipeline, loop: l}
}

type modeResponse struct {
	Variant string `json:"variant"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

type switchModeRequest struct {
	Variant string `json:"variant"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ModeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.post(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/mode and reports the active variant and loop state.
func (h *ModeHandler) get(w http.ResponseWriter, r *http.Request) {
	state, err := h.loop.State()

	resp := modeResponse{
		Variant: string(h.pipeline.ActiveVariant()),
		State:   state.String(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// post handles POST /api/mode and switches the detector variant. Switching
// is also the retry path after a failed model load.
func (h *ModeHandler) post(w http.ResponseWriter, r *http.Request) {
	var req switchModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	variant := detect.Variant(req.Variant)
	if err := h.pipeline.SwitchVariant(variant); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, _ := h.loop.State()
	writeJSON(w, http.StatusOK, modeResponse{
		Variant: string(variant),
		State:   state.String(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
