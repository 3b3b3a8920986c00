package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/rangoli/internal/source"
	"github.com/ayusman/rangoli/internal/store"
)

// SourceHandler switches the pipeline between camera and file sources.
type SourceHandler struct {
	pipeline PipelineController
	store    *store.Store
}

// NewSourceHandler creates a SourceHandler. The store may be nil.
func NewSourceHandler(pipeline PipelineController, s *store.Store) *SourceHandler {
	return &SourceHandler{pipeline: pipeline, store: s}
}

type switchSourceRequest struct {
	Mode     string `json:"mode"` // "camera" or "file"
	DeviceID int    `json:"device_id"`
	Path     string `json:"path"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req switchSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var err error
	switch req.Mode {
	case "camera":
		err = h.pipeline.SetCameraSource(req.DeviceID)
	case "file":
		if req.Path == "" {
			writeError(w, http.StatusBadRequest, "Path is required for file mode")
			return
		}
		err = h.pipeline.SetFileSource(req.Path)
	default:
		writeError(w, http.StatusBadRequest, "Mode must be camera or file")
		return
	}

	if err != nil {
		// Denied camera access and unreadable files are user-visible
		// states, not server faults.
		status := http.StatusInternalServerError
		if errors.Is(err, source.ErrPermissionDenied) || errors.Is(err, source.ErrBadMedia) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}

// MediaHandler lists recently opened media files.
type MediaHandler struct {
	store *store.Store
}

// NewMediaHandler creates a MediaHandler.
func NewMediaHandler(s *store.Store) *MediaHandler {
	return &MediaHandler{store: s}
}

type listMediaResponse struct {
	Media []*store.RecentMedia `json:"media"`
}

// ServeHTTP handles GET /api/media.
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	media, err := h.store.RecentMedia().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list media")
		return
	}
	if media == nil {
		media = []*store.RecentMedia{}
	}
	writeJSON(w, http.StatusOK, listMediaResponse{Media: media})
}
