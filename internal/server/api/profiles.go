package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/store"
)

// ProfilesHandler reads and updates the per-variant detector profiles.
// Profile changes take effect on the next variant activation.
type ProfilesHandler struct {
	store *store.Store
}

// NewProfilesHandler creates a ProfilesHandler.
func NewProfilesHandler(s *store.Store) *ProfilesHandler {
	return &ProfilesHandler{store: s}
}

type profileResponse struct {
	Variant         string  `json:"variant"`
	MaxSubjects     int     `json:"max_subjects"`
	MinConfidence   float64 `json:"min_confidence"`
	RefineLandmarks bool    `json:"refine_landmarks"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type updateProfileRequest struct {
	MaxSubjects     int     `json:"max_subjects"`
	MinConfidence   float64 `json:"min_confidence"`
	RefineLandmarks bool    `json:"refine_landmarks"`
}

func toProfileResponse(p *store.Profile) profileResponse {
	return profileResponse{
		Variant:         string(p.Variant),
		MaxSubjects:     p.MaxSubjects,
		MinConfidence:   p.MinConfidence,
		RefineLandmarks: p.RefineLandmarks,
	}
}

// ServeHTTP routes /api/profiles and /api/profiles/{variant}.
func (h *ProfilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	variant := detect.Variant(path)
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, variant)
	case http.MethodPut:
		h.update(w, r, variant)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/profiles.
func (h *ProfilesHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	resp := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/profiles/{variant}.
func (h *ProfilesHandler) get(w http.ResponseWriter, r *http.Request, v detect.Variant) {
	if !knownVariant(v) {
		writeError(w, http.StatusNotFound, "Unknown variant")
		return
	}
	p, err := h.store.Profiles().Get(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// update handles PUT /api/profiles/{variant}.
func (h *ProfilesHandler) update(w http.ResponseWriter, r *http.Request, v detect.Variant) {
	if !knownVariant(v) {
		writeError(w, http.StatusNotFound, "Unknown variant")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := &store.Profile{
		Variant:         v,
		MaxSubjects:     req.MaxSubjects,
		MinConfidence:   req.MinConfidence,
		RefineLandmarks: req.RefineLandmarks,
	}
	if err := h.store.Profiles().Save(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func knownVariant(v detect.Variant) bool {
	for _, known := range detect.Variants {
		if v == known {
			return true
		}
	}
	return false
}
