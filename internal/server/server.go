// Package server provides the HTTP surface of the rangoli pipeline: the
// overlay stream, the landmark WebSocket, and the control API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/loop"
	"github.com/ayusman/rangoli/internal/overlay"
	"github.com/ayusman/rangoli/internal/server/api"
	"github.com/ayusman/rangoli/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Renderer  *overlay.Renderer
	Loop      *loop.Loop
	Pipeline  api.PipelineController
}

// Server represents the HTTP server for the rangoli application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Pipeline != nil && s.config.Loop != nil {
		s.mux.Handle("/api/mode", api.NewModeHandler(s.config.Pipeline, s.config.Loop))
	}

	if s.config.Pipeline != nil {
		s.mux.Handle("/api/source", api.NewSourceHandler(s.config.Pipeline, s.config.Store))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/media", api.NewMediaHandler(s.config.Store))
		s.mux.Handle("/api/profiles", api.NewProfilesHandler(s.config.Store))
		s.mux.Handle("/api/profiles/", api.NewProfilesHandler(s.config.Store))
	}

	// Overlay MJPEG stream from the renderer canvas.
	if s.config.Renderer != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Renderer))
	}

	// Landmark broadcast fed by the loop's rendered ticks.
	if s.config.Loop != nil {
		landmarks := NewLandmarksHandler()
		s.config.Loop.OnResults(func(results []detect.Detection) {
			landmarks.Publish(s.config.Loop.Schema().Variant, results)
		})
		s.mux.Handle("/api/landmarks", landmarks)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
