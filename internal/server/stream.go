package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/rangoli/internal/overlay"
)

// streamInterval paces the MJPEG stream at roughly 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the overlay canvas as an MJPEG stream.
type StreamHandler struct {
	renderer *overlay.Renderer
}

// NewStreamHandler creates a new StreamHandler over the given renderer.
func NewStreamHandler(renderer *overlay.Renderer) *StreamHandler {
	return &StreamHandler{renderer: renderer}
}

// ServeHTTP streams MJPEG snapshots of the overlay to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		snapshot, err := h.renderer.Snapshot()
		if err != nil {
			// No canvas yet; keep the connection and try again.
			continue
		}

		buf, err := gocv.IMEncode(".jpg", snapshot)
		snapshot.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
