package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/rangoli/internal/detect"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LandmarksHandler broadcasts each rendered tick's detections to WebSocket
// clients. It never runs inference itself; the loop publishes into it.
type LandmarksHandler struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// wsClient serializes writes to one connection; gorilla/websocket forbids
// concurrent writers.
type wsClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (c *wsClient) write(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// NewLandmarksHandler creates an empty broadcast hub.
func NewLandmarksHandler() *LandmarksHandler {
	return &LandmarksHandler{
		clients: make(map[string]*wsClient),
	}
}

// landmarksMessage is the broadcast payload for one rendered tick.
type landmarksMessage struct {
	Variant   detect.Variant     `json:"variant"`
	Subjects  []detect.Detection `json:"subjects"`
	Timestamp int64              `json:"timestamp"`
}

// Publish sends the detections from one rendered tick to every client.
// Slow or gone clients are dropped.
func (h *LandmarksHandler) Publish(variant detect.Variant, results []detect.Detection) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	msg, err := json.Marshal(landmarksMessage{
		Variant:   variant,
		Subjects:  results,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	var stale []string
	h.mu.RLock()
	for id, client := range h.clients {
		if err := client.write(msg); err != nil {
			stale = append(stale, id)
		}
	}
	h.mu.RUnlock()

	if len(stale) > 0 {
		h.mu.Lock()
		for _, id := range stale {
			if client, ok := h.clients[id]; ok {
				client.conn.Close()
				delete(h.clients, id)
			}
		}
		h.mu.Unlock()
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()

	h.mu.Lock()
	h.clients[id] = &wsClient{conn: conn}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
	}()

	// Keep the connection alive by reading messages until the peer goes
	// away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *LandmarksHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
