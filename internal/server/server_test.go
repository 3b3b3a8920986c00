package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/overlay"
)

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}

	t.Run("rejects non-get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestRoutesAbsentWithoutDependencies(t *testing.T) {
	// A server with no store or pipeline only exposes health.
	s := New(Config{})

	for _, path := range []string{"/api/mode", "/api/media", "/api/profiles"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for %s, got %d", path, rec.Code)
		}
	}
}

func TestStreamHandlerHeaders(t *testing.T) {
	renderer := overlay.New()
	defer renderer.Close()

	h := NewStreamHandler(renderer)

	// A canceled request exits the stream loop immediately after the
	// headers are written.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("unexpected content type %q", ct)
	}

	t.Run("rejects non-get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestLandmarksHandlerBroadcast(t *testing.T) {
	h := NewLandmarksHandler()

	// Publishing with no clients is a no-op.
	h.Publish(detect.VariantHand, []detect.Detection{detect.HandFixture()})

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", h.ClientCount())
	}

	h.Publish(detect.VariantHand, []detect.Detection{detect.HandFixture()})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Variant  string `json:"variant"`
		Subjects []struct {
			Label string `json:"label"`
		} `json:"subjects"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.Variant != "hand" {
		t.Errorf("expected hand variant, got %q", msg.Variant)
	}
	if len(msg.Subjects) != 1 || msg.Subjects[0].Label != "Right" {
		t.Errorf("unexpected subjects: %+v", msg.Subjects)
	}
	if msg.Timestamp == 0 {
		t.Error("expected a timestamp")
	}
}

func TestLandmarksHandlerConcurrentPublish(t *testing.T) {
	h := NewLandmarksHandler()

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", h.ClientCount())
	}

	// Writes to a single connection must be serialized; concurrent
	// publishers would otherwise corrupt the stream.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Publish(detect.VariantHand, []detect.Detection{detect.HandFixture()})
			}
		}()
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for i := 0; i < 160; i++ {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
	}
}
