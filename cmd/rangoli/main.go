package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/rangoli/internal/app"
	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/loop"
	"github.com/ayusman/rangoli/internal/server"
	"github.com/ayusman/rangoli/internal/store"
	"github.com/ayusman/rangoli/internal/tray"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "default camera device ID")
	motionThresh := flag.Float64("motion-gate", 0, "skip inference below this scene-change percentage (0 disables)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Rangoli - Landmark Overlay Pipeline")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".rangoli")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "rangoli.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application := app.New(app.Config{
		Store:        st,
		CameraID:     *cameraID,
		MotionThresh: *motionThresh,
	})

	if err := application.Start(); err != nil {
		// A denied camera or missing file leaves the pipeline inactive but
		// the control surface up, so the user can pick another source.
		log.Printf("Pipeline inactive: %v", err)
	}
	defer application.Stop()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Renderer:  application.Renderer(),
		Loop:      application.Loop(),
		Pipeline:  application,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		select {}
	}

	t := tray.New()
	t.OnVariant(func(v detect.Variant) {
		if err := application.SwitchVariant(v); err != nil {
			log.Printf("Failed to switch variant: %v", err)
		}
	})
	t.OnToggle(func(paused bool) {
		application.Loop().SetPaused(paused)
	})
	t.OnQuit(func() {
		application.Stop()
	})
	application.Loop().OnState(func(s loop.State, err error) {
		if err != nil {
			t.SetState(s.String() + ": " + err.Error())
			return
		}
		t.SetState(s.String())
	})
	t.SetVariant(application.ActiveVariant())

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.rangoli/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".rangoli", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
