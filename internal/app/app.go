// Package app wires the rangoli pipeline together: one video source, one
// active detector adapter, one detection loop and one overlay renderer,
// plus the store holding cross-session preferences.
package app

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/loop"
	"github.com/ayusman/rangoli/internal/overlay"
	"github.com/ayusman/rangoli/internal/source"
	"github.com/ayusman/rangoli/internal/store"
)

// Source modes persisted in settings.
const (
	SourceModeCamera = "camera"
	SourceModeFile   = "file"
)

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	CameraID int

	// Interval overrides the detection tick period; loop.DefaultInterval
	// when zero.
	Interval time.Duration

	// MotionThresh enables the motion gate when positive: ticks whose
	// frame changed less than this percentage skip inference.
	MotionThresh float64

	// AdapterFactory builds adapters from configurations. Defaults to
	// detect.NewAdapter; tests substitute mocks.
	AdapterFactory func(detect.Config) (detect.Adapter, error)

	// Source overrides the persisted source selection; tests substitute
	// mocks.
	Source source.Source
}

// App owns the detection pipeline. Exactly one source and one adapter are
// active at a time; switching either tears the previous one down first.
type App struct {
	config   Config
	renderer *overlay.Renderer
	loop     *loop.Loop
	factory  func(detect.Config) (detect.Adapter, error)

	mu      sync.RWMutex
	src     source.Source
	variant detect.Variant
	started bool
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	factory := config.AdapterFactory
	if factory == nil {
		factory = detect.NewAdapter
	}

	renderer := overlay.New()

	var gate *source.MotionGate
	if config.MotionThresh > 0 {
		gate = source.NewMotionGate(config.MotionThresh)
	}

	src := source.NewCamera(config.CameraID)

	a := &App{
		config:   config,
		renderer: renderer,
		factory:  factory,
		src:      src,
		variant:  detect.VariantHand,
	}
	a.loop = loop.New(src, renderer, loop.Options{
		Interval: config.Interval,
		Gate:     gate,
	})
	return a
}

// Start opens the persisted video source and activates the persisted
// detector variant. A camera denial is returned to the caller; the
// pipeline stays inactive and a retry requires another Start.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}

	src, err := a.restoreSourceLocked()
	if err != nil {
		return err
	}
	a.src = src
	a.src.OnResize(a.renderer.Resize)
	a.loop.SetSource(a.src)

	variant := a.restoreVariantLocked()
	adapter, err := a.buildAdapterLocked(variant)
	if err != nil {
		a.src.Close()
		return err
	}

	if err := a.loop.Start(adapter); err != nil {
		a.src.Close()
		return err
	}

	a.variant = variant
	a.started = true
	log.Printf("pipeline started, variant %s", variant)
	return nil
}

// Stop halts the loop and releases the source and canvas.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return
	}
	a.started = false

	a.loop.Stop()
	if err := a.src.Close(); err != nil {
		log.Printf("error closing source: %v", err)
	}
	log.Println("pipeline stopped")
}

// SwitchVariant tears down the active adapter and activates the given
// variant with its stored profile. The prior model handle is fully
// discarded before the new load begins.
func (a *App) SwitchVariant(v detect.Variant) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	adapter, err := a.buildAdapterLocked(v)
	if err != nil {
		return err
	}

	a.loop.SwitchAdapter(adapter)
	a.variant = v

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingActiveVariant, string(v)); err != nil {
			log.Printf("failed to persist active variant: %v", err)
		}
	}
	log.Printf("switched to variant %s", v)
	return nil
}

// SetFileSource switches the pipeline to a looping media file. The current
// source's capture handle is released before the file opens, so the camera
// and the file are never held at once.
func (a *App) SetFileSource(path string) error {
	next := source.NewFile(path)
	return a.swapSource(next, SourceModeFile, path)
}

// SetCameraSource switches the pipeline back to a camera device.
func (a *App) SetCameraSource(deviceID int) error {
	next := source.NewCamera(deviceID)
	return a.swapSource(next, SourceModeCamera, strconv.Itoa(deviceID))
}

func (a *App) swapSource(next source.Source, mode, ref string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.src.Close(); err != nil {
		log.Printf("error releasing source: %v", err)
	}

	if err := next.Open(); err != nil {
		// The old source is already released; the pipeline idles on a
		// closed source until the user picks a working one.
		a.src = next
		a.loop.SetSource(next)
		return err
	}

	next.OnResize(a.renderer.Resize)
	a.src = next
	a.loop.SetSource(next)

	if a.config.Store != nil {
		settings := a.config.Store.Settings()
		if err := settings.Set(store.SettingSourceMode, mode); err != nil {
			log.Printf("failed to persist source mode: %v", err)
		}
		if mode == SourceModeFile {
			settings.Set(store.SettingSourcePath, ref)
			if err := a.config.Store.RecentMedia().Add(ref); err != nil {
				log.Printf("failed to record recent media: %v", err)
			}
		} else {
			settings.Set(store.SettingCameraID, ref)
		}
	}
	log.Printf("source switched to %s %s", mode, ref)
	return nil
}

// restoreSourceLocked builds the source described by persisted settings and
// opens it.
func (a *App) restoreSourceLocked() (source.Source, error) {
	if a.config.Source != nil {
		if err := a.config.Source.Open(); err != nil {
			return nil, err
		}
		return a.config.Source, nil
	}

	mode := SourceModeCamera
	path := ""
	cameraID := a.config.CameraID

	if a.config.Store != nil {
		settings := a.config.Store.Settings()
		mode = settings.GetDefault(store.SettingSourceMode, SourceModeCamera)
		path = settings.GetDefault(store.SettingSourcePath, "")
		if id, err := strconv.Atoi(settings.GetDefault(store.SettingCameraID, strconv.Itoa(cameraID))); err == nil {
			cameraID = id
		}
	}

	var src source.Source
	if mode == SourceModeFile && path != "" {
		src = source.NewFile(path)
	} else {
		src = source.NewCamera(cameraID)
	}

	if err := src.Open(); err != nil {
		return nil, err
	}
	return src, nil
}

func (a *App) restoreVariantLocked() detect.Variant {
	if a.config.Store == nil {
		return detect.VariantHand
	}
	v := detect.Variant(a.config.Store.Settings().GetDefault(store.SettingActiveVariant, string(detect.VariantHand)))
	for _, known := range detect.Variants {
		if v == known {
			return v
		}
	}
	return detect.VariantHand
}

// buildAdapterLocked constructs an adapter for a variant from its stored
// profile, falling back to the variant defaults without a store.
func (a *App) buildAdapterLocked(v detect.Variant) (detect.Adapter, error) {
	cfg := detect.DefaultConfig(v)
	if a.config.Store != nil {
		profile, err := a.config.Store.Profiles().Get(v)
		if err != nil {
			return nil, fmt.Errorf("load profile for %s: %w", v, err)
		}
		cfg = profile.Config()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return a.factory(cfg)
}

// ActiveVariant returns the currently selected detector variant.
func (a *App) ActiveVariant() detect.Variant {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.variant
}

// Loop returns the detection loop.
func (a *App) Loop() *loop.Loop {
	return a.loop
}

// Renderer returns the overlay renderer.
func (a *App) Renderer() *overlay.Renderer {
	return a.renderer
}

// Source returns the active video source.
func (a *App) Source() source.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.src
}

// Store returns the preference store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
