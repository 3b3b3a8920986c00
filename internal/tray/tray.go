// Package tray provides the system tray interface for the rangoli overlay
// pipeline: variant selection, pause/resume, and a loop-state readout.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/rangoli/internal/detect"
)

// Tray represents the system tray application. It is a display-only
// consumer of pipeline state; all actions go through the registered
// callbacks.
type Tray struct {
	onVariant func(v detect.Variant)
	onToggle  func(paused bool)
	onQuit    func()
	paused    bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuState  *systray.MenuItem
	menuHand   *systray.MenuItem
	menuFace   *systray.MenuItem
	menuPose   *systray.MenuItem
}

// New creates a new Tray instance, unpaused by default.
func New() *Tray {
	return &Tray{}
}

// OnVariant sets the callback called when a detector variant is selected.
func (t *Tray) OnVariant(fn func(v detect.Variant)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onVariant = fn
}

// OnToggle sets the callback called when the pause state is toggled.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. Blocks until systray.Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady builds the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Rangoli")
	systray.SetTooltip("Rangoli Landmark Overlay")

	t.menuState = systray.AddMenuItem("State: idle", "Detection loop state")
	t.menuState.Disable()
	systray.AddSeparator()

	t.menuHand = systray.AddMenuItem("Hands", "Detect hand landmarks")
	t.menuFace = systray.AddMenuItem("Face", "Detect face landmarks")
	t.menuPose = systray.AddMenuItem("Pose", "Detect body pose")
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem("Pause", "Pause the overlay pipeline")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Rangoli")

	go func() {
		for {
			select {
			case <-t.menuHand.ClickedCh:
				t.handleVariant(detect.VariantHand)
			case <-t.menuFace.ClickedCh:
				t.handleVariant(detect.VariantFace)
			case <-t.menuPose.ClickedCh:
				t.handleVariant(detect.VariantPose)
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) handleVariant(v detect.Variant) {
	t.mu.RLock()
	callback := t.onVariant
	t.mu.RUnlock()

	t.SetVariant(v)
	if callback != nil {
		callback(v)
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused

	if paused {
		t.menuToggle.SetTitle("Resume")
	} else {
		t.menuToggle.SetTitle("Pause")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetVariant marks the active variant in the menu.
func (t *Tray) SetVariant(v detect.Variant) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuHand == nil {
		return
	}
	t.menuHand.SetTitle(markTitle("Hands", v == detect.VariantHand))
	t.menuFace.SetTitle(markTitle("Face", v == detect.VariantFace))
	t.menuPose.SetTitle(markTitle("Pose", v == detect.VariantPose))
}

// SetState updates the loop-state readout.
func (t *Tray) SetState(state string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuState != nil {
		t.menuState.SetTitle("State: " + state)
	}
}

// IsPaused returns the current pause state.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

func markTitle(title string, active bool) string {
	if active {
		return "● " + title
	}
	return "○ " + title
}
