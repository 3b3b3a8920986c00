// Package loop implements the fixed-interval detection scheduler that pulls
// frames from a video source, feeds them to the active detector adapter,
// and hands the results to the overlay renderer.
package loop

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/overlay"
	"github.com/ayusman/rangoli/internal/source"
)

// DefaultInterval is the reference tick period.
const DefaultInterval = 100 * time.Millisecond

// State is the loop's lifecycle state.
type State int

const (
	// StateIdle means no model is loaded; entered initially and after a
	// failed load.
	StateIdle State = iota
	// StateLoading means a model load is in flight; ticks are suppressed.
	StateLoading
	// StateReady means the model is available and ticks attempt detection.
	StateReady
	// StateDetecting means an inference call is outstanding. The timer
	// keeps firing; overlapping ticks are skipped, not queued.
	StateDetecting
	// StateStopped means the loop was torn down.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDetecting:
		return "detecting"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// ErrLoadInProgress is returned when activating an adapter while another
// load is still in flight.
var ErrLoadInProgress = errors.New("model load already in progress")

// Options configures a Loop.
type Options struct {
	// Interval is the tick period; DefaultInterval when zero.
	Interval time.Duration

	// Gate, when set, skips inference for ticks whose frame shows a static
	// scene.
	Gate *source.MotionGate
}

// Loop drives the source → adapter → renderer pipeline. It owns the canvas
// and the active adapter exclusively: at most one inference is in flight,
// and results from a torn-down adapter are discarded by an epoch counter
// bumped on every teardown.
type Loop struct {
	src      source.Source
	renderer *overlay.Renderer
	interval time.Duration
	gate     *source.MotionGate

	mu         sync.Mutex
	adapter    detect.Adapter
	schema     detect.Schema
	state      State
	lastErr    error
	epoch      uint64
	inFlight   bool
	paused     bool
	running    bool
	stopCh     chan struct{}
	loadCancel context.CancelFunc

	notifyQueue []stateEvent
	notifying   bool

	onState   func(State, error)
	onResults func([]detect.Detection)
}

// New creates a Loop over the given source and renderer.
func New(src source.Source, renderer *overlay.Renderer, opts Options) *Loop {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		src:      src,
		renderer: renderer,
		interval: interval,
		gate:     opts.Gate,
		state:    StateIdle,
	}
}

// OnState registers a listener for state transitions. Load failures reach
// the listener as the error accompanying the Idle state.
func (l *Loop) OnState(fn func(State, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onState = fn
}

// OnResults registers a listener invoked after every rendered tick with the
// results that were drawn.
func (l *Loop) OnResults(fn func([]detect.Detection)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onResults = fn
}

// State returns the current state and, for Idle after a failed load, the
// surfaced error.
func (l *Loop) State() (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.lastErr
}

// SetPaused suspends or resumes ticking without touching the model handle.
func (l *Loop) SetPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = paused
}

// Paused reports whether ticking is suspended.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// SetSource swaps the video source the loop pulls from. The caller is
// responsible for releasing the old source; the swap takes effect on the
// next tick.
func (l *Loop) SetSource(src source.Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src = src
	if l.gate != nil {
		l.gate.Reset()
	}
}

// Schema returns the active adapter's landmark schema.
func (l *Loop) Schema() detect.Schema {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema
}

// Start activates the first adapter: the model loads in the background and
// ticking begins once it is ready. Use SwitchAdapter to replace a running
// adapter.
func (l *Loop) Start(adapter detect.Adapter) error {
	l.mu.Lock()
	if l.state == StateLoading {
		l.mu.Unlock()
		return ErrLoadInProgress
	}
	if l.adapter != nil {
		l.mu.Unlock()
		return errors.New("adapter already active, use SwitchAdapter")
	}
	l.beginLoadLocked(adapter)
	l.mu.Unlock()
	return nil
}

// SwitchAdapter tears down the active adapter and activates a new one. The
// prior model handle is fully discarded before the new load begins, and any
// in-flight detection from the old adapter is dropped on arrival.
func (l *Loop) SwitchAdapter(adapter detect.Adapter) {
	l.mu.Lock()
	old := l.teardownLocked()
	l.beginLoadLocked(adapter)
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Stop cancels the timer and tears down the adapter. An in-flight detection
// or load is not forcibly aborted; its result is ignored on arrival.
func (l *Loop) Stop() {
	l.mu.Lock()
	old := l.teardownLocked()
	if l.stopCh != nil {
		close(l.stopCh)
		l.stopCh = nil
	}
	l.running = false
	l.setStateLocked(StateStopped, nil)
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// beginLoadLocked enters Loading and dispatches the background load for the
// current epoch.
func (l *Loop) beginLoadLocked(adapter detect.Adapter) {
	l.setStateLocked(StateLoading, nil)
	ctx, cancel := context.WithCancel(context.Background())
	l.loadCancel = cancel
	go l.load(ctx, adapter, l.epoch)
}

// teardownLocked invalidates the current epoch, cancels a pending load and
// detaches the adapter. The caller closes the returned adapter outside the
// lock.
func (l *Loop) teardownLocked() detect.Adapter {
	l.epoch++
	if l.loadCancel != nil {
		l.loadCancel()
		l.loadCancel = nil
	}
	old := l.adapter
	l.adapter = nil
	l.inFlight = false
	return old
}

func (l *Loop) load(ctx context.Context, adapter detect.Adapter, epoch uint64) {
	err := adapter.Load(ctx)

	l.mu.Lock()
	if epoch != l.epoch {
		// Torn down while loading; the handle must not survive.
		l.mu.Unlock()
		adapter.Close()
		return
	}
	l.loadCancel = nil

	if err != nil {
		l.setStateLocked(StateIdle, err)
		l.mu.Unlock()
		adapter.Close()
		log.Printf("model load failed: %v", err)
		return
	}

	l.adapter = adapter
	l.schema = detect.SchemaFor(adapter.Config())
	l.setStateLocked(StateReady, nil)

	if !l.running {
		l.running = true
		l.stopCh = make(chan struct{})
		go l.run(l.stopCh)
	}
	l.mu.Unlock()
}

func (l *Loop) run(stopCh chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// tick runs one detection attempt. Skipped silently when the loop is not
// Ready, an inference is outstanding, or the source has no decodable frame
// yet. Dimensions come from the decoded frame itself, so a source that only
// learns its size on the first read still feeds the pipeline.
func (l *Loop) tick() {
	l.mu.Lock()

	if l.paused || l.state != StateReady || l.inFlight || l.adapter == nil {
		l.mu.Unlock()
		return
	}

	frame, err := l.src.ReadFrame()
	if err != nil {
		l.mu.Unlock()
		return
	}

	width, height := frame.Cols(), frame.Rows()
	if width <= 0 || height <= 0 {
		frame.Close()
		l.mu.Unlock()
		return
	}

	if l.gate != nil {
		if active, _ := l.gate.Step(frame); !active {
			frame.Close()
			l.mu.Unlock()
			return
		}
	}

	l.renderer.Resize(width, height)

	adapter := l.adapter
	epoch := l.epoch
	l.inFlight = true
	l.setStateLocked(StateDetecting, nil)
	l.mu.Unlock()

	go l.detect(adapter, frame, epoch)
}

func (l *Loop) detect(adapter detect.Adapter, frame *gocv.Mat, epoch uint64) {
	results, err := adapter.Detect(frame)
	frame.Close()

	l.mu.Lock()
	if epoch != l.epoch {
		// Stale result from a torn-down adapter; never rendered.
		l.mu.Unlock()
		return
	}
	schema := l.schema
	onResults := l.onResults
	l.mu.Unlock()

	if err != nil {
		// A bad frame is recovered locally: empty overlay, loop continues.
		log.Printf("detect failed, skipping frame: %v", err)
		results = nil
	}

	// Render and broadcast while still counted as in flight, so the next
	// tick cannot overlap the tail and results reach consumers in tick
	// order.
	l.renderer.Render(results, schema)
	if onResults != nil {
		onResults(results)
	}

	l.mu.Lock()
	if epoch == l.epoch {
		l.inFlight = false
		if l.state == StateDetecting {
			l.setStateLocked(StateReady, nil)
		}
	}
	l.mu.Unlock()
}

// stateEvent is one queued state-listener notification.
type stateEvent struct {
	state State
	err   error
}

func (l *Loop) setStateLocked(s State, err error) {
	l.state = s
	l.lastErr = err
	if l.onState == nil {
		return
	}

	// Notifications are queued and drained by a single goroutine so
	// listeners observe transitions in the order they happened.
	l.notifyQueue = append(l.notifyQueue, stateEvent{state: s, err: err})
	if !l.notifying {
		l.notifying = true
		go l.drainNotifications()
	}
}

func (l *Loop) drainNotifications() {
	for {
		l.mu.Lock()
		if len(l.notifyQueue) == 0 {
			l.notifying = false
			l.mu.Unlock()
			return
		}
		ev := l.notifyQueue[0]
		l.notifyQueue = l.notifyQueue[1:]
		fn := l.onState
		l.mu.Unlock()

		if fn != nil {
			fn(ev.state, ev.err)
		}
	}
}
