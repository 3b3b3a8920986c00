package source

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource plays back pre-built frames for testing. It mirrors the file
// source's loop-at-end behavior and lets tests inject open and read errors.
type MockSource struct {
	mu       sync.Mutex
	frames   []*gocv.Mat
	index    int
	loop     bool
	open     bool
	width    int
	height   int
	openErr  error
	readErr  error
	onResize func(width, height int)

	ReadCalls int
}

// NewMock creates a mock source over the given frames. With loop true,
// playback restarts at frame zero after the last frame.
func NewMock(frames []*gocv.Mat, loop bool) *MockSource {
	m := &MockSource{frames: frames, loop: loop}
	if len(frames) > 0 && frames[0] != nil && !frames[0].Empty() {
		m.width = frames[0].Cols()
		m.height = frames[0].Rows()
	}
	return m
}

// SetOpenError makes Open fail with err.
func (m *MockSource) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// SetReadError makes ReadFrame fail with err.
func (m *MockSource) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetDimensions overrides the reported dimensions, firing the resize
// callback on change. Tests use it to simulate mid-stream size changes.
func (m *MockSource) SetDimensions(width, height int) {
	m.mu.Lock()
	changed := width != m.width || height != m.height
	m.width = width
	m.height = height
	fn := m.onResize
	m.mu.Unlock()

	if changed && fn != nil {
		fn(width, height)
	}
}

// Open marks the source open, or fails with the injected error.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	m.index = 0
	return nil
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// ReadFrame returns a clone of the current frame, advancing and looping
// like a file source.
func (m *MockSource) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCalls++

	if !m.open {
		return nil, ErrNotOpen
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.frames) == 0 {
		return nil, ErrNotReady
	}

	if m.index >= len(m.frames) {
		if !m.loop {
			return nil, ErrNotReady
		}
		m.index = 0
	}

	frame := m.frames[m.index].Clone()
	m.index++
	return &frame, nil
}

// Dimensions returns the configured frame size.
func (m *MockSource) Dimensions() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// IsOpen reports the open state.
func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// OnResize registers the dimension-change callback.
func (m *MockSource) OnResize(fn func(width, height int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResize = fn
}

// Index returns the current playback position.
func (m *MockSource) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}
