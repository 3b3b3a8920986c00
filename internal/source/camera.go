package source

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// CameraSource captures frames from a camera device. A failed device open
// is reported as ErrPermissionDenied: GoCV surfaces one opaque error for
// denial, missing device and busy device, and denial is the case the UI
// must present.
type CameraSource struct {
	deviceID int

	mu       sync.Mutex
	capture  *gocv.VideoCapture
	open     bool
	width    int
	height   int
	onResize func(width, height int)
}

// NewCamera creates a camera source for the given device ID.
func NewCamera(deviceID int) *CameraSource {
	return &CameraSource{deviceID: deviceID}
}

// Open acquires the camera device at the default capture resolution.
func (c *CameraSource) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", ErrPermissionDenied, c.deviceID, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, DefaultFPS)

	c.capture = capture
	c.open = true

	// The driver reports the negotiated capture size up front; decoded
	// frames may still differ, which ReadFrame reconciles.
	c.width = int(capture.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(capture.Get(gocv.VideoCaptureFrameHeight))
	return nil
}

// Close releases the camera hardware track.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		c.open = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.open = false
	c.width = 0
	c.height = 0
	return err
}

// ReadFrame reads the current frame. The caller closes the returned Mat.
func (c *CameraSource) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		return nil, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrNotReady
	}

	c.noteDimensionsLocked(mat.Cols(), mat.Rows())
	return &mat, nil
}

// Dimensions returns the frame size, (0,0) before Open.
func (c *CameraSource) Dimensions() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// IsOpen reports whether the device is held.
func (c *CameraSource) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// OnResize registers the dimension-change callback.
func (c *CameraSource) OnResize(fn func(width, height int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResize = fn
}

// noteDimensionsLocked records the decoded size and fires the resize
// callback on change. Called with the mutex held; the callback runs outside
// the lock.
func (c *CameraSource) noteDimensionsLocked(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width = width
	c.height = height
	if fn := c.onResize; fn != nil {
		go fn(width, height)
	}
}
