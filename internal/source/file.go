package source

import (
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// FileSource decodes frames from a media file. When the file reaches
// end-of-stream, playback seeks back to frame zero and resumes, so the
// source loops forever instead of stopping.
type FileSource struct {
	path string

	mu       sync.Mutex
	capture  *gocv.VideoCapture
	open     bool
	width    int
	height   int
	onResize func(width, height int)
}

// NewFile creates a file source for the given media path.
func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the media file path.
func (f *FileSource) Path() string {
	return f.path
}

// Open starts decoding the media file.
func (f *FileSource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.open {
		return nil
	}

	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadMedia, f.path, err)
	}

	capture, err := gocv.OpenVideoCapture(f.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadMedia, f.path, err)
	}

	f.capture = capture
	f.open = true

	// Container metadata gives the frame size before any decode; decoded
	// frames may still differ, which ReadFrame reconciles.
	f.width = int(capture.Get(gocv.VideoCaptureFrameWidth))
	f.height = int(capture.Get(gocv.VideoCaptureFrameHeight))
	return nil
}

// Close releases the file handle.
func (f *FileSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open || f.capture == nil {
		f.open = false
		return nil
	}

	err := f.capture.Close()
	f.capture = nil
	f.open = false
	f.width = 0
	f.height = 0
	return err
}

// ReadFrame reads the next decoded frame, looping back to the start at
// end-of-stream. The caller closes the returned Mat.
func (f *FileSource) ReadFrame() (*gocv.Mat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open || f.capture == nil {
		return nil, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := f.capture.Read(&mat); !ok || mat.Empty() {
		// End of stream: rewind and try once more.
		f.capture.Set(gocv.VideoCapturePosFrames, 0)
		if ok := f.capture.Read(&mat); !ok || mat.Empty() {
			mat.Close()
			return nil, fmt.Errorf("%w: %s", ErrBadMedia, f.path)
		}
	}

	f.noteDimensionsLocked(mat.Cols(), mat.Rows())
	return &mat, nil
}

// Dimensions returns the frame size, (0,0) before Open.
func (f *FileSource) Dimensions() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

// IsOpen reports whether the file handle is held.
func (f *FileSource) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// OnResize registers the dimension-change callback.
func (f *FileSource) OnResize(fn func(width, height int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onResize = fn
}

func (f *FileSource) noteDimensionsLocked(width, height int) {
	if width == f.width && height == f.height {
		return
	}
	f.width = width
	f.height = height
	if fn := f.onResize; fn != nil {
		go fn(width, height)
	}
}
