// Package source provides the video sources feeding the detection loop:
// a live camera and a looping media file, both captured through GoCV.
package source

import (
	"errors"

	"gocv.io/x/gocv"
)

// Default capture settings.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultFPS    = 15
)

var (
	// ErrNotOpen is returned when reading from a source that is not open.
	ErrNotOpen = errors.New("source is not open")

	// ErrPermissionDenied is returned when the camera device cannot be
	// opened. Frame production stays inactive; the user must re-select the
	// camera to retry.
	ErrPermissionDenied = errors.New("camera access denied")

	// ErrBadMedia is returned when a media file cannot be opened or
	// decoded. Recovery requires selecting a new file.
	ErrBadMedia = errors.New("unreadable media file")

	// ErrNotReady is returned while a source is open but has not yet
	// produced a frame with known dimensions.
	ErrNotReady = errors.New("no frame ready")
)

// Source is a video source owned by exactly one consumer at a time. The
// camera hardware or file handle is released by Close before another source
// may open.
type Source interface {
	// Open acquires the underlying device or file.
	Open() error

	// Close releases the capture handle. Safe to call when not open.
	Close() error

	// ReadFrame returns the current decoded frame. The caller owns the Mat
	// and must close it. Returns ErrNotReady until decoded dimensions are
	// known.
	ReadFrame() (*gocv.Mat, error)

	// Dimensions returns the decoded frame size, (0,0) until known.
	Dimensions() (width, height int)

	// IsOpen reports whether the source currently holds its capture
	// handle.
	IsOpen() bool

	// OnResize registers a callback fired whenever the decoded dimensions
	// change, so the downstream render surface can follow.
	OnResize(fn func(width, height int))
}
