// Package testdata provides synthetic video frames for tests, so no binary
// media needs to ship with the repository.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// SolidFrame creates a single-color BGR frame. The caller closes it.
func SolidFrame(width, height int, c color.RGBA) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
	return &mat
}

// FrameSequence creates a sequence of frames alternating between two
// shades, enough difference for the motion gate to see activity. The
// caller closes them.
func FrameSequence(width, height, count int) []*gocv.Mat {
	frames := make([]*gocv.Mat, count)
	for i := range frames {
		shade := uint8(40)
		if i%2 == 1 {
			shade = 220
		}
		frames[i] = SolidFrame(width, height, color.RGBA{R: shade, G: shade, B: shade})
	}
	return frames
}

// MarkedFrame creates a dark frame with a filled rectangle, so consecutive
// frames with different marks differ locally rather than globally. The
// caller closes it.
func MarkedFrame(width, height int, mark image.Rectangle) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(20, 20, 20, 0))
	gocv.Rectangle(&mat, mark, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return &mat
}

// CloseFrames closes every frame in the slice.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
