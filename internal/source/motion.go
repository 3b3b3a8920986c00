package source

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame-differencing constants.
const (
	// motionBlurKernel is the Gaussian kernel size used to suppress sensor
	// noise before differencing.
	motionBlurKernel = 21
	// motionDiffThreshold is the per-pixel binary threshold applied to the
	// frame difference.
	motionDiffThreshold = 25
)

// MotionGate is an optional activity gate for the detection loop: when the
// scene has been static, inference for a tick can be skipped. It compares
// consecutive frames by blurred grayscale differencing and reports the
// fraction of pixels that changed.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionGate creates a gate that reports activity when more than
// threshold percent of pixels changed between frames.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Step feeds the next frame and reports whether the scene is active along
// with the changed-pixel percentage. The first frame primes the baseline
// and always reports active, so a fresh gate never suppresses detection.
func (g *MotionGate) Step(frame *gocv.Mat) (active bool, changed float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: motionBlurKernel, Y: motionBlurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prev)
		g.primed = true
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, motionDiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	changed = float64(nonZero) / float64(total) * 100.0

	blurred.CopyTo(&g.prev)

	return changed > g.threshold, changed
}

// Reset drops the baseline so the next frame primes the gate again.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.primed = false
}

// Close releases the gate's resources.
func (g *MotionGate) Close() {
	g.Reset()
}
