// Package overlay renders detection results onto a canvas Mat: landmark
// markers, skeleton lines, and per-variant decorations.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/rangoli/internal/detect"
)

// Drawing style constants.
const (
	markerRadius  = 3
	lineThickness = 2
	fontScale     = 0.5
	fontThickness = 1
)

// ErrNoCanvas is returned by Snapshot before the first Resize.
var ErrNoCanvas = errors.New("canvas has no size yet")

// Renderer owns the overlay canvas. Every Render call clears the full
// canvas and redraws from the given results, so renders are idempotent
// snapshots rather than diffs. The renderer never mutates a Detection.
type Renderer struct {
	mu         sync.Mutex
	canvas     gocv.Mat
	width      int
	height     int
	thresholds FaceThresholds
}

// New creates a Renderer with no canvas; Resize must run before the first
// Render.
func New() *Renderer {
	return &Renderer{
		canvas:     gocv.NewMat(),
		thresholds: DefaultFaceThresholds(),
	}
}

// SetFaceThresholds replaces the face classifier thresholds.
func (r *Renderer) SetFaceThresholds(t FaceThresholds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thresholds = t
}

// Resize matches the canvas to the given frame dimensions. A no-op when the
// size is unchanged; otherwise the canvas is recreated black.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if width == r.width && height == r.height {
		return
	}

	r.canvas.Close()
	r.canvas = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	r.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	r.width = width
	r.height = height
}

// Size returns the current canvas dimensions, (0,0) before the first
// Resize.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Clear blanks the canvas.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

func (r *Renderer) clearLocked() {
	if r.canvas.Empty() {
		return
	}
	r.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Render clears the canvas and draws the given results using the variant's
// landmark schema. Results beyond the schema's subject cap are discarded
// without error.
func (r *Renderer) Render(results []detect.Detection, schema detect.Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearLocked()
	if r.canvas.Empty() {
		return
	}

	if schema.MaxSubjects > 0 && len(results) > schema.MaxSubjects {
		results = results[:schema.MaxSubjects]
	}

	for i := range results {
		r.drawSubject(i, &results[i], schema)
	}
}

func (r *Renderer) drawSubject(index int, d *detect.Detection, schema detect.Schema) {
	col := subjectColor(index)

	// Skeleton lines: both endpoints must exist and, where per-landmark
	// confidence applies, both must clear the threshold.
	for _, e := range schema.Edges {
		a, okA := d.Landmark(e.A)
		b, okB := d.Landmark(e.B)
		if !okA || !okB {
			continue
		}
		if schema.ConfThreshold > 0 &&
			(d.Confidence(e.A) < schema.ConfThreshold || d.Confidence(e.B) < schema.ConfThreshold) {
			continue
		}
		gocv.Line(&r.canvas, r.toPixel(a), r.toPixel(b), col, lineThickness)
	}

	// A filled marker at every landmark.
	for j := range d.Points {
		gocv.Circle(&r.canvas, r.toPixel(d.Points[j]), markerRadius, col, -1)
	}

	switch schema.Variant {
	case detect.VariantHand:
		r.drawHandLabel(d, col)
	case detect.VariantPose:
		r.drawPoseLabel(index, d, col)
	case detect.VariantFace:
		r.drawFaceSignals(d, col)
	}
}

// drawHandLabel writes the handedness label near the wrist landmark.
func (r *Renderer) drawHandLabel(d *detect.Detection, col color.RGBA) {
	if d.Label == "" {
		return
	}
	wrist, ok := d.Landmark(detect.HandWrist)
	if !ok {
		return
	}
	pt := r.toPixel(wrist)
	pt.Y += 18
	gocv.PutText(&r.canvas, d.Label, pt, gocv.FontHersheySimplex, fontScale, col, fontThickness)
}

// drawPoseLabel writes the subject index and rounded score above the head.
func (r *Renderer) drawPoseLabel(index int, d *detect.Detection, col color.RGBA) {
	anchor, ok := d.Landmark(detect.PoseNose)
	if !ok {
		return
	}
	pt := r.toPixel(anchor)
	pt.Y -= 12
	label := fmt.Sprintf("#%d %.2f", index, d.Score)
	gocv.PutText(&r.canvas, label, pt, gocv.FontHersheySimplex, fontScale, col, fontThickness)
}

// drawFaceSignals classifies expression and gaze and writes both above the
// face.
func (r *Renderer) drawFaceSignals(d *detect.Detection, col color.RGBA) {
	expr := ClassifyExpression(d, r.thresholds)
	gaze := ClassifyGaze(d, r.thresholds)

	anchor := faceAnchor(d)
	pt := r.toPixel(anchor)
	pt.Y -= 12
	label := expr + " / gaze " + gaze
	gocv.PutText(&r.canvas, label, pt, gocv.FontHersheySimplex, fontScale, col, fontThickness)
}

// faceAnchor returns the topmost named face landmark so the label sits above
// the face.
func faceAnchor(d *detect.Detection) detect.Point3D {
	anchor, ok := d.Landmark(detect.FaceRightBrowMid)
	if !ok {
		if len(d.Points) > 0 {
			return d.Points[0]
		}
		return detect.Point3D{}
	}
	if left, ok := d.Landmark(detect.FaceLeftBrowMid); ok {
		anchor.X = (anchor.X + left.X) / 2
		if left.Y < anchor.Y {
			anchor.Y = left.Y
		}
	}
	return anchor
}

// toPixel maps a normalized coordinate to canvas pixels, clamped to the
// canvas bounds.
func (r *Renderer) toPixel(p detect.Point3D) image.Point {
	x := int(p.X * float64(r.width))
	y := int(p.Y * float64(r.height))
	if x < 0 {
		x = 0
	} else if x >= r.width {
		x = r.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= r.height {
		y = r.height - 1
	}
	return image.Point{X: x, Y: y}
}

// Snapshot returns a clone of the canvas for encoding; the caller closes
// it.
func (r *Renderer) Snapshot() (gocv.Mat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.canvas.Empty() {
		return gocv.Mat{}, ErrNoCanvas
	}
	return r.canvas.Clone(), nil
}

// Close releases the canvas.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canvas.Close()
}
