package overlay

import (
	"math"

	"github.com/ayusman/rangoli/internal/detect"
)

// Face signal classifications. These are coarse, display-only labels derived
// from fixed geometric ratios; the thresholds are hand-tuned against the
// reference camera setup and are configurable rather than guaranteed.
const (
	ExpressionNeutral  = "neutral"
	ExpressionSmile    = "smile"
	ExpressionSurprise = "surprise"

	GazeLeft    = "left"
	GazeCenter  = "center"
	GazeRight   = "right"
	GazeUnknown = "unknown"
)

// FaceThresholds holds the empirical ratios used by the expression and gaze
// classifiers. All ratios are normalized by mouth or eye width, so they are
// independent of face size in the frame.
type FaceThresholds struct {
	// SmileLift is the minimum lift of the mouth corners above the lip
	// midline, as a fraction of mouth width.
	SmileLift float64

	// MouthOpen is the minimum lip separation, as a fraction of mouth
	// width, for a smile to register.
	MouthOpen float64

	// SurpriseOpen is the lip separation fraction above which the
	// expression reads as surprise regardless of corner lift.
	SurpriseOpen float64

	// BrowRaise is the brow-to-eye distance, as a fraction of eye width,
	// above which raised eyebrows read as surprise.
	BrowRaise float64

	// GazeLow and GazeHigh bound the centered band of the iris position
	// ratio; below GazeLow is "left", above GazeHigh is "right".
	GazeLow  float64
	GazeHigh float64
}

// DefaultFaceThresholds returns the reference thresholds.
func DefaultFaceThresholds() FaceThresholds {
	return FaceThresholds{
		SmileLift:    0.08,
		MouthOpen:    0.05,
		SurpriseOpen: 0.45,
		BrowRaise:    0.75,
		GazeLow:      0.35,
		GazeHigh:     0.65,
	}
}

// ClassifyExpression derives a coarse expression label from the mouth and
// eyebrow geometry of a face detection. Detections missing the relevant
// landmarks classify as neutral.
func ClassifyExpression(d *detect.Detection, t FaceThresholds) string {
	left, okL := d.Landmark(detect.FaceMouthCornerLeft)
	right, okR := d.Landmark(detect.FaceMouthCornerRight)
	upper, okU := d.Landmark(detect.FaceUpperLipInner)
	lower, okD := d.Landmark(detect.FaceLowerLipInner)
	if !okL || !okR || !okU || !okD {
		return ExpressionNeutral
	}

	mouthWidth := math.Abs(right.X - left.X)
	if mouthWidth < 1e-6 {
		return ExpressionNeutral
	}

	openness := math.Abs(lower.Y-upper.Y) / mouthWidth
	if openness > t.SurpriseOpen || browLift(d) > t.BrowRaise {
		return ExpressionSurprise
	}

	// Corner lift: positive when the corners sit above the lip midline
	// (y grows downward).
	lipMid := (upper.Y + lower.Y) / 2
	cornerY := (left.Y + right.Y) / 2
	lift := (lipMid - cornerY) / mouthWidth

	if lift > t.SmileLift && openness > t.MouthOpen {
		return ExpressionSmile
	}
	return ExpressionNeutral
}

// browLift returns the brow-to-eye distance as a fraction of eye width,
// averaged over both eyes. Zero when landmarks are missing.
func browLift(d *detect.Detection) float64 {
	type eye struct{ browMid, eyeTop, inner, outer int }
	eyes := []eye{
		{detect.FaceRightBrowMid, detect.FaceRightEyeTop, detect.FaceRightEyeInner, detect.FaceRightEyeOuter},
		{detect.FaceLeftBrowMid, detect.FaceLeftEyeTop, detect.FaceLeftEyeInner, detect.FaceLeftEyeOuter},
	}

	var sum float64
	var n int
	for _, e := range eyes {
		brow, ok1 := d.Landmark(e.browMid)
		top, ok2 := d.Landmark(e.eyeTop)
		inner, ok3 := d.Landmark(e.inner)
		outer, ok4 := d.Landmark(e.outer)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		width := math.Abs(outer.X - inner.X)
		if width < 1e-6 {
			continue
		}
		sum += (top.Y - brow.Y) / width
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ClassifyGaze derives a coarse horizontal gaze direction from the iris
// centers relative to the eye corners. It requires refined landmarks; faces
// without iris points classify as unknown.
func ClassifyGaze(d *detect.Detection, t FaceThresholds) string {
	type eye struct{ iris, inner, outer int }
	eyes := []eye{
		{detect.FaceRightIrisCenter, detect.FaceRightEyeInner, detect.FaceRightEyeOuter},
		{detect.FaceLeftIrisCenter, detect.FaceLeftEyeInner, detect.FaceLeftEyeOuter},
	}

	var sum float64
	var n int
	for _, e := range eyes {
		iris, ok1 := d.Landmark(e.iris)
		inner, ok2 := d.Landmark(e.inner)
		outer, ok3 := d.Landmark(e.outer)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		lo := math.Min(inner.X, outer.X)
		hi := math.Max(inner.X, outer.X)
		if hi-lo < 1e-6 {
			continue
		}
		sum += (iris.X - lo) / (hi - lo)
		n++
	}
	if n == 0 {
		return GazeUnknown
	}

	ratio := sum / float64(n)
	switch {
	case ratio < t.GazeLow:
		return GazeLeft
	case ratio > t.GazeHigh:
		return GazeRight
	default:
		return GazeCenter
	}
}
