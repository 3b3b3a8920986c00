// Package detect provides the adapter contract and landmark schemas for the
// pretrained detection models used by the rangoli overlay pipeline.
package detect

// Point3D represents a landmark coordinate. X and Y are normalized to the
// frame ([0,1], origin top-left); Z is model-relative depth and may be zero
// for models that do not estimate it.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Detection is one detected subject (a hand, a face, or a body) produced by
// a single inference call. Detections are immutable once produced and are
// discarded after the render step that consumes them.
type Detection struct {
	// Points holds one coordinate per landmark, indexed by the active
	// variant's schema.
	Points []Point3D `json:"points"`

	// Confidences holds a per-landmark score in [0,1]. Empty for variants
	// that only report a per-subject score.
	Confidences []float64 `json:"confidences,omitempty"`

	// Label is a classification attached to the subject, such as "Left" or
	// "Right" handedness. Empty when the variant has none.
	Label string `json:"label,omitempty"`

	// Score is the overall subject confidence in [0,1].
	Score float64 `json:"score"`
}

// Landmark returns the point at index i and whether the detection has it.
func (d *Detection) Landmark(i int) (Point3D, bool) {
	if i < 0 || i >= len(d.Points) {
		return Point3D{}, false
	}
	return d.Points[i], true
}

// Confidence returns the per-landmark confidence at index i. Detections
// without per-landmark scores report 1.0, so confidence gating is a no-op
// for them.
func (d *Detection) Confidence(i int) float64 {
	if i < 0 || i >= len(d.Confidences) {
		return 1.0
	}
	return d.Confidences[i]
}

// Edge is a skeleton connection between two landmark indices. Edge tables
// are static per variant; they are never derived from detection output.
type Edge struct {
	A int
	B int
}
