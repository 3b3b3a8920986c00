package detect

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Variant identifies which pretrained model an adapter wraps.
type Variant string

const (
	VariantHand Variant = "hand"
	VariantFace Variant = "face"
	VariantPose Variant = "pose"
)

// Variants lists the supported detector variants.
var Variants = []Variant{VariantHand, VariantFace, VariantPose}

// ErrNotLoaded is returned by Detect when Load has not completed.
var ErrNotLoaded = errors.New("model is not loaded")

// Adapter wraps one pretrained detection model behind a uniform contract.
// Exactly one adapter is active at a time; switching variants closes the
// previous adapter (discarding its model handle) before the next Load.
type Adapter interface {
	// Load starts the model. It is long-running (process start plus model
	// warmup) and is called once per activation, off the rendering path.
	Load(ctx context.Context) error

	// Detect analyzes a frame and returns one Detection per subject.
	// The frame is only valid for the duration of the call.
	Detect(frame *gocv.Mat) ([]Detection, error)

	// Config returns the configuration the adapter was constructed with.
	Config() Config

	// Close discards the model handle and releases all resources. A Detect
	// in flight during Close has its result ignored by the caller.
	Close() error
}

// Config holds per-variant tuning, frozen at adapter construction and never
// re-negotiated per frame.
type Config struct {
	Variant Variant

	// MaxSubjects is the maximum number of subjects to report.
	MaxSubjects int

	// MinConfidence is the draw-time confidence threshold in [0,1].
	MinConfidence float64

	// RefineLandmarks enables the face model's iris refinement, adding the
	// ten iris landmarks. Ignored by other variants.
	RefineLandmarks bool
}

// DefaultConfig returns the reference configuration for a variant.
func DefaultConfig(v Variant) Config {
	switch v {
	case VariantHand:
		return Config{Variant: VariantHand, MaxSubjects: 2, MinConfidence: 0.5}
	case VariantFace:
		return Config{Variant: VariantFace, MaxSubjects: 1, MinConfidence: 0.5}
	case VariantPose:
		return Config{Variant: VariantPose, MaxSubjects: 5, MinConfidence: 0.3}
	}
	return Config{Variant: v}
}

// Validate checks the configuration at construction time.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantHand, VariantFace, VariantPose:
	default:
		return fmt.Errorf("unknown detector variant %q", c.Variant)
	}
	if c.MaxSubjects < 1 {
		return fmt.Errorf("max subjects must be at least 1, got %d", c.MaxSubjects)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be in [0,1], got %f", c.MinConfidence)
	}
	if c.RefineLandmarks && c.Variant != VariantFace {
		return fmt.Errorf("landmark refinement is only supported by the face variant")
	}
	return nil
}

// NewAdapter creates the sidecar-backed adapter for the given configuration.
func NewAdapter(cfg Config) (Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSidecarAdapter(cfg), nil
}
