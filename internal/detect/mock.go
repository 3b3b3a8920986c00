package detect

import (
	"context"

	"gocv.io/x/gocv"
)

// MockAdapter is a test implementation of the Adapter interface. Tests
// control what Load and Detect return and can observe call counts.
type MockAdapter struct {
	config     Config
	detections []Detection
	loadErr    error
	detectErr  error

	LoadCalls   int
	DetectCalls int
	CloseCalls  int

	// LoadDelay, when set, blocks Load until the channel is closed. Tests
	// use it to hold the loop in its loading state.
	LoadDelay chan struct{}

	// DetectDelay, when set, blocks Detect until the channel is closed.
	// Tests use it to keep an inference in flight.
	DetectDelay chan struct{}
}

// NewMockAdapter creates a MockAdapter for the given variant with default
// configuration.
func NewMockAdapter(v Variant) *MockAdapter {
	return &MockAdapter{config: DefaultConfig(v)}
}

// SetDetections sets the detections returned by Detect.
func (m *MockAdapter) SetDetections(dets []Detection) {
	m.detections = dets
}

// SetLoadError sets the error returned by Load.
func (m *MockAdapter) SetLoadError(err error) {
	m.loadErr = err
}

// SetDetectError sets the error returned by Detect.
func (m *MockAdapter) SetDetectError(err error) {
	m.detectErr = err
}

// Load returns the configured error, blocking first if LoadDelay is set.
func (m *MockAdapter) Load(ctx context.Context) error {
	m.LoadCalls++
	if m.LoadDelay != nil {
		select {
		case <-m.LoadDelay:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.loadErr
}

// Detect returns the pre-configured detections or error.
func (m *MockAdapter) Detect(frame *gocv.Mat) ([]Detection, error) {
	m.DetectCalls++
	if m.DetectDelay != nil {
		<-m.DetectDelay
	}
	if m.detectErr != nil {
		return nil, m.detectErr
	}
	return m.detections, nil
}

// Config returns the adapter configuration.
func (m *MockAdapter) Config() Config {
	return m.config
}

// Close records the call.
func (m *MockAdapter) Close() error {
	m.CloseCalls++
	return nil
}

// HandFixture returns a right-hand detection with all 21 landmarks spread
// across the frame, wrist at the bottom center.
func HandFixture() Detection {
	d := Detection{
		Points: make([]Point3D, HandNumLandmarks),
		Label:  "Right",
		Score:  0.95,
	}
	d.Points[HandWrist] = Point3D{X: 0.5, Y: 0.8}
	for i := 1; i < HandNumLandmarks; i++ {
		d.Points[i] = Point3D{
			X: 0.3 + 0.02*float64(i),
			Y: 0.7 - 0.02*float64(i),
			Z: -0.01 * float64(i%4),
		}
	}
	return d
}

// PoseFixture returns a standing-figure pose detection with every joint
// confidence set to score.
func PoseFixture(score float64) Detection {
	d := Detection{
		Points:      make([]Point3D, PoseNumLandmarks),
		Confidences: make([]float64, PoseNumLandmarks),
		Score:       score,
	}
	// Rough standing figure, head at the top.
	d.Points[PoseNose] = Point3D{X: 0.5, Y: 0.1}
	d.Points[PoseLeftEye] = Point3D{X: 0.52, Y: 0.09}
	d.Points[PoseRightEye] = Point3D{X: 0.48, Y: 0.09}
	d.Points[PoseLeftEar] = Point3D{X: 0.55, Y: 0.1}
	d.Points[PoseRightEar] = Point3D{X: 0.45, Y: 0.1}
	d.Points[PoseLeftShoulder] = Point3D{X: 0.6, Y: 0.25}
	d.Points[PoseRightShoulder] = Point3D{X: 0.4, Y: 0.25}
	d.Points[PoseLeftElbow] = Point3D{X: 0.65, Y: 0.4}
	d.Points[PoseRightElbow] = Point3D{X: 0.35, Y: 0.4}
	d.Points[PoseLeftWrist] = Point3D{X: 0.67, Y: 0.55}
	d.Points[PoseRightWrist] = Point3D{X: 0.33, Y: 0.55}
	d.Points[PoseLeftHip] = Point3D{X: 0.57, Y: 0.55}
	d.Points[PoseRightHip] = Point3D{X: 0.43, Y: 0.55}
	d.Points[PoseLeftKnee] = Point3D{X: 0.56, Y: 0.75}
	d.Points[PoseRightKnee] = Point3D{X: 0.44, Y: 0.75}
	d.Points[PoseLeftAnkle] = Point3D{X: 0.56, Y: 0.92}
	d.Points[PoseRightAnkle] = Point3D{X: 0.44, Y: 0.92}
	for i := range d.Confidences {
		d.Confidences[i] = score
	}
	return d
}

// FaceFixture returns a neutral face detection: every mesh landmark is
// placed on a coarse grid, then the named mouth, eye and brow landmarks are
// positioned for a closed, level expression. With refined true, the iris
// centers sit midway between their eye corners (centered gaze).
func FaceFixture(refined bool) Detection {
	n := FaceNumLandmarks
	if refined {
		n = FaceNumLandmarksRefined
	}
	d := Detection{
		Points: make([]Point3D, n),
		Score:  0.9,
	}
	for i := range d.Points {
		d.Points[i] = Point3D{
			X: 0.3 + 0.4*float64(i%22)/21.0,
			Y: 0.2 + 0.5*float64(i/22)/21.0,
		}
	}

	// Mouth closed and level.
	d.Points[FaceMouthCornerLeft] = Point3D{X: 0.42, Y: 0.62}
	d.Points[FaceMouthCornerRight] = Point3D{X: 0.58, Y: 0.62}
	d.Points[FaceUpperLipInner] = Point3D{X: 0.5, Y: 0.615}
	d.Points[FaceLowerLipInner] = Point3D{X: 0.5, Y: 0.62}

	// Eyes open, level.
	d.Points[FaceRightEyeOuter] = Point3D{X: 0.38, Y: 0.42}
	d.Points[FaceRightEyeInner] = Point3D{X: 0.46, Y: 0.42}
	d.Points[FaceRightEyeTop] = Point3D{X: 0.42, Y: 0.405}
	d.Points[FaceRightEyeBottom] = Point3D{X: 0.42, Y: 0.435}
	d.Points[FaceLeftEyeInner] = Point3D{X: 0.54, Y: 0.42}
	d.Points[FaceLeftEyeOuter] = Point3D{X: 0.62, Y: 0.42}
	d.Points[FaceLeftEyeTop] = Point3D{X: 0.58, Y: 0.405}
	d.Points[FaceLeftEyeBottom] = Point3D{X: 0.58, Y: 0.435}

	// Brows at rest.
	d.Points[FaceRightBrowInner] = Point3D{X: 0.46, Y: 0.37}
	d.Points[FaceRightBrowMid] = Point3D{X: 0.42, Y: 0.365}
	d.Points[FaceRightBrowOuter] = Point3D{X: 0.38, Y: 0.37}
	d.Points[FaceLeftBrowInner] = Point3D{X: 0.54, Y: 0.37}
	d.Points[FaceLeftBrowMid] = Point3D{X: 0.58, Y: 0.365}
	d.Points[FaceLeftBrowOuter] = Point3D{X: 0.62, Y: 0.37}

	if refined {
		d.Points[FaceRightIrisCenter] = Point3D{X: 0.42, Y: 0.42}
		d.Points[FaceLeftIrisCenter] = Point3D{X: 0.58, Y: 0.42}
	}
	return d
}

// SmilingFaceFixture returns a face detection with raised mouth corners and
// parted lips, the geometry the expression classifier reads as a smile.
func SmilingFaceFixture() Detection {
	d := FaceFixture(false)
	// Corners lifted well above the lip midline, lips parted.
	d.Points[FaceMouthCornerLeft] = Point3D{X: 0.41, Y: 0.595}
	d.Points[FaceMouthCornerRight] = Point3D{X: 0.59, Y: 0.595}
	d.Points[FaceUpperLipInner] = Point3D{X: 0.5, Y: 0.61}
	d.Points[FaceLowerLipInner] = Point3D{X: 0.5, Y: 0.64}
	return d
}
