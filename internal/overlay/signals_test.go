package overlay

import (
	"testing"

	"github.com/ayusman/rangoli/internal/detect"
)

func TestClassifyExpression(t *testing.T) {
	thresholds := DefaultFaceThresholds()

	t.Run("neutral face", func(t *testing.T) {
		d := detect.FaceFixture(false)
		if got := ClassifyExpression(&d, thresholds); got != ExpressionNeutral {
			t.Errorf("expected %s, got %s", ExpressionNeutral, got)
		}
	})

	t.Run("smile", func(t *testing.T) {
		d := detect.SmilingFaceFixture()
		if got := ClassifyExpression(&d, thresholds); got != ExpressionSmile {
			t.Errorf("expected %s, got %s", ExpressionSmile, got)
		}
	})

	t.Run("open mouth reads as surprise", func(t *testing.T) {
		d := detect.FaceFixture(false)
		// Lips parted by more than the surprise fraction of mouth width.
		d.Points[detect.FaceUpperLipInner] = detect.Point3D{X: 0.5, Y: 0.58}
		d.Points[detect.FaceLowerLipInner] = detect.Point3D{X: 0.5, Y: 0.68}
		if got := ClassifyExpression(&d, thresholds); got != ExpressionSurprise {
			t.Errorf("expected %s, got %s", ExpressionSurprise, got)
		}
	})

	t.Run("raised brows read as surprise", func(t *testing.T) {
		d := detect.FaceFixture(false)
		d.Points[detect.FaceRightBrowMid] = detect.Point3D{X: 0.42, Y: 0.32}
		d.Points[detect.FaceLeftBrowMid] = detect.Point3D{X: 0.58, Y: 0.32}
		if got := ClassifyExpression(&d, thresholds); got != ExpressionSurprise {
			t.Errorf("expected %s, got %s", ExpressionSurprise, got)
		}
	})

	t.Run("corner lift alone is not a smile", func(t *testing.T) {
		// Lifted corners with fully closed lips stay neutral.
		d := detect.FaceFixture(false)
		d.Points[detect.FaceMouthCornerLeft] = detect.Point3D{X: 0.42, Y: 0.595}
		d.Points[detect.FaceMouthCornerRight] = detect.Point3D{X: 0.58, Y: 0.595}
		d.Points[detect.FaceUpperLipInner] = detect.Point3D{X: 0.5, Y: 0.62}
		d.Points[detect.FaceLowerLipInner] = detect.Point3D{X: 0.5, Y: 0.62}
		if got := ClassifyExpression(&d, thresholds); got != ExpressionNeutral {
			t.Errorf("expected %s, got %s", ExpressionNeutral, got)
		}
	})

	t.Run("missing landmarks classify neutral", func(t *testing.T) {
		d := detect.Detection{Points: make([]detect.Point3D, 10)}
		if got := ClassifyExpression(&d, thresholds); got != ExpressionNeutral {
			t.Errorf("expected %s, got %s", ExpressionNeutral, got)
		}
	})

	t.Run("custom thresholds shift the boundary", func(t *testing.T) {
		strict := thresholds
		strict.SmileLift = 0.5
		d := detect.SmilingFaceFixture()
		if got := ClassifyExpression(&d, strict); got != ExpressionNeutral {
			t.Errorf("expected %s under strict thresholds, got %s", ExpressionNeutral, got)
		}
	})
}

func TestClassifyGaze(t *testing.T) {
	thresholds := DefaultFaceThresholds()

	t.Run("unknown without iris landmarks", func(t *testing.T) {
		d := detect.FaceFixture(false)
		if got := ClassifyGaze(&d, thresholds); got != GazeUnknown {
			t.Errorf("expected %s, got %s", GazeUnknown, got)
		}
	})

	t.Run("centered iris", func(t *testing.T) {
		d := detect.FaceFixture(true)
		if got := ClassifyGaze(&d, thresholds); got != GazeCenter {
			t.Errorf("expected %s, got %s", GazeCenter, got)
		}
	})

	t.Run("iris near outer-left corners", func(t *testing.T) {
		d := detect.FaceFixture(true)
		d.Points[detect.FaceRightIrisCenter] = detect.Point3D{X: 0.39, Y: 0.42}
		d.Points[detect.FaceLeftIrisCenter] = detect.Point3D{X: 0.55, Y: 0.42}
		if got := ClassifyGaze(&d, thresholds); got != GazeLeft {
			t.Errorf("expected %s, got %s", GazeLeft, got)
		}
	})

	t.Run("iris near outer-right corners", func(t *testing.T) {
		d := detect.FaceFixture(true)
		d.Points[detect.FaceRightIrisCenter] = detect.Point3D{X: 0.45, Y: 0.42}
		d.Points[detect.FaceLeftIrisCenter] = detect.Point3D{X: 0.61, Y: 0.42}
		if got := ClassifyGaze(&d, thresholds); got != GazeRight {
			t.Errorf("expected %s, got %s", GazeRight, got)
		}
	})
}
