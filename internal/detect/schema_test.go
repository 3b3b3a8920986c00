package detect

import "testing"

func TestSchemaFor(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		numLandmarks int
		maxSubjects  int
		confThresh   float64
	}{
		{"hand defaults", DefaultConfig(VariantHand), HandNumLandmarks, 2, 0.5},
		{"face defaults", DefaultConfig(VariantFace), FaceNumLandmarks, 1, 0.5},
		{"pose defaults", DefaultConfig(VariantPose), PoseNumLandmarks, 5, 0.3},
		{
			"refined face adds iris landmarks",
			Config{Variant: VariantFace, MaxSubjects: 1, MinConfidence: 0.5, RefineLandmarks: true},
			FaceNumLandmarksRefined, 1, 0.5,
		},
		{
			"config caps override variant defaults",
			Config{Variant: VariantPose, MaxSubjects: 2, MinConfidence: 0.6},
			PoseNumLandmarks, 2, 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SchemaFor(tt.cfg)
			if s.Variant != tt.cfg.Variant {
				t.Errorf("expected variant %s, got %s", tt.cfg.Variant, s.Variant)
			}
			if s.NumLandmarks != tt.numLandmarks {
				t.Errorf("expected %d landmarks, got %d", tt.numLandmarks, s.NumLandmarks)
			}
			if s.MaxSubjects != tt.maxSubjects {
				t.Errorf("expected max subjects %d, got %d", tt.maxSubjects, s.MaxSubjects)
			}
			if s.ConfThreshold != tt.confThresh {
				t.Errorf("expected confidence threshold %f, got %f", tt.confThresh, s.ConfThreshold)
			}
		})
	}
}

func TestEdgeTablesReferenceValidLandmarks(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		count int
	}{
		{"hand", HandEdges, HandNumLandmarks},
		{"face", FaceEdges, FaceNumLandmarks},
		{"pose", PoseEdges, PoseNumLandmarks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.edges) == 0 {
				t.Fatal("edge table is empty")
			}
			for i, e := range tt.edges {
				if e.A < 0 || e.A >= tt.count || e.B < 0 || e.B >= tt.count {
					t.Errorf("edge %d (%d-%d) out of range [0,%d)", i, e.A, e.B, tt.count)
				}
				if e.A == e.B {
					t.Errorf("edge %d connects landmark %d to itself", i, e.A)
				}
			}
		})
	}
}

func TestFixturesMatchSchemas(t *testing.T) {
	if n := len(HandFixture().Points); n != HandNumLandmarks {
		t.Errorf("hand fixture has %d landmarks, want %d", n, HandNumLandmarks)
	}
	if n := len(PoseFixture(0.9).Points); n != PoseNumLandmarks {
		t.Errorf("pose fixture has %d landmarks, want %d", n, PoseNumLandmarks)
	}
	if n := len(FaceFixture(false).Points); n != FaceNumLandmarks {
		t.Errorf("face fixture has %d landmarks, want %d", n, FaceNumLandmarks)
	}
	if n := len(FaceFixture(true).Points); n != FaceNumLandmarksRefined {
		t.Errorf("refined face fixture has %d landmarks, want %d", n, FaceNumLandmarksRefined)
	}

	for _, d := range []Detection{HandFixture(), PoseFixture(0.9), FaceFixture(true)} {
		for i, p := range d.Points {
			if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				t.Errorf("fixture landmark %d outside normalized range: %+v", i, p)
			}
		}
	}
}

func TestPoseJointNames(t *testing.T) {
	if len(PoseJointNames) != PoseNumLandmarks {
		t.Fatalf("expected %d joint names, got %d", PoseNumLandmarks, len(PoseJointNames))
	}
	if PoseJointNames[PoseNose] != "nose" {
		t.Errorf("unexpected name for nose joint: %s", PoseJointNames[PoseNose])
	}
}
