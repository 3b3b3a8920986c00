package detect

// Schema is the static landmark table for one model variant: how many
// landmarks the model reports, which pairs are connected when rendering,
// and the variant's subject and confidence limits. Schemas are versioned
// with the model; call sites never hard-code landmark indices.
type Schema struct {
	Variant      Variant
	NumLandmarks int
	Edges        []Edge

	// MaxSubjects is the hard cap on subjects a renderer will draw for the
	// variant; results beyond it are discarded without error.
	MaxSubjects int

	// ConfThreshold gates edge drawing for variants with per-landmark
	// confidences.
	ConfThreshold float64
}

// SchemaFor returns the landmark schema for a variant, with subject cap and
// confidence threshold taken from cfg.
func SchemaFor(cfg Config) Schema {
	s := baseSchema(cfg.Variant)
	if cfg.MaxSubjects > 0 {
		s.MaxSubjects = cfg.MaxSubjects
	}
	s.ConfThreshold = cfg.MinConfidence
	if cfg.Variant == VariantFace && cfg.RefineLandmarks {
		s.NumLandmarks = FaceNumLandmarksRefined
	}
	return s
}

func baseSchema(v Variant) Schema {
	switch v {
	case VariantHand:
		return Schema{
			Variant:       VariantHand,
			NumLandmarks:  HandNumLandmarks,
			Edges:         HandEdges,
			MaxSubjects:   2,
			ConfThreshold: 0,
		}
	case VariantFace:
		return Schema{
			Variant:       VariantFace,
			NumLandmarks:  FaceNumLandmarks,
			Edges:         FaceEdges,
			MaxSubjects:   1,
			ConfThreshold: 0,
		}
	case VariantPose:
		return Schema{
			Variant:       VariantPose,
			NumLandmarks:  PoseNumLandmarks,
			Edges:         PoseEdges,
			MaxSubjects:   5,
			ConfThreshold: 0.3,
		}
	}
	return Schema{Variant: v}
}
