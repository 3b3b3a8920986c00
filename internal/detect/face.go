package detect

// Face landmark indices following the MediaPipe face mesh convention
// (468-point mesh, plus ten iris points when refinement is enabled).
// Only the indices the renderer and classifiers need are named; the mesh
// itself is opaque to rangoli.
const (
	// Mouth
	FaceMouthCornerLeft  = 61
	FaceMouthCornerRight = 291
	FaceUpperLipInner    = 13
	FaceLowerLipInner    = 14
	FaceUpperLipOuter    = 0
	FaceLowerLipOuter    = 17

	// Right eye (image left)
	FaceRightEyeOuter  = 33
	FaceRightEyeInner  = 133
	FaceRightEyeTop    = 159
	FaceRightEyeBottom = 145

	// Left eye (image right)
	FaceLeftEyeInner  = 362
	FaceLeftEyeOuter  = 263
	FaceLeftEyeTop    = 386
	FaceLeftEyeBottom = 374

	// Eyebrows
	FaceRightBrowOuter = 70
	FaceRightBrowMid   = 105
	FaceRightBrowInner = 107
	FaceLeftBrowInner  = 336
	FaceLeftBrowMid    = 334
	FaceLeftBrowOuter  = 300

	// Iris centers, present only with refined landmarks
	FaceRightIrisCenter = 468
	FaceLeftIrisCenter  = 473

	FaceNumLandmarks        = 468
	FaceNumLandmarksRefined = 478
)

// Face contour index chains, subset of the full mesh tessellation. The
// renderer connects consecutive indices within each chain.
var (
	faceLipsOuter = []int{
		61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291,
		409, 270, 269, 267, 0, 37, 39, 40, 185, 61,
	}
	faceLipsInner = []int{
		78, 95, 88, 178, 87, 14, 317, 402, 318, 324, 308,
		415, 310, 311, 312, 13, 82, 81, 80, 191, 78,
	}
	faceRightEye = []int{
		33, 7, 163, 144, 145, 153, 154, 155, 133,
		173, 157, 158, 159, 160, 161, 246, 33,
	}
	faceLeftEye = []int{
		362, 382, 381, 380, 374, 373, 390, 249, 263,
		466, 388, 387, 386, 385, 384, 398, 362,
	}
	faceRightBrow = []int{70, 63, 105, 66, 107}
	faceLeftBrow  = []int{336, 296, 334, 293, 300}
)

// FaceEdges connects the lip, eye and eyebrow contours.
var FaceEdges = buildFaceEdges()

func buildFaceEdges() []Edge {
	var edges []Edge
	for _, chain := range [][]int{
		faceLipsOuter, faceLipsInner,
		faceRightEye, faceLeftEye,
		faceRightBrow, faceLeftBrow,
	} {
		for i := 0; i+1 < len(chain); i++ {
			edges = append(edges, Edge{chain[i], chain[i+1]})
		}
	}
	return edges
}
