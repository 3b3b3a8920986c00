package detect

// Pose joint indices following the 17-point COCO keypoint convention used
// by the bundled multi-person pose model.
const (
	PoseNose          = 0
	PoseLeftEye       = 1
	PoseRightEye      = 2
	PoseLeftEar       = 3
	PoseRightEar      = 4
	PoseLeftShoulder  = 5
	PoseRightShoulder = 6
	PoseLeftElbow     = 7
	PoseRightElbow    = 8
	PoseLeftWrist     = 9
	PoseRightWrist    = 10
	PoseLeftHip       = 11
	PoseRightHip      = 12
	PoseLeftKnee      = 13
	PoseRightKnee     = 14
	PoseLeftAnkle     = 15
	PoseRightAnkle    = 16

	PoseNumLandmarks = 17
)

// PoseJointNames maps joint indices to their COCO names.
var PoseJointNames = [PoseNumLandmarks]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// PoseEdges are the COCO skeleton connections: head, torso box, arms and
// legs.
var PoseEdges = []Edge{
	// Head
	{PoseNose, PoseLeftEye}, {PoseNose, PoseRightEye},
	{PoseLeftEye, PoseLeftEar}, {PoseRightEye, PoseRightEar},
	// Torso
	{PoseLeftShoulder, PoseRightShoulder},
	{PoseLeftShoulder, PoseLeftHip}, {PoseRightShoulder, PoseRightHip},
	{PoseLeftHip, PoseRightHip},
	// Arms
	{PoseLeftShoulder, PoseLeftElbow}, {PoseLeftElbow, PoseLeftWrist},
	{PoseRightShoulder, PoseRightElbow}, {PoseRightElbow, PoseRightWrist},
	// Legs
	{PoseLeftHip, PoseLeftKnee}, {PoseLeftKnee, PoseLeftAnkle},
	{PoseRightHip, PoseRightKnee}, {PoseRightKnee, PoseRightAnkle},
}
