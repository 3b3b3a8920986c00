package detect

// Hand landmark indices following the MediaPipe hand landmarker convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	HandWrist     = 0
	HandThumbCMC  = 1
	HandThumbMCP  = 2
	HandThumbIP   = 3
	HandThumbTip  = 4
	HandIndexMCP  = 5
	HandIndexPIP  = 6
	HandIndexDIP  = 7
	HandIndexTip  = 8
	HandMiddleMCP = 9
	HandMiddlePIP = 10
	HandMiddleDIP = 11
	HandMiddleTip = 12
	HandRingMCP   = 13
	HandRingPIP   = 14
	HandRingDIP   = 15
	HandRingTip   = 16
	HandPinkyMCP  = 17
	HandPinkyPIP  = 18
	HandPinkyDIP  = 19
	HandPinkyTip  = 20

	HandNumLandmarks = 21
)

// HandEdges are the standard hand skeleton connections: palm outline plus
// one chain per digit.
var HandEdges = []Edge{
	// Thumb
	{HandWrist, HandThumbCMC}, {HandThumbCMC, HandThumbMCP},
	{HandThumbMCP, HandThumbIP}, {HandThumbIP, HandThumbTip},
	// Index finger
	{HandWrist, HandIndexMCP}, {HandIndexMCP, HandIndexPIP},
	{HandIndexPIP, HandIndexDIP}, {HandIndexDIP, HandIndexTip},
	// Middle finger
	{HandIndexMCP, HandMiddleMCP}, {HandMiddleMCP, HandMiddlePIP},
	{HandMiddlePIP, HandMiddleDIP}, {HandMiddleDIP, HandMiddleTip},
	// Ring finger
	{HandMiddleMCP, HandRingMCP}, {HandRingMCP, HandRingPIP},
	{HandRingPIP, HandRingDIP}, {HandRingDIP, HandRingTip},
	// Pinky
	{HandRingMCP, HandPinkyMCP}, {HandWrist, HandPinkyMCP},
	{HandPinkyMCP, HandPinkyPIP}, {HandPinkyPIP, HandPinkyDIP},
	{HandPinkyDIP, HandPinkyTip},
}
