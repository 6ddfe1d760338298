package gesture

import (
	"math"

	"github.com/ayusman/fingerspell/internal/detector"
)

// Orientation is the coarse left/right lean of the hand.
type Orientation string

const (
	OrientationLeft    Orientation = "left"
	OrientationRight   Orientation = "right"
	OrientationUnknown Orientation = "unknown"
)

// FingerState describes the pose of one hand in one frame.
type FingerState struct {
	Extended [5]bool // Thumb entry uses the sideways test.
	Curled   [5]bool

	ThumbUp     bool
	PalmFacing  bool
	Crossed     bool // index and middle fingertips swapped sides
	Orientation Orientation

	Angles       [5]float64
	TipDistances [5]float64
	Openness     float64
	WristAngle   float64
}

// Horizontal reports whether a finger is neither extended nor curled,
// i.e. its tip sits level with its middle joint.
func (s *FingerState) Horizontal(finger int) bool {
	return !s.Extended[finger] && !s.Curled[finger]
}

// ExtendedCount counts extended fingers, thumb excluded.
func (s *FingerState) ExtendedCount() int {
	n := 0
	for _, ext := range s.Extended[Index:] {
		if ext {
			n++
		}
	}
	return n
}

// joints compared against each fingertip for extension and curl.
var tipJoints = [5]int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}

// computeFingerState derives the FingerState of a normalized hand.
func computeFingerState(hand *detector.HandLandmarks, f *FeatureVector) FingerState {
	p := hand.Points
	wrist := p[detector.Wrist]

	s := FingerState{
		Angles:       f.FingerAngles,
		TipDistances: f.TipDistances,
	}

	thumbTip, thumbIP := p[detector.ThumbTip], p[detector.ThumbIP]
	s.Extended[Thumb] = thumbTip.X > thumbIP.X+ExtensionEpsilon
	s.Curled[Thumb] = thumbTip.Y > thumbIP.Y+ExtensionEpsilon
	s.ThumbUp = thumbTip.Y < thumbIP.Y-ThumbUpEpsilon

	for finger := Index; finger <= Pinky; finger++ {
		tip, joint := p[fingerTips[finger]], p[tipJoints[finger]]
		s.Extended[finger] = tip.Y < joint.Y-ExtensionEpsilon
		s.Curled[finger] = tip.Y > joint.Y+ExtensionEpsilon
	}

	indexBase, middleBase := p[detector.IndexMCP], p[detector.MiddleMCP]
	baseSide := indexBase.X - middleBase.X
	tipSide := p[detector.IndexTip].X - p[detector.MiddleTip].X
	s.Crossed = baseSide*tipSide < 0

	s.PalmFacing = middleBase.Z > wrist.Z+PalmFacingEpsilon

	switch {
	case middleBase.X > wrist.X+OrientationDeadband:
		s.Orientation = OrientationRight
	case middleBase.X < wrist.X-OrientationDeadband:
		s.Orientation = OrientationLeft
	default:
		s.Orientation = OrientationUnknown
	}

	var total float64
	for _, tip := range fingerTips {
		total += detector.PlanarDistance(p[tip], wrist)
	}
	s.Openness = total / float64(len(fingerTips))

	s.WristAngle = math.Atan2(middleBase.Y-wrist.Y, middleBase.X-wrist.X)

	return s
}
