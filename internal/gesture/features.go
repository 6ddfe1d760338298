package gesture

import (
	"math"

	"github.com/ayusman/fingerspell/internal/detector"
)

// Fingertip and finger base landmarks, ordered thumb to pinky.
var (
	fingerTips  = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerBases = [5]int{detector.ThumbCMC, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
	knuckles    = [5]int{detector.ThumbMCP, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
)

// Finger positions inside the per-finger arrays.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// FeatureVector holds the geometric features of one normalized hand.
// The field order matches the positional layout returned by Values.
type FeatureVector struct {
	TipDistances [5]float64 `json:"tip_distances"` // fingertip to wrist, 3D
	FingerAngles [5]float64 `json:"finger_angles"` // atan2 of tip minus finger base, radians
	TipGaps      [4]float64 `json:"tip_gaps"`      // planar distance between adjacent fingertips
	Curvature    float64    `json:"curvature"`     // summed turn between knuckle segments
}

// FeatureCount is the length of the slice returned by Values.
const FeatureCount = 15

// Values flattens the vector: 5 distances, 5 angles, 4 gaps, curvature.
func (f *FeatureVector) Values() []float64 {
	values := make([]float64, 0, FeatureCount)
	values = append(values, f.TipDistances[:]...)
	values = append(values, f.FingerAngles[:]...)
	values = append(values, f.TipGaps[:]...)
	return append(values, f.Curvature)
}

// extractFeatures computes the FeatureVector of a normalized hand.
func extractFeatures(hand *detector.HandLandmarks) FeatureVector {
	var f FeatureVector
	p := hand.Points
	wrist := p[detector.Wrist]

	for i, tip := range fingerTips {
		f.TipDistances[i] = detector.Distance(p[tip], wrist)

		base := p[fingerBases[i]]
		f.FingerAngles[i] = math.Atan2(p[tip].Y-base.Y, p[tip].X-base.X)
	}

	for i := 0; i < len(fingerTips)-1; i++ {
		f.TipGaps[i] = detector.PlanarDistance(p[fingerTips[i]], p[fingerTips[i+1]])
	}

	for i := 1; i < len(knuckles)-1; i++ {
		a, b, c := p[knuckles[i-1]], p[knuckles[i]], p[knuckles[i+1]]
		in := math.Atan2(b.Y-a.Y, b.X-a.X)
		out := math.Atan2(c.Y-b.Y, c.X-b.X)
		f.Curvature += math.Abs(out - in)
	}

	return f
}
