// Package detector provides the hand landmark model and the detectors that produce it.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is one landmark in image-relative coordinates.
// X and Y are roughly in [0,1] with Y growing downwards; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FromPoints builds a HandLandmarks from a landmark sequence.
// It reports false unless the sequence holds exactly NumLandmarks points.
func FromPoints(points []Point3D) (*HandLandmarks, bool) {
	if len(points) != NumLandmarks {
		return nil, false
	}
	h := &HandLandmarks{}
	copy(h.Points[:], points)
	return h, true
}

// Distance returns the Euclidean distance between two points in 3D.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlanarDistance returns the Euclidean distance between two points ignoring depth.
func PlanarDistance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Normalize returns a scale- and position-invariant copy of the hand.
// The wrist is moved to the origin and every coordinate is divided by the
// larger side of the 2D bounding box of all landmarks. A degenerate box
// (zero width and height) leaves the translated points unscaled.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	minX, maxX := h.Points[0].X, h.Points[0].X
	minY, maxY := h.Points[0].Y, h.Points[0].Y
	for _, p := range h.Points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	scale := math.Max(maxX-minX, maxY-minY)
	if scale == 0 {
		scale = 1
	}

	wrist := h.Points[Wrist]
	for i, p := range h.Points {
		normalized.Points[i] = Point3D{
			X: (p.X - wrist.X) / scale,
			Y: (p.Y - wrist.Y) / scale,
			Z: (p.Z - wrist.Z) / scale,
		}
	}

	return normalized
}

// ThumbOnRight reports whether the knuckle line runs from pinky on the left
// to index on the right, the layout of a right hand with the palm towards the
// camera. The letter fixtures use this layout.
func (h *HandLandmarks) ThumbOnRight() bool {
	return h.Points[IndexMCP].X >= h.Points[PinkyMCP].X
}

// Mirrored returns a copy of h reflected across the vertical line through the wrist.
func (h *HandLandmarks) Mirrored() HandLandmarks {
	m := *h
	axis := 2 * h.Points[Wrist].X
	for i := range m.Points {
		m.Points[i].X = axis - m.Points[i].X
	}
	return m
}
