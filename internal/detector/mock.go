package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// handFromXY builds a right hand from 21 (x, y) pairs with z = 0.
func handFromXY(xy [NumLandmarks][2]float64) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range xy {
		hand.Points[i] = Point3D{X: p[0], Y: p[1]}
	}
	return hand
}

// LetterALandmarks returns a closed fist with the thumb resting against the
// side of the index finger (ASL "A"). Fingertips curl back towards the wrist.
func LetterALandmarks() HandLandmarks {
	return handFromXY([NumLandmarks][2]float64{
		Wrist:     {0.50, 0.90},
		ThumbCMC:  {0.55, 0.86},
		ThumbMCP:  {0.58, 0.80},
		ThumbIP:   {0.575, 0.78},
		ThumbTip:  {0.595, 0.80},
		IndexMCP:  {0.55, 0.60},
		IndexPIP:  {0.55, 0.56},
		IndexDIP:  {0.55, 0.66},
		IndexTip:  {0.54, 0.82},
		MiddleMCP: {0.50, 0.60},
		MiddlePIP: {0.50, 0.56},
		MiddleDIP: {0.50, 0.66},
		MiddleTip: {0.50, 0.83},
		RingMCP:   {0.46, 0.61},
		RingPIP:   {0.46, 0.57},
		RingDIP:   {0.46, 0.67},
		RingTip:   {0.47, 0.83},
		PinkyMCP:  {0.42, 0.63},
		PinkyPIP:  {0.42, 0.59},
		PinkyDIP:  {0.42, 0.68},
		PinkyTip:  {0.44, 0.83},
	})
}

// LetterBLandmarks returns a flat hand with all four fingers extended upward
// and the thumb folded across the palm (ASL "B").
func LetterBLandmarks() HandLandmarks {
	return handFromXY([NumLandmarks][2]float64{
		Wrist:     {0.50, 0.90},
		ThumbCMC:  {0.55, 0.85},
		ThumbMCP:  {0.57, 0.78},
		ThumbIP:   {0.55, 0.72},
		ThumbTip:  {0.52, 0.70},
		IndexMCP:  {0.56, 0.62},
		IndexPIP:  {0.57, 0.48},
		IndexDIP:  {0.575, 0.40},
		IndexTip:  {0.58, 0.32},
		MiddleMCP: {0.50, 0.60},
		MiddlePIP: {0.50, 0.45},
		MiddleDIP: {0.50, 0.36},
		MiddleTip: {0.50, 0.28},
		RingMCP:   {0.44, 0.62},
		RingPIP:   {0.43, 0.48},
		RingDIP:   {0.425, 0.40},
		RingTip:   {0.42, 0.33},
		PinkyMCP:  {0.39, 0.66},
		PinkyPIP:  {0.37, 0.55},
		PinkyDIP:  {0.365, 0.48},
		PinkyTip:  {0.36, 0.42},
	})
}

// LetterDLandmarks returns a hand with only the index finger extended,
// angled slightly above horizontal, while the thumb rests on the curled
// middle finger (ASL "D").
func LetterDLandmarks() HandLandmarks {
	return handFromXY([NumLandmarks][2]float64{
		Wrist:     {0.50, 0.90},
		ThumbCMC:  {0.55, 0.86},
		ThumbMCP:  {0.58, 0.80},
		ThumbIP:   {0.57, 0.74},
		ThumbTip:  {0.54, 0.70},
		IndexMCP:  {0.55, 0.60},
		IndexPIP:  {0.62, 0.575},
		IndexDIP:  {0.67, 0.557},
		IndexTip:  {0.72, 0.54},
		MiddleMCP: {0.50, 0.62},
		MiddlePIP: {0.51, 0.57},
		MiddleDIP: {0.51, 0.62},
		MiddleTip: {0.50, 0.68},
		RingMCP:   {0.45, 0.64},
		RingPIP:   {0.455, 0.59},
		RingDIP:   {0.455, 0.64},
		RingTip:   {0.45, 0.70},
		PinkyMCP:  {0.41, 0.68},
		PinkyPIP:  {0.41, 0.64},
		PinkyDIP:  {0.41, 0.68},
		PinkyTip:  {0.415, 0.73},
	})
}
