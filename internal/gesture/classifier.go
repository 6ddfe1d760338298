// Package gesture classifies static ASL fingerspelling letters from hand landmarks.
//
// A Classifier turns one hand's 21 landmarks into a letter guess per frame.
// It normalizes the hand, extracts geometric features and finger states,
// walks an ordered rule list, resolves known look-alike letters through
// confusion group discriminators and finally gates the result on how stable
// the guess has been over recent frames.
package gesture

import (
	"github.com/ayusman/fingerspell/internal/detector"
)

// Letter is a fingerspelled letter label such as "A".
type Letter string

// Calibration constants. They were tuned by hand against live camera input
// and are expected to move as more recordings are collected.
const (
	ExtensionEpsilon    = 0.015
	ThumbUpEpsilon      = 0.01
	PalmFacingEpsilon   = 0.01
	OrientationDeadband = 0.02
	CurvatureThreshold  = 0.5
	StabilityThreshold  = 0.85

	ConsistencyWeight = 0.6
	ConfidenceWeight  = 0.4
)

// Result is a classification that passed the stability gate.
type Result struct {
	Letter          Letter  `json:"letter"`
	Confidence      float64 `json:"confidence"`
	SecondaryMethod string  `json:"secondary_classification,omitempty"`
	ConfusionGroup  string  `json:"confusion_group,omitempty"`
	StabilityScore  float64 `json:"stability_score"`
}

// Classifier maps hand landmarks to letters for a single hand stream.
//
// The stability history assumes frames arrive in temporal order from one
// hand. A Classifier is not safe for concurrent use; give every concurrent
// stream its own instance.
type Classifier struct {
	history history
}

// NewClassifier creates a Classifier with an empty history.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify processes one frame of landmarks.
//
// It returns nil when the frame does not hold exactly 21 landmarks, when no
// rule matches, or when the guess is not yet stable. Only frames that match a
// rule are recorded in the history.
func (c *Classifier) Classify(landmarks []detector.Point3D) *Result {
	hand, ok := detector.FromPoints(landmarks)
	if !ok {
		return nil
	}

	normalized := hand.Normalize()
	features := extractFeatures(normalized)
	state := computeFingerState(normalized, &features)

	letter, confidence, ok := classifyPrimary(&state, &features)
	if !ok {
		return nil
	}

	result := Result{
		Letter:     letter,
		Confidence: confidence,
	}

	if out, group, ok := resolveSecondary(letter, &state, &features); ok {
		result.Letter = out.letter
		result.Confidence = (confidence + out.confidence) / 2
		result.SecondaryMethod = out.method
		result.ConfusionGroup = group
	}

	c.history.push(result.Letter, result.Confidence)
	result.StabilityScore = c.history.stability(result.Letter)

	if result.StabilityScore <= StabilityThreshold {
		return nil
	}
	return &result
}

// ClassifyHand is a convenience wrapper for detector output.
func (c *Classifier) ClassifyHand(hand *detector.HandLandmarks) *Result {
	if hand == nil {
		return nil
	}
	return c.Classify(hand.Points[:])
}

// Analysis is the ungated, stateless view of a single frame.
type Analysis struct {
	Features FeatureVector `json:"features"`
	State    FingerState   `json:"state"`
	Letter   Letter        `json:"letter,omitempty"`
	Matched  bool          `json:"matched"`
}

// Analyze reports the features, finger state and primary letter of a frame
// without touching any history. It returns false for malformed input.
func Analyze(landmarks []detector.Point3D) (Analysis, bool) {
	hand, ok := detector.FromPoints(landmarks)
	if !ok {
		return Analysis{}, false
	}

	normalized := hand.Normalize()
	a := Analysis{Features: extractFeatures(normalized)}
	a.State = computeFingerState(normalized, &a.Features)
	a.Letter, _, a.Matched = classifyPrimary(&a.State, &a.Features)
	return a, true
}
