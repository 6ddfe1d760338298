package gesture

import "math"

// rule is one entry of the primary decision list.
type rule struct {
	letter     Letter
	confidence float64
	match      func(s *FingerState, f *FeatureVector) bool
}

// primaryRules is evaluated top to bottom; the first match wins.
// Order matters: broader shapes (fists, curved hands) sit below the
// more specific finger combinations they would otherwise swallow.
var primaryRules = []rule{
	{"A", 0.92, func(s *FingerState, f *FeatureVector) bool {
		return noneExtended(s) && s.Extended[Thumb] && s.Openness < 0.3
	}},
	{"B", 0.90, func(s *FingerState, f *FeatureVector) bool {
		return allExtended(s) && !s.Extended[Thumb] && s.Openness > 0.7
	}},
	{"F", 0.80, func(s *FingerState, f *FeatureVector) bool {
		return !s.Extended[Index] && s.Extended[Middle] && s.Extended[Ring] && s.Extended[Pinky]
	}},
	{"W", 0.85, func(s *FingerState, f *FeatureVector) bool {
		return s.Extended[Index] && s.Extended[Middle] && s.Extended[Ring] && !s.Extended[Pinky]
	}},
	{"K", 0.76, func(s *FingerState, f *FeatureVector) bool {
		return twoUp(s) && s.Extended[Thumb] && s.ThumbUp
	}},
	{"R", 0.78, func(s *FingerState, f *FeatureVector) bool {
		return twoUp(s) && s.Crossed
	}},
	{"U", 0.80, func(s *FingerState, f *FeatureVector) bool {
		return twoUp(s) && f.TipGaps[Index] < 0.1
	}},
	{"V", 0.82, func(s *FingerState, f *FeatureVector) bool {
		return twoUp(s)
	}},
	{"Y", 0.85, func(s *FingerState, f *FeatureVector) bool {
		return onlyPinky(s) && s.Extended[Thumb]
	}},
	{"I", 0.80, func(s *FingerState, f *FeatureVector) bool {
		return onlyPinky(s) && !s.Extended[Thumb]
	}},
	{"L", 0.85, func(s *FingerState, f *FeatureVector) bool {
		return onlyIndex(s) && s.Extended[Thumb] && s.ThumbUp
	}},
	{"D", 0.80, func(s *FingerState, f *FeatureVector) bool {
		return onlyIndex(s)
	}},
	{"H", 0.74, func(s *FingerState, f *FeatureVector) bool {
		return s.Horizontal(Index) && s.Horizontal(Middle) && sideways(f.FingerAngles[Index]) &&
			!s.Extended[Ring] && !s.Extended[Pinky]
	}},
	{"G", 0.74, func(s *FingerState, f *FeatureVector) bool {
		return s.Horizontal(Index) && sideways(f.FingerAngles[Index]) && s.Curled[Middle] &&
			!s.Extended[Ring] && !s.Extended[Pinky]
	}},
	{"Q", 0.72, func(s *FingerState, f *FeatureVector) bool {
		return s.Curled[Index] && s.Curled[Thumb] && f.FingerAngles[Index] > 0.5 && s.Openness > 0.45
	}},
	{"P", 0.72, func(s *FingerState, f *FeatureVector) bool {
		return s.Curled[Index] && s.Curled[Middle] && s.Extended[Thumb] &&
			f.FingerAngles[Index] > 0.5 && s.Openness > 0.45
	}},
	{"O", 0.78, func(s *FingerState, f *FeatureVector) bool {
		return noneExtended(s) && f.Curvature > CurvatureThreshold && f.TipGaps[Thumb] < 0.1
	}},
	{"C", 0.80, func(s *FingerState, f *FeatureVector) bool {
		return noneExtended(s) && f.Curvature > CurvatureThreshold
	}},
	{"E", 0.75, func(s *FingerState, f *FeatureVector) bool {
		return allCurled(s) && s.Curled[Thumb]
	}},
	{"T", 0.70, func(s *FingerState, f *FeatureVector) bool {
		return noneExtended(s) && !s.Extended[Thumb] && s.ThumbUp
	}},
	{"S", 0.72, func(s *FingerState, f *FeatureVector) bool {
		return noneExtended(s) && !s.Extended[Thumb] && s.Openness < 0.35
	}},
}

// classifyPrimary returns the first matching rule, or false.
func classifyPrimary(s *FingerState, f *FeatureVector) (Letter, float64, bool) {
	for _, r := range primaryRules {
		if r.match(s, f) {
			return r.letter, r.confidence, true
		}
	}
	return "", 0, false
}

func noneExtended(s *FingerState) bool {
	return s.ExtendedCount() == 0
}

func allExtended(s *FingerState) bool {
	return s.ExtendedCount() == 4
}

func allCurled(s *FingerState) bool {
	return s.Curled[Index] && s.Curled[Middle] && s.Curled[Ring] && s.Curled[Pinky]
}

func twoUp(s *FingerState) bool {
	return s.Extended[Index] && s.Extended[Middle] && !s.Extended[Ring] && !s.Extended[Pinky]
}

func onlyIndex(s *FingerState) bool {
	return s.Extended[Index] && !s.Extended[Middle] && !s.Extended[Ring] && !s.Extended[Pinky]
}

func onlyPinky(s *FingerState) bool {
	return s.Extended[Pinky] && !s.Extended[Index] && !s.Extended[Middle] && !s.Extended[Ring]
}

// sideways reports whether an angle points roughly along the x axis.
func sideways(angle float64) bool {
	return math.Abs(angle) < 0.5 || math.Abs(angle) > math.Pi-0.5
}
