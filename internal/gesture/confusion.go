package gesture

// Secondary classification method tags.
const (
	MethodAngleAnalysis    = "angle_analysis"
	MethodDistanceAnalysis = "distance_analysis"
	MethodOpennessBanding  = "openness_banding"
)

// secondary is the outcome of a confusion group discriminator.
type secondary struct {
	letter     Letter
	confidence float64
	method     string
}

// discriminator picks one letter out of a confusion group, or reports false
// when none of its sub-cases apply.
type discriminator func(s *FingerState, f *FeatureVector) (secondary, bool)

// confusionGroup is a set of letters whose primary signatures overlap.
type confusionGroup struct {
	id      string
	members []Letter
	resolve discriminator // nil: membership only
}

func (g *confusionGroup) has(letter Letter) bool {
	for _, m := range g.members {
		if m == letter {
			return true
		}
	}
	return false
}

// confusionGroups is consulted in order. A letter may belong to several
// groups; the first group whose discriminator returns a letter decides.
var confusionGroups = []confusionGroup{
	{id: "DRU", members: []Letter{"D", "R", "U"}, resolve: resolvePointing},
	{id: "TKDI", members: []Letter{"T", "K", "D", "I"}, resolve: resolveThumbIndex},
	{id: "SMN", members: []Letter{"S", "M", "N"}, resolve: resolveFist},
	{id: "CO", members: []Letter{"C", "O"}},
	{id: "BF", members: []Letter{"B", "F"}},
	{id: "PQ", members: []Letter{"P", "Q"}},
	{id: "VW", members: []Letter{"V", "W"}},
	{id: "GH", members: []Letter{"G", "H"}},
}

// groupsByLetter indexes confusionGroups by member letter, preserving table order.
var groupsByLetter = func() map[Letter][]*confusionGroup {
	index := make(map[Letter][]*confusionGroup)
	for i := range confusionGroups {
		g := &confusionGroups[i]
		for _, m := range g.members {
			index[m] = append(index[m], g)
		}
	}
	return index
}()

// resolveSecondary runs the discriminators of every group containing letter.
func resolveSecondary(letter Letter, s *FingerState, f *FeatureVector) (secondary, string, bool) {
	for _, g := range groupsByLetter[letter] {
		if g.resolve == nil {
			continue
		}
		if out, ok := g.resolve(s, f); ok {
			return out, g.id, true
		}
	}
	return secondary{}, "", false
}

// resolvePointing separates D, R and U by the index finger angle and how far
// the thumb sits from the palm.
func resolvePointing(s *FingerState, f *FeatureVector) (secondary, bool) {
	indexAngle := f.FingerAngles[Index]
	thumbDistance := f.TipDistances[Thumb]

	switch {
	case indexAngle > -0.5 && indexAngle < 0.5 && thumbDistance > 0.05:
		return secondary{"D", 0.91, MethodAngleAnalysis}, true
	case indexAngle > 0.5 && s.Extended[Middle]:
		return secondary{"R", 0.89, MethodAngleAnalysis}, true
	case indexAngle < -0.5 && s.Extended[Middle]:
		return secondary{"U", 0.88, MethodAngleAnalysis}, true
	}
	return secondary{}, false
}

// resolveThumbIndex separates T, K, D and I by the thumb-index fingertip gap
// and the wrist angle. An upright hand has a wrist angle near -pi/2.
func resolveThumbIndex(s *FingerState, f *FeatureVector) (secondary, bool) {
	gap := f.TipGaps[Thumb]
	upright := s.WristAngle < -1.0

	switch {
	case gap < 0.1 && !s.Extended[Index]:
		return secondary{"T", 0.82, MethodDistanceAnalysis}, true
	case s.Extended[Index] && s.Extended[Middle] && gap < 0.3 && upright:
		return secondary{"K", 0.80, MethodDistanceAnalysis}, true
	case s.Extended[Pinky] && !s.Extended[Index] && gap < 0.2:
		return secondary{"I", 0.84, MethodDistanceAnalysis}, true
	case s.Extended[Index] && !s.Extended[Middle] && gap >= 0.3 && upright:
		return secondary{"D", 0.83, MethodDistanceAnalysis}, true
	}
	return secondary{}, false
}

// resolveFist separates S, N and M by how tightly the fist is closed.
func resolveFist(s *FingerState, f *FeatureVector) (secondary, bool) {
	switch {
	case s.Openness < 0.25:
		return secondary{"S", 0.80, MethodOpennessBanding}, true
	case s.Openness < 0.30:
		return secondary{"N", 0.76, MethodOpennessBanding}, true
	case s.Openness < 0.35:
		return secondary{"M", 0.74, MethodOpennessBanding}, true
	}
	return secondary{}, false
}
