package gesture

// History sizes for stability scoring.
const (
	HistorySize     = 15
	StabilityWindow = 5
)

type entry struct {
	letter     Letter
	confidence float64
}

// history is a fixed-capacity ring of recent classifications.
// Once full, each push overwrites the oldest entry.
type history struct {
	entries [HistorySize]entry
	next    int
	size    int
}

func (h *history) push(letter Letter, confidence float64) {
	h.entries[h.next] = entry{letter: letter, confidence: confidence}
	h.next = (h.next + 1) % HistorySize
	if h.size < HistorySize {
		h.size++
	}
}

func (h *history) len() int {
	return h.size
}

// recent returns up to n entries, newest first.
func (h *history) recent(n int) []entry {
	if n > h.size {
		n = h.size
	}
	out := make([]entry, n)
	for i := 0; i < n; i++ {
		out[i] = h.entries[(h.next-1-i+HistorySize)%HistorySize]
	}
	return out
}

// stability blends how often letter appears in the window with the mean
// confidence of the window. Both are divided by the full window size, so a
// history shorter than StabilityWindow scores as if padded with empty frames.
func (h *history) stability(letter Letter) float64 {
	var matches int
	var confidence float64
	for _, e := range h.recent(StabilityWindow) {
		if e.letter == letter {
			matches++
		}
		confidence += e.confidence
	}

	consistency := float64(matches) / StabilityWindow
	avgConfidence := confidence / StabilityWindow
	return ConsistencyWeight*consistency + ConfidenceWeight*avgConfidence
}
