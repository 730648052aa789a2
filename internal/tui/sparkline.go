package tui

// sparkLevels maps a 0..100 sample to one of eight block heights.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// History keeps the most recent samples of a series, oldest first.
type History struct {
	samples []float64
	limit   int
}

// NewHistory creates a history holding at most limit samples.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Push appends a sample, dropping the oldest once the limit is reached.
func (h *History) Push(v float64) {
	h.samples = append(h.samples, v)
	if over := len(h.samples) - h.limit; over > 0 {
		h.samples = append(h.samples[:0], h.samples[over:]...)
	}
}

// Len returns the number of samples held.
func (h *History) Len() int { return len(h.samples) }

// Limit returns the maximum number of samples.
func (h *History) Limit() int { return h.limit }

// Last returns the newest sample, or 0 when empty.
func (h *History) Last() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	return append([]float64(nil), h.samples...)
}

// SetLimit changes the limit, keeping the newest samples that fit.
func (h *History) SetLimit(limit int) {
	h.limit = max(limit, 1)
	if over := len(h.samples) - h.limit; over > 0 {
		h.samples = append(h.samples[:0], h.samples[over:]...)
	}
}

// Clear drops every sample.
func (h *History) Clear() {
	h.samples = h.samples[:0]
}

// Sparkline renders 0..100 samples as block characters. Out-of-range
// samples are clamped.
func Sparkline(values []float64) string {
	out := make([]rune, len(values))
	top := len(sparkLevels) - 1
	for i, v := range values {
		v = min(max(v, 0), 100)
		out[i] = sparkLevels[int(v/100*float64(top))]
	}
	return string(out)
}
