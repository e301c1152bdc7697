package interactive

import "time"

// The split of a displayed frame's time between the render pass and
// everything else the host did for that frame.
type frameSample struct {
	render   time.Duration
	overhead time.Duration
}

// A fixed size ring of frame samples, oldest first.
type frameHistory struct {
	samples []frameSample
	next    int
	count   int
}

func newFrameHistory(size int) *frameHistory {
	if size < 1 {
		size = 1
	}
	return &frameHistory{samples: make([]frameSample, size)}
}

// Forget all samples.
func (h *frameHistory) Clear() {
	h.next, h.count = 0, 0
}

// Record a frame. Render time is capped to the tick time.
func (h *frameHistory) Add(tickTime, renderTime time.Duration) {
	if renderTime > tickTime {
		renderTime = tickTime
	}
	h.samples[h.next] = frameSample{render: renderTime, overhead: tickTime - renderTime}
	h.next = (h.next + 1) % len(h.samples)
	if h.count < len(h.samples) {
		h.count++
	}
}

// Number of recorded samples.
func (h *frameHistory) Len() int {
	return h.count
}

// Get the i-th oldest sample.
func (h *frameHistory) At(i int) frameSample {
	start := h.next - h.count
	if start < 0 {
		start += len(h.samples)
	}
	return h.samples[(start+i)%len(h.samples)]
}

// Scale sample i to a bar of at most maxHeight pixels. The slowest frame
// in the history fills the whole height. Returns the render and overhead
// segment heights.
func (h *frameHistory) Bar(i int, maxHeight float32) (float32, float32) {
	var slowest time.Duration
	for j := 0; j < h.count; j++ {
		if total := h.samples[j].render + h.samples[j].overhead; total > slowest {
			slowest = total
		}
	}
	if slowest == 0 {
		return 0, 0
	}

	s := h.At(i)
	return float32(s.render) / float32(slowest) * maxHeight, float32(s.overhead) / float32(slowest) * maxHeight
}
