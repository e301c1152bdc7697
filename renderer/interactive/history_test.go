package interactive

import (
	"testing"
	"time"
)

func TestFrameHistoryWraps(t *testing.T) {
	h := newFrameHistory(3)
	for i := 1; i <= 5; i++ {
		h.Add(time.Duration(i)*time.Millisecond, 0)
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 samples; got %d", h.Len())
	}
	for i, exp := range []time.Duration{3, 4, 5} {
		if got := h.At(i).overhead; got != exp*time.Millisecond {
			t.Fatalf("[sample %d] expected %s; got %s", i, exp*time.Millisecond, got)
		}
	}

	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("expected history to be empty after clear; got %d samples", h.Len())
	}
}

func TestFrameHistoryBars(t *testing.T) {
	type spec struct {
		tick        time.Duration
		render      time.Duration
		expRender   float32
		expOverhead float32
	}
	specs := []spec{
		{10 * time.Millisecond, 5 * time.Millisecond, 10, 10},
		{20 * time.Millisecond, 15 * time.Millisecond, 30, 10},
		// Render time reported above the tick time is capped
		{5 * time.Millisecond, 8 * time.Millisecond, 10, 0},
	}

	h := newFrameHistory(len(specs))
	for _, s := range specs {
		h.Add(s.tick, s.render)
	}

	// The slowest frame (20ms) fills the 40 pixel bar
	for index, s := range specs {
		renderH, overheadH := h.Bar(index, 40)
		if renderH != s.expRender || overheadH != s.expOverhead {
			t.Fatalf("[spec %d] expected bar %v/%v; got %v/%v", index, s.expRender, s.expOverhead, renderH, overheadH)
		}
	}

	empty := newFrameHistory(4)
	if renderH, overheadH := empty.Bar(0, 40); renderH != 0 || overheadH != 0 {
		t.Fatalf("expected empty bar; got %v/%v", renderH, overheadH)
	}
}
