package renderer

import "time"

type FrameStats struct {
	State State

	// Progressive samples accumulated into the output buffer.
	AccumulationStep uint32

	// Monotonic frame counter passed to the backend.
	FrameIndex uint32

	// Output buffer dims.
	Width  uint32
	Height uint32

	// Why frames are being passed through, if they are.
	Degraded DegradedReason

	// Tick outcome counters.
	RenderedFrames    uint64
	PassThroughFrames uint64
	SkippedFrames     uint64

	// Resource counters; allocations - releases equals the number of live
	// backend resources owned by the controller.
	Allocations uint64
	Releases    uint64

	// Time spent in the last render pass.
	RenderTime time.Duration
}
