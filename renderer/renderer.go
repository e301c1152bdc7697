package renderer

import (
	"image"
	"image/draw"

	"github.com/achilleasa/rtpreview/scene"
)

// Viewport dimensions in pixels.
type Viewport struct {
	Width  uint32
	Height uint32
}

// Returns true if the viewport has no pixels.
func (v Viewport) Empty() bool {
	return v.Width == 0 || v.Height == 0
}

// Input signals sampled by the host once per tick.
type Input struct {
	// Level of the restart accumulation control. Only the transition from
	// released to pressed restarts accumulation.
	Restart bool
}

// Everything the host supplies for a single tick. Surfaces are borrowed
// for the duration of the call only.
type Frame struct {
	Viewport Viewport
	Input    Input

	Camera *scene.Camera
	Scene  *scene.Scene

	// The surface contents before ray tracing and the destination surface.
	Src image.Image
	Dst draw.Image
}

type Renderer interface {
	// Process one frame.
	Tick(Frame) error

	// Release all backend resources.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
