package interactive

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/achilleasa/rtpreview/types"
)

var (
	renderColor   = types.Vec3{0.2, 0.8, 1.0}
	overheadColor = types.Vec3{1.0, 0.6, 0.2}
)

// Draw one vertical bar per frame along the bottom of the window, newest
// on the right. Render pass time is stacked below host overhead.
func drawFrameHistory(h *frameHistory, fbW int, bottom, height uint32) {
	left := fbW - h.Len()
	base := float32(bottom)

	gl.LineWidth(1.0)
	gl.Begin(gl.LINES)
	for i := 0; i < h.Len(); i++ {
		x := float32(left + i)
		renderH, overheadH := h.Bar(i, float32(height))

		gl.Color3fv(&renderColor[0])
		gl.Vertex2f(x, base)
		gl.Vertex2f(x, base-renderH)

		gl.Color3fv(&overheadColor[0])
		gl.Vertex2f(x, base-renderH)
		gl.Vertex2f(x, base-renderH-overheadH)
	}
	gl.End()
	gl.Color3f(1, 1, 1)
}
