package renderer

import (
	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/tracer"
)

// Bounce limit range enforced by Clamp.
const (
	MinBounces uint32 = 1
	MaxBounces uint32 = 100
)

type Options struct {
	// Max bounces for rays hitting opaque and transparent materials.
	OpaqueBounces      uint32
	TransparentBounces uint32

	// Optional environment map used as background and lighting.
	Environment *texture.Environment

	// The ray generation program. If nil, frames are passed through unmodified.
	Program tracer.Program
}

// The default options.
func DefaultOptions() Options {
	return Options{
		OpaqueBounces:      5,
		TransparentBounces: 8,
	}
}

// Return a copy of the options with bounce limits clamped to the
// [MinBounces, MaxBounces] range.
func (o Options) Clamp() Options {
	o.OpaqueBounces = clampBounces(o.OpaqueBounces)
	o.TransparentBounces = clampBounces(o.TransparentBounces)
	return o
}

func (o Options) bounceLimits() BounceLimits {
	return BounceLimits{
		Opaque:      o.OpaqueBounces,
		Transparent: o.TransparentBounces,
	}
}

func clampBounces(v uint32) uint32 {
	if v < MinBounces {
		return MinBounces
	}
	if v > MaxBounces {
		return MaxBounces
	}
	return v
}

// The bounce limits snapshot used for change detection.
type BounceLimits struct {
	Opaque      uint32
	Transparent uint32
}
