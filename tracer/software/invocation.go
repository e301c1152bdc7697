package software

import (
	"math/rand"

	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/types"
)

// Program parameters resolved for a single dispatch.
type bindings struct {
	scalars    map[string]interface{}
	images     map[string]*imageData
	structures map[string]*accelStructure
}

func (b *bindings) Int(name string) int32 {
	v, _ := b.scalars[name].(int32)
	return v
}

func (b *bindings) Float(name string) float32 {
	v, _ := b.scalars[name].(float32)
	return v
}

// The state passed to a kernel for each work item.
type Invocation struct {
	// Work item coordinates.
	X, Y, Z uint32

	// Dispatch dimensions.
	Width, Height, Depth uint32

	// The camera supplied to Dispatch.
	Camera *scene.Camera

	bindings *bindings
	rng      *rand.Rand
}

// Get an integer parameter; missing parameters read as 0.
func (inv *Invocation) Int(name string) int32 {
	return inv.bindings.Int(name)
}

// Get a float parameter; missing parameters read as 0.
func (inv *Invocation) Float(name string) float32 {
	return inv.bindings.Float(name)
}

// Get an environment map parameter. Returns nil if unbound.
func (inv *Invocation) Environment(name string) *texture.Environment {
	env, _ := inv.bindings.scalars[name].(*texture.Environment)
	return env
}

// Get a writable image parameter. Returns nil if unbound.
func (inv *Invocation) Target(name string) *Target {
	img, exists := inv.bindings.images[name]
	if !exists {
		return nil
	}
	return &Target{img: img}
}

// Get the number of instances in a bound acceleration structure.
func (inv *Invocation) Instances(name string) int {
	st, exists := inv.bindings.structures[name]
	if !exists {
		return 0
	}
	return len(st.instances)
}

// Get a uniformly distributed random number in [0, 1). The sequence is
// seeded from the frame index and the work item row.
func (inv *Invocation) Rand() float32 {
	return inv.rng.Float32()
}

func newRowRand(frameIndex int64, row uint32) *rand.Rand {
	return rand.New(rand.NewSource(frameIndex<<20 ^ int64(row)))
}

// A random-access view of a float image.
type Target struct {
	img *imageData
}

// Get image dimensions.
func (t *Target) Size() (uint32, uint32) {
	return t.img.desc.Width, t.img.desc.Height
}

// Read a pixel.
func (t *Target) At(x, y uint32) types.Vec4 {
	offset := 4 * (y*t.img.desc.Width + x)
	pix := t.img.pix[offset : offset+4 : offset+4]
	return types.Vec4{pix[0], pix[1], pix[2], pix[3]}
}

// Write a pixel. Writes outside the image are discarded.
func (t *Target) Set(x, y uint32, v types.Vec4) {
	if x >= t.img.desc.Width || y >= t.img.desc.Height {
		return
	}
	offset := 4 * (y*t.img.desc.Width + x)
	copy(t.img.pix[offset:offset+4], v[:])
}
