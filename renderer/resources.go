package renderer

import (
	"fmt"

	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/tracer"
)

// Settings used for the acceleration structure: every renderable object on
// layers 0-7 with backend managed membership.
var accelStructureSettings = tracer.AccelerationStructureSettings{
	ModeMask:   tracer.IncludeEverything,
	Management: tracer.AutomaticManagement,
	LayerMask:  0xFF,
}

// Tracks the acceleration structure and output image owned by the
// controller. Released handles are reset to their null values so that the
// ensure methods can detect their absence.
type resources struct {
	logger  log.Logger
	backend tracer.Backend

	accelStructure tracer.AccelerationStructure
	output         tracer.Image

	width  uint32
	height uint32

	allocations uint64
	releases    uint64
}

func newResources(backend tracer.Backend, logger log.Logger) *resources {
	return &resources{
		logger:  logger,
		backend: backend,
	}
}

// Create the acceleration structure if it does not exist.
func (r *resources) ensureAccelerationStructure() error {
	if r.accelStructure != tracer.NullAccelerationStructure {
		return nil
	}

	as, err := r.backend.CreateAccelerationStructure(accelStructureSettings)
	if err != nil {
		return fmt.Errorf("%w: acceleration structure: %v", ErrResourceAllocation, err)
	}
	if as == tracer.NullAccelerationStructure {
		return fmt.Errorf("%w: backend returned a null acceleration structure", ErrResourceAllocation)
	}

	r.accelStructure = as
	r.allocations++
	r.logger.Debugf("created acceleration structure %d", as)
	return nil
}

// Make sure that the output image exists and matches the requested size.
// Returns true if a new image was allocated.
func (r *resources) ensureOutputBuffer(width, height uint32) (bool, error) {
	if !r.output.IsNull() && r.width == width && r.height == height {
		return false, nil
	}

	r.releaseOutput()

	img, err := r.backend.CreateImage(tracer.ImageDescriptor{
		Dimension:   tracer.Tex2D,
		Width:       width,
		Height:      height,
		VolumeDepth: 1,
		Format:      tracer.FormatRGBA32F,
		RandomWrite: true,
		Samples:     1,
		DepthBits:   0,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %dx%d output image: %v", ErrResourceAllocation, width, height, err)
	}
	if img.IsNull() {
		return false, fmt.Errorf("%w: backend returned a null %dx%d output image", ErrResourceAllocation, width, height)
	}

	r.output = img
	r.width = width
	r.height = height
	r.allocations++
	r.logger.Infof("allocated %dx%d output image", width, height)
	return true, nil
}

// Returns true if both resources exist.
func (r *resources) ready() bool {
	return r.accelStructure != tracer.NullAccelerationStructure && !r.output.IsNull()
}

// Release all resources. Safe to call multiple times.
func (r *resources) release() {
	if r.accelStructure != tracer.NullAccelerationStructure {
		r.backend.Release(tracer.Handle(r.accelStructure))
		r.accelStructure = tracer.NullAccelerationStructure
		r.releases++
	}
	r.releaseOutput()
}

func (r *resources) releaseOutput() {
	if !r.output.IsNull() {
		r.backend.Release(r.output.Handle)
		r.output = tracer.NullImage
		r.releases++
	}
	r.width = 0
	r.height = 0
}
