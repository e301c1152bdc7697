package tracer

import (
	"image/draw"

	"github.com/achilleasa/rtpreview/scene"
)

// An opaque handle to a backend-owned resource. The zero value never refers
// to a live resource.
type Handle uint64

// The empty handle.
const NullHandle Handle = 0

// A handle to a backend acceleration structure.
type AccelerationStructure Handle

// The empty acceleration structure handle.
const NullAccelerationStructure AccelerationStructure = 0

// Selects which objects are eligible for inclusion in an acceleration structure.
type ModeMask uint8

const (
	IncludeStatic ModeMask = 1 << iota
	IncludeDynamic

	// Include every renderable object.
	IncludeEverything = IncludeStatic | IncludeDynamic
)

// Controls how acceleration structure membership is maintained.
type ManagementMode uint8

const (
	// The backend adds every eligible scene object on each rebuild.
	AutomaticManagement ManagementMode = iota

	// Instances are added explicitly by the caller.
	ManualManagement
)

// Settings for creating an acceleration structure.
type AccelerationStructureSettings struct {
	ModeMask   ModeMask
	Management ManagementMode

	// One bit per object layer; 0xFF enables layers 0-7.
	LayerMask uint8
}

// Check whether an object matches the mode and layer masks.
func (s AccelerationStructureSettings) Includes(obj *scene.Object) bool {
	if obj == nil || obj.Disabled {
		return false
	}
	if s.LayerMask&(1<<obj.Layer) == 0 {
		return false
	}
	switch obj.Mode {
	case scene.Static:
		return s.ModeMask&IncludeStatic != 0
	case scene.Dynamic:
		return s.ModeMask&IncludeDynamic != 0
	}
	return false
}

// The pixel format of a backend image.
type Format uint8

const (
	FormatUnknown Format = iota

	// 4 channels, 32-bit float each.
	FormatRGBA32F
)

// Bytes per pixel for the format.
func (f Format) PixelSize() int {
	switch f {
	case FormatRGBA32F:
		return 16
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatRGBA32F:
		return "R32G32B32A32_SFloat"
	}
	return "unknown"
}

// Image layout.
type Dimension uint8

const (
	Tex2D Dimension = iota + 1
)

// Describes an image allocation.
type ImageDescriptor struct {
	Dimension   Dimension
	Width       uint32
	Height      uint32
	VolumeDepth uint32
	Format      Format
	RandomWrite bool
	Samples     uint32
	DepthBits   uint32
}

// A backend image and the descriptor it was allocated with.
type Image struct {
	Handle Handle
	Desc   ImageDescriptor
}

// The empty image.
var NullImage = Image{}

// Returns true if the image does not refer to a live allocation.
func (img Image) IsNull() bool {
	return img.Handle == NullHandle
}

// A reference to a compiled ray tracing program.
type Program interface {
	// The program name.
	Name() string
}

// The set of operations that a ray tracing backend exposes to the renderer.
// Implementations perform all intersection and shading work; calls are
// synchronous from the caller's point of view.
type Backend interface {
	// Get backend name.
	Name() string

	// Report whether the device supports hardware ray tracing.
	HardwareSupport() bool

	// Create an acceleration structure.
	CreateAccelerationStructure(AccelerationStructureSettings) (AccelerationStructure, error)

	// Rebuild an acceleration structure from the scene contents.
	Rebuild(AccelerationStructure, *scene.Scene) error

	// Select the execution pass used by subsequent dispatches.
	SelectPass(prog Program, pass string) error

	// Bind a scalar, texture, image or acceleration structure parameter.
	SetParameter(prog Program, name string, value interface{}) error

	// Dispatch width x height x depth work items to the program entry point.
	Dispatch(prog Program, entryPoint string, width, height, depth uint32, camera *scene.Camera) error

	// Allocate an image.
	CreateImage(ImageDescriptor) (Image, error)

	// Release a resource. Releasing NullHandle or an unknown handle is a no-op.
	Release(Handle)

	// Copy image contents to a host display surface.
	Blit(src Image, dst draw.Image) error
}
