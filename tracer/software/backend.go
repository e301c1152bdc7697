package software

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"runtime"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/tracer"
)

// Display gamma applied when blitting to 8-bit surfaces.
const displayGamma = 1.0 / 2.2

// Backend options.
type Options struct {
	// Report hardware ray tracing support. Disabling it lets hosts exercise
	// their fallback path while keeping every other operation functional.
	HardwareSupport bool

	// Exposure applied when blitting to a display surface.
	Exposure float32

	// Number of goroutines used by Dispatch; 0 selects runtime.NumCPU().
	Workers int

	// Upper bound on the total number of allocated image pixels; 0 means
	// no limit.
	MaxImagePixels uint64
}

// The default backend options.
func DefaultOptions() Options {
	return Options{
		HardwareSupport: true,
		Exposure:        1.0,
	}
}

// Backend statistics.
type Stats struct {
	Builds     uint64
	Dispatches uint64
	Blits      uint64

	LiveImages     int
	LiveStructures int

	// Time spent in the last dispatch.
	DispatchTime time.Duration
}

// An acceleration structure holding a snapshot of its member objects.
type accelStructure struct {
	settings  tracer.AccelerationStructureSettings
	instances []*scene.Object
	builds    uint64
}

// A float RGBA image.
type imageData struct {
	desc tracer.ImageDescriptor
	pix  []float32
}

// A CPU implementation of the tracer.Backend interface. It runs Go kernels
// registered with a Program over the dispatched work items. All resources
// live in host memory.
type Backend struct {
	logger log.Logger
	opts   Options

	lastHandle tracer.Handle
	structures map[tracer.Handle]*accelStructure
	images     map[tracer.Handle]*imageData

	allocatedPixels uint64

	// Staging surface used for converting float images before blitting.
	staging *image.RGBA

	stats Stats
}

// Create a new software backend.
func New(opts Options) *Backend {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Exposure <= 0 {
		opts.Exposure = 1.0
	}

	return &Backend{
		logger:     log.New("software backend"),
		opts:       opts,
		structures: make(map[tracer.Handle]*accelStructure),
		images:     make(map[tracer.Handle]*imageData),
	}
}

// Get backend name.
func (b *Backend) Name() string {
	return "software"
}

// Report whether hardware ray tracing is available.
func (b *Backend) HardwareSupport() bool {
	return b.opts.HardwareSupport
}

// Set the exposure used by subsequent blits. Non-positive values reset
// it to 1.
func (b *Backend) SetExposure(exposure float32) {
	if exposure <= 0 {
		exposure = 1.0
	}
	b.opts.Exposure = exposure
}

// Get backend statistics.
func (b *Backend) Stats() Stats {
	stats := b.stats
	stats.LiveImages = len(b.images)
	stats.LiveStructures = len(b.structures)
	return stats
}

// Create an acceleration structure.
func (b *Backend) CreateAccelerationStructure(settings tracer.AccelerationStructureSettings) (tracer.AccelerationStructure, error) {
	handle := b.nextHandle()
	b.structures[handle] = &accelStructure{
		settings:  settings,
		instances: make([]*scene.Object, 0),
	}
	b.logger.Debugf("created acceleration structure %d (mode mask %#x, layer mask %#x)", handle, settings.ModeMask, settings.LayerMask)
	return tracer.AccelerationStructure(handle), nil
}

// Add an instance to a manually managed acceleration structure.
func (b *Backend) AddInstance(as tracer.AccelerationStructure, obj *scene.Object) error {
	st, exists := b.structures[tracer.Handle(as)]
	if !exists {
		return fmt.Errorf("%w: acceleration structure %d", ErrInvalidHandle, as)
	}
	if st.settings.Management != tracer.ManualManagement {
		return fmt.Errorf("software backend: acceleration structure %d is automatically managed", as)
	}
	st.instances = append(st.instances, obj)
	return nil
}

// Rebuild an acceleration structure. Automatically managed structures
// collect every scene object matching their masks; manually managed ones
// drop instances that no longer match.
func (b *Backend) Rebuild(as tracer.AccelerationStructure, sc *scene.Scene) error {
	st, exists := b.structures[tracer.Handle(as)]
	if !exists {
		return fmt.Errorf("%w: acceleration structure %d", ErrInvalidHandle, as)
	}

	var candidates []*scene.Object
	switch st.settings.Management {
	case tracer.AutomaticManagement:
		if sc != nil {
			candidates = sc.Objects
		}
	default:
		candidates = st.instances
	}

	instances := make([]*scene.Object, 0, len(candidates))
	for _, obj := range candidates {
		if st.settings.Includes(obj) {
			instances = append(instances, obj)
		}
	}
	st.instances = instances
	st.builds++
	b.stats.Builds++
	return nil
}

// Select the execution pass for a program.
func (b *Backend) SelectPass(prog tracer.Program, pass string) error {
	p, err := b.program(prog)
	if err != nil {
		return err
	}
	if _, exists := p.passes[pass]; !exists {
		return fmt.Errorf("%w: %q in program %q", ErrUnknownPass, pass, p.name)
	}
	p.activePass = pass
	return nil
}

// Bind a program parameter. Supported values are integers, floats,
// environment maps (nil is allowed), images and acceleration structures.
func (b *Backend) SetParameter(prog tracer.Program, name string, value interface{}) error {
	p, err := b.program(prog)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case int32, float32, *texture.Environment:
	case int:
		value = int32(v)
	case uint32:
		value = int32(v)
	case float64:
		value = float32(v)
	case tracer.Image:
		if _, exists := b.images[v.Handle]; !exists {
			return fmt.Errorf("%w: image %d bound to %q", ErrInvalidHandle, v.Handle, name)
		}
	case tracer.AccelerationStructure:
		if _, exists := b.structures[tracer.Handle(v)]; !exists {
			return fmt.Errorf("%w: acceleration structure %d bound to %q", ErrInvalidHandle, v, name)
		}
	case nil:
	default:
		return fmt.Errorf("%w: %T for %q", ErrUnsupportedParam, value, name)
	}

	p.params[name] = value
	return nil
}

// Run the entry point of the active pass once per work item. Rows are
// split across the configured number of workers; the call returns once
// all of them complete.
func (b *Backend) Dispatch(prog tracer.Program, entryPoint string, width, height, depth uint32, camera *scene.Camera) error {
	p, err := b.program(prog)
	if err != nil {
		return err
	}
	if width == 0 || height == 0 || depth == 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidDispatch, width, height, depth)
	}
	if camera == nil {
		return ErrCameraNotSpecified
	}
	kernel, err := p.kernel(entryPoint)
	if err != nil {
		return err
	}

	bindings, err := b.resolveBindings(p)
	if err != nil {
		return err
	}

	start := time.Now()
	workers := b.opts.Workers
	if workers > int(height) {
		workers = int(height)
	}
	seed := int64(bindings.Int("g_FrameIndex"))

	var wg sync.WaitGroup
	rows := make(chan uint32, height)
	for y := uint32(0); y < height; y++ {
		rows <- y
	}
	close(rows)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv := &Invocation{
				Width:    width,
				Height:   height,
				Depth:    depth,
				Camera:   camera,
				bindings: bindings,
			}
			for y := range rows {
				inv.Y = y
				inv.rng = newRowRand(seed, y)
				for z := uint32(0); z < depth; z++ {
					inv.Z = z
					for x := uint32(0); x < width; x++ {
						inv.X = x
						kernel(inv)
					}
				}
			}
		}()
	}
	wg.Wait()

	b.stats.Dispatches++
	b.stats.DispatchTime = time.Since(start)
	return nil
}

// Allocate an image. Only 2D RGBA32F single sample images without depth
// are supported.
func (b *Backend) CreateImage(desc tracer.ImageDescriptor) (tracer.Image, error) {
	if desc.Dimension != tracer.Tex2D || desc.Format != tracer.FormatRGBA32F ||
		desc.Samples > 1 || desc.DepthBits != 0 || desc.VolumeDepth > 1 {
		return tracer.NullImage, fmt.Errorf("%w: %+v", ErrUnsupportedImage, desc)
	}
	if desc.Width == 0 || desc.Height == 0 {
		return tracer.NullImage, fmt.Errorf("%w: zero sized image %dx%d", ErrUnsupportedImage, desc.Width, desc.Height)
	}

	numPixels := uint64(desc.Width) * uint64(desc.Height)
	if b.opts.MaxImagePixels != 0 && b.allocatedPixels+numPixels > b.opts.MaxImagePixels {
		return tracer.NullImage, fmt.Errorf("%w: requested %d pixels with %d of %d in use", ErrOutOfMemory, numPixels, b.allocatedPixels, b.opts.MaxImagePixels)
	}

	handle := b.nextHandle()
	b.images[handle] = &imageData{
		desc: desc,
		pix:  make([]float32, 4*numPixels),
	}
	b.allocatedPixels += numPixels
	b.logger.Debugf("allocated %dx%d %s image %d", desc.Width, desc.Height, desc.Format, handle)

	return tracer.Image{Handle: handle, Desc: desc}, nil
}

// Release an image or acceleration structure.
func (b *Backend) Release(handle tracer.Handle) {
	if img, exists := b.images[handle]; exists {
		b.allocatedPixels -= uint64(img.desc.Width) * uint64(img.desc.Height)
		delete(b.images, handle)
		b.logger.Debugf("released image %d", handle)
		return
	}
	if _, exists := b.structures[handle]; exists {
		delete(b.structures, handle)
		b.logger.Debugf("released acceleration structure %d", handle)
	}
}

// Copy an image to a display surface applying exposure and display gamma.
// The image is scaled if the surface dimensions differ.
func (b *Backend) Blit(src tracer.Image, dst draw.Image) error {
	img, exists := b.images[src.Handle]
	if !exists {
		return fmt.Errorf("%w: image %d", ErrInvalidHandle, src.Handle)
	}

	w, h := int(img.desc.Width), int(img.desc.Height)
	if b.staging == nil || b.staging.Rect.Dx() != w || b.staging.Rect.Dy() != h {
		b.staging = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	exposure := b.opts.Exposure
	for i := 0; i < len(img.pix); i += 4 {
		b.staging.Pix[i] = toDisplay(img.pix[i] * exposure)
		b.staging.Pix[i+1] = toDisplay(img.pix[i+1] * exposure)
		b.staging.Pix[i+2] = toDisplay(img.pix[i+2] * exposure)
		b.staging.Pix[i+3] = 255
	}

	dstBounds := dst.Bounds()
	if dstBounds.Dx() == w && dstBounds.Dy() == h {
		xdraw.Copy(dst, dstBounds.Min, b.staging, b.staging.Bounds(), xdraw.Src, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dstBounds, b.staging, b.staging.Bounds(), xdraw.Src, nil)
	}

	b.stats.Blits++
	return nil
}

// Read back a pixel from an image.
func (b *Backend) ReadPixel(src tracer.Image, x, y uint32) ([4]float32, error) {
	img, exists := b.images[src.Handle]
	if !exists {
		return [4]float32{}, fmt.Errorf("%w: image %d", ErrInvalidHandle, src.Handle)
	}
	if x >= img.desc.Width || y >= img.desc.Height {
		return [4]float32{}, fmt.Errorf("software backend: pixel (%d, %d) outside %dx%d image", x, y, img.desc.Width, img.desc.Height)
	}
	offset := 4 * (y*img.desc.Width + x)
	return [4]float32{img.pix[offset], img.pix[offset+1], img.pix[offset+2], img.pix[offset+3]}, nil
}

// Get the number of instances in an acceleration structure after its last rebuild.
func (b *Backend) InstanceCount(as tracer.AccelerationStructure) (int, error) {
	st, exists := b.structures[tracer.Handle(as)]
	if !exists {
		return 0, fmt.Errorf("%w: acceleration structure %d", ErrInvalidHandle, as)
	}
	return len(st.instances), nil
}

func (b *Backend) nextHandle() tracer.Handle {
	b.lastHandle++
	return b.lastHandle
}

func (b *Backend) program(prog tracer.Program) (*Program, error) {
	p, ok := prog.(*Program)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignProgram, prog)
	}
	return p, nil
}

// Resolve image and acceleration structure handles bound to the program.
func (b *Backend) resolveBindings(p *Program) (*bindings, error) {
	bnd := &bindings{
		scalars:    make(map[string]interface{}, len(p.params)),
		images:     make(map[string]*imageData),
		structures: make(map[string]*accelStructure),
	}

	for name, value := range p.params {
		switch v := value.(type) {
		case tracer.Image:
			img, exists := b.images[v.Handle]
			if !exists {
				return nil, fmt.Errorf("%w: image %d bound to %q was released", ErrInvalidHandle, v.Handle, name)
			}
			bnd.images[name] = img
		case tracer.AccelerationStructure:
			st, exists := b.structures[tracer.Handle(v)]
			if !exists {
				return nil, fmt.Errorf("%w: acceleration structure %d bound to %q was released", ErrInvalidHandle, v, name)
			}
			bnd.structures[name] = st
		default:
			bnd.scalars[name] = value
		}
	}

	return bnd, nil
}

func toDisplay(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Pow(float64(v), displayGamma)*255 + 0.5)
}
