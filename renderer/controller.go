package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/tracer"
	"github.com/achilleasa/rtpreview/types"
)

// Execution pass and entry point invoked for each render pass.
const (
	PathTracingPass  = "PathTracing"
	RayGenEntryPoint = "MainRayGenShader"
)

// Names of the parameters bound before each dispatch.
const (
	ParamBounceCountOpaque      = "g_BounceCountOpaque"
	ParamBounceCountTransparent = "g_BounceCountTransparent"
	ParamAccelStruct            = "g_AccelStruct"
	ParamZoom                   = "g_Zoom"
	ParamAspectRatio            = "g_AspectRatio"
	ParamConvergenceStep        = "g_ConvergenceStep"
	ParamFrameIndex             = "g_FrameIndex"
	ParamEnvTex                 = "g_EnvTex"
	ParamRadiance               = "g_Radiance"
)

var _ Renderer = (*Controller)(nil)

// The Controller drives a tracer.Backend to progressively refine a ray
// traced image. Each rendered tick adds one sample per pixel to the output
// buffer; any change to the camera transform or the bounce limits, a
// resize or an explicit restart discards the accumulated samples.
//
// A Controller is not safe for concurrent use. All methods must be called
// from the host's frame loop.
type Controller struct {
	logger  log.Logger
	backend tracer.Backend
	options Options
	res     *resources

	state    State
	viewport Viewport

	accumulationStep uint32
	frameIndex       uint32

	// Snapshot of the inputs used by the last render pass.
	lastCameraTransform types.Mat4
	lastBounceLimits    BounceLimits

	// Hardware support is queried once and assumed fixed for the session.
	hwChecked bool
	hwSupport bool
	degraded  DegradedReason

	// Degraded reasons already logged; each is reported once per session.
	reported map[DegradedReason]bool

	restart EdgeTrigger
	stats   FrameStats
}

// Create a new controller for the given backend. Options are used as-is;
// callers are expected to Clamp them.
func NewController(backend tracer.Backend, opts Options) *Controller {
	logger := log.New("renderer")
	return &Controller{
		logger:   logger,
		backend:  backend,
		options:  opts,
		res:      newResources(backend, logger),
		reported: make(map[DegradedReason]bool),
	}
}

// Snapshot the current camera transform and bounce limits. Resources are
// allocated lazily by the next Update call.
func (c *Controller) Enable(camera *scene.Camera) error {
	if camera == nil {
		return ErrCameraNotDefined
	}

	if !c.hwChecked {
		c.hwSupport = c.backend.HardwareSupport()
		c.hwChecked = true
		c.logger.Infof("backend %q hardware ray tracing support: %t", c.backend.Name(), c.hwSupport)
	}

	c.lastCameraTransform = camera.CameraToWorld()
	c.lastBounceLimits = c.options.bounceLimits()
	c.accumulationStep = 0
	c.restart.Reset()
	c.state = Ready
	return nil
}

// Release all backend resources. The controller can be enabled again.
func (c *Controller) Disable() {
	c.res.release()
	c.viewport = Viewport{}
	if c.state != Uninitialized {
		c.state = Disabled
	}
}

// Release all backend resources.
func (c *Controller) Close() {
	c.Disable()
}

// Replace the controller options. Changes to the bounce limits restart
// accumulation on the next rendered frame.
func (c *Controller) SetOptions(opts Options) {
	c.options = opts
}

// Get the current options.
func (c *Controller) Options() Options {
	return c.options
}

// Get the controller state.
func (c *Controller) State() State {
	return c.state
}

// Get the number of samples accumulated into the output buffer.
func (c *Controller) AccumulationStep() uint32 {
	return c.accumulationStep
}

// Discard accumulated samples.
func (c *Controller) RestartAccumulation() {
	c.logger.Debug("accumulation restart requested")
	c.resetAccumulation()
}

// Process one frame: ensure resources, then render.
func (c *Controller) Tick(frame Frame) error {
	if err := c.Update(frame.Viewport, frame.Input); err != nil {
		return err
	}
	return c.RenderImage(frame.Src, frame.Dst, frame.Camera, frame.Scene)
}

// Make sure that the backend resources match the viewport and consume the
// restart input. Allocation failures are returned wrapped in
// ErrResourceAllocation and should be treated as fatal.
func (c *Controller) Update(viewport Viewport, input Input) error {
	if !c.enabled() {
		return ErrNotEnabled
	}

	if err := c.ensureResources(viewport); err != nil {
		return err
	}

	if c.restart.Update(input.Restart) {
		c.RestartAccumulation()
	}
	return nil
}

// Render the next progressive sample into dst. If ray tracing is not
// available src is copied to dst unmodified. If resources have not been
// allocated yet the frame is skipped and dst is left untouched.
func (c *Controller) RenderImage(src image.Image, dst draw.Image, camera *scene.Camera, sc *scene.Scene) error {
	if !c.enabled() {
		return ErrNotEnabled
	}
	if camera == nil {
		return ErrCameraNotDefined
	}
	if dst == nil {
		return ErrSurfaceNotDefined
	}

	c.frameIndex++

	cameraTransform := camera.CameraToWorld()
	limits := c.options.bounceLimits()
	if c.inputsChanged(cameraTransform, limits) {
		c.resetAccumulation()
	}

	if reason := c.degradedReason(); reason != NotDegraded {
		c.reportDegraded(reason)
		c.stats.PassThroughFrames++
		return passThrough(src, dst)
	}
	if c.degraded != NotDegraded {
		c.logger.Info("ray tracing available; resuming progressive rendering")
		c.degraded = NotDegraded
	}

	if !c.res.ready() || c.viewport.Empty() {
		c.stats.SkippedFrames++
		return nil
	}
	if sc == nil {
		return ErrSceneNotDefined
	}

	start := time.Now()
	if err := c.renderPass(camera, sc); err != nil {
		return err
	}
	if err := c.backend.Blit(c.res.output, dst); err != nil {
		return fmt.Errorf("%w: blit: %v", ErrRenderPass, err)
	}
	c.stats.RenderTime = time.Since(start)
	c.stats.RenderedFrames++

	c.accumulationStep++
	c.state = Rendering
	c.lastCameraTransform = cameraTransform
	c.lastBounceLimits = limits
	return nil
}

// Get render statistics.
func (c *Controller) Stats() FrameStats {
	stats := c.stats
	stats.State = c.state
	stats.AccumulationStep = c.accumulationStep
	stats.FrameIndex = c.frameIndex
	stats.Width = c.res.width
	stats.Height = c.res.height
	stats.Degraded = c.degraded
	stats.Allocations = c.res.allocations
	stats.Releases = c.res.releases
	return stats
}

func (c *Controller) enabled() bool {
	return c.state == Ready || c.state == Rendering
}

func (c *Controller) ensureResources(viewport Viewport) error {
	if err := c.res.ensureAccelerationStructure(); err != nil {
		return err
	}

	// Keep the current buffer around while the viewport has no pixels
	// (e.g. a minimized window); rendering resumes once it is restored.
	c.viewport = viewport
	if viewport.Empty() {
		return nil
	}

	resized, err := c.res.ensureOutputBuffer(viewport.Width, viewport.Height)
	if err != nil {
		return err
	}
	if resized {
		c.resetAccumulation()
	}
	return nil
}

// Compare the inputs against the snapshot of the last render pass field by field.
func (c *Controller) inputsChanged(cameraTransform types.Mat4, limits BounceLimits) bool {
	return !cameraTransform.Equal(c.lastCameraTransform) ||
		limits.Opaque != c.lastBounceLimits.Opaque ||
		limits.Transparent != c.lastBounceLimits.Transparent
}

func (c *Controller) resetAccumulation() {
	c.accumulationStep = 0
	if c.state == Rendering {
		c.state = Ready
	}
}

func (c *Controller) degradedReason() DegradedReason {
	if !c.hwSupport {
		return NoHardwareSupport
	}
	if c.options.Program == nil {
		return NoProgram
	}
	return NotDegraded
}

// Log the reason for passing frames through the first time it occurs.
func (c *Controller) reportDegraded(reason DegradedReason) {
	c.degraded = reason
	if c.reported[reason] {
		return
	}
	c.logger.Warningf("%s; passing frames through unmodified", reason)
	c.reported[reason] = true
}

// Rebuild the acceleration structure, bind the pass parameters and trace
// one ray per output pixel.
func (c *Controller) renderPass(camera *scene.Camera, sc *scene.Scene) error {
	prog := c.options.Program
	width, height := c.res.width, c.res.height

	if err := c.backend.Rebuild(c.res.accelStructure, sc); err != nil {
		return fmt.Errorf("%w: rebuilding acceleration structure: %v", ErrRenderPass, err)
	}
	if err := c.backend.SelectPass(prog, PathTracingPass); err != nil {
		return fmt.Errorf("%w: selecting pass %q: %v", ErrRenderPass, PathTracingPass, err)
	}

	var env interface{}
	if c.options.Environment != nil {
		env = c.options.Environment
	}

	params := []struct {
		name  string
		value interface{}
	}{
		{ParamBounceCountOpaque, int32(c.options.OpaqueBounces)},
		{ParamBounceCountTransparent, int32(c.options.TransparentBounces)},
		{ParamAccelStruct, c.res.accelStructure},
		{ParamZoom, camera.Zoom()},
		{ParamAspectRatio, float32(width) / float32(height)},
		{ParamConvergenceStep, int32(c.accumulationStep)},
		{ParamFrameIndex, int32(c.frameIndex)},
		{ParamEnvTex, env},
		{ParamRadiance, c.res.output},
	}
	for _, param := range params {
		if err := c.backend.SetParameter(prog, param.name, param.value); err != nil {
			return fmt.Errorf("%w: setting %s: %v", ErrRenderPass, param.name, err)
		}
	}

	if err := c.backend.Dispatch(prog, RayGenEntryPoint, width, height, 1, camera); err != nil {
		return fmt.Errorf("%w: dispatch: %v", ErrRenderPass, err)
	}
	return nil
}

// Copy src to dst without any conversion.
func passThrough(src image.Image, dst draw.Image) error {
	if src == nil {
		return ErrSurfaceNotDefined
	}
	xdraw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), xdraw.Src, nil)
	return nil
}
