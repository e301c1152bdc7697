package interactive

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/achilleasa/rtpreview/config"
	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/types"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05

	// Height in pixels of the frame time overlay
	overlayHeight uint32 = 20
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1
)

// glfw calls must be made from the main thread.
func init() {
	runtime.LockOSThread()
}

// Window options.
type Options struct {
	Width  uint32
	Height uint32
	Title  string

	// Reloaded settings; may be nil.
	Settings <-chan config.Settings

	// Invoked between ticks for each settings reload.
	ApplySettings func(config.Settings) error
}

// An interactive opengl window that drives a renderer.Controller once per
// displayed frame.
type Window struct {
	logger log.Logger
	ctrl   *renderer.Controller
	opts   Options

	camera *scene.Camera
	scene  *scene.Scene

	// opengl handles
	window *glfw.Window
	tex    uint32
	texFbo uint32

	// Host surfaces. The background stands in for the rasterized frame
	// and is displayed whenever ray tracing is unavailable.
	background *image.RGBA
	surface    *image.RGBA

	// state
	lastCursorPos types.Vec2
	mousePressed  [2]bool

	// Display options
	showUI     bool
	frameTimes *frameHistory
}

// Create a new window. The controller must already be enabled for the
// scene camera.
func New(ctrl *renderer.Controller, sc *scene.Scene, opts Options) (*Window, error) {
	if sc == nil || sc.Camera == nil {
		return nil, renderer.ErrCameraNotDefined
	}
	if opts.Title == "" {
		opts.Title = "rtpreview"
	}

	w := &Window{
		logger: log.New("interactive"),
		ctrl:   ctrl,
		opts:   opts,
		camera: sc.Camera,
		scene:  sc,
	}

	if err := w.initGL(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Destroy the window. The controller is not closed.
func (w *Window) Close() {
	if w.window != nil {
		if w.texFbo != 0 {
			gl.DeleteFramebuffers(1, &w.texFbo)
			w.texFbo = 0
		}
		if w.tex != 0 {
			gl.DeleteTextures(1, &w.tex)
			w.tex = 0
		}
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
}

func (w *Window) initGL() error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	w.window, err = glfw.CreateWindow(int(w.opts.Width), int(w.opts.Height), w.opts.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	w.window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data; storage is allocated by resizeSurfaces
	gl.GenTextures(1, &w.tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &w.texFbo)

	// Bind event callbacks
	w.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	w.window.SetKeyCallback(w.onKeyEvent)
	w.window.SetMouseButtonCallback(w.onMouseEvent)
	w.window.SetCursorPosCallback(w.onCursorPosEvent)

	fbW, fbH := w.window.GetFramebufferSize()
	w.resizeSurfaces(max(fbW, 1), max(fbH, 1))

	return nil
}

// Run the frame loop until the window is closed or a tick fails.
func (w *Window) Run() error {
	for !w.window.ShouldClose() {
		glfw.PollEvents()
		w.applySettings()

		fbW, fbH := w.window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			// Minimized; let the controller skip the frame
			fbW, fbH = 0, 0
		} else {
			w.resizeSurfaces(fbW, fbH)
		}

		start := time.Now()
		err := w.ctrl.Tick(renderer.Frame{
			Viewport: renderer.Viewport{Width: uint32(fbW), Height: uint32(fbH)},
			Input:    renderer.Input{Restart: w.window.GetKey(glfw.KeySpace) == glfw.Press},
			Camera:   w.camera,
			Scene:    w.scene,
			Src:      w.background,
			Dst:      w.surface,
		})
		if err != nil {
			return err
		}
		tickTime := time.Since(start)

		if fbW == 0 {
			continue
		}

		w.present(fbW, fbH)

		// Display frame time split
		if w.showUI {
			w.renderUI(fbW, fbH, tickTime)
		}

		w.window.SwapBuffers()
	}
	return nil
}

// Upload the host surface and blit it to the default framebuffer.
func (w *Window) present(fbW, fbH int) {
	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(fbW), int32(fbH), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(w.surface.Pix))

	// Surface rows are stored top to bottom; flip while blitting
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
	gl.BlitFramebuffer(0, 0, int32(fbW), int32(fbH), 0, int32(fbH), int32(fbW), 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}

// Reallocate host surfaces and texture storage if the framebuffer size changed.
func (w *Window) resizeSurfaces(fbW, fbH int) {
	if w.surface != nil && w.surface.Rect.Dx() == fbW && w.surface.Rect.Dy() == fbH {
		return
	}

	w.logger.Debugf("framebuffer resized to %dx%d", fbW, fbH)
	w.surface = image.NewRGBA(image.Rect(0, 0, fbW, fbH))
	w.background = Background(fbW, fbH)

	gl.BindTexture(gl.TEXTURE_2D, w.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(fbW), int32(fbH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, w.tex, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Setup ortho projection for UI bits
	gl.Disable(gl.DEPTH_TEST)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(fbW), float64(fbH), 0, -1, 1)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	w.frameTimes = newFrameHistory(fbW)
}

// Apply pending settings reloads between ticks.
func (w *Window) applySettings() {
	if w.opts.Settings == nil || w.opts.ApplySettings == nil {
		return
	}

	for {
		select {
		case s, ok := <-w.opts.Settings:
			if !ok {
				w.opts.Settings = nil
				return
			}
			if err := w.opts.ApplySettings(s); err != nil {
				w.logger.Warningf("could not apply settings: %v", err)
			}
		default:
			return
		}
	}
}

func (w *Window) renderUI(fbW, fbH int, tickTime time.Duration) {
	stats := w.ctrl.Stats()
	w.frameTimes.Add(tickTime, stats.RenderTime)
	if uint32(fbH) > overlayHeight {
		drawFrameHistory(w.frameTimes, fbW, uint32(fbH), overlayHeight)
	}

	w.window.SetTitle(fmt.Sprintf("%s - %s, %d spp, %dx%d", w.opts.Title, stats.State, stats.AccumulationStep, fbW, fbH))
}

func (w *Window) onKeyEvent(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		win.SetShouldClose(true)
		return
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	case glfw.KeyTab:
		if action == glfw.Press {
			w.showUI = !w.showUI
			if w.showUI {
				w.frameTimes.Clear()
			} else {
				w.window.SetTitle(w.opts.Title)
			}
		}
		return
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	w.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
}

func (w *Window) onMouseEvent(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	w.mousePressed[leftMouseButton] = false
	w.mousePressed[rightMouseButton] = false

	if action == glfw.Press {
		xPos, yPos := win.GetCursorPos()
		w.lastCursorPos[0], w.lastCursorPos[1] = float32(xPos), float32(yPos)

		buttonIndex := leftMouseButton
		if button == glfw.MouseButtonRight {
			buttonIndex = rightMouseButton
		}

		w.mousePressed[buttonIndex] = true
	}
}

func (w *Window) onCursorPosEvent(win *glfw.Window, xPos, yPos float64) {
	if !w.mousePressed[leftMouseButton] {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := w.lastCursorPos.Sub(newPos)
	delta[0] *= mouseSensitivityX
	delta[1] *= mouseSensitivityY
	w.lastCursorPos = newPos

	// The left mouse button rotates lookat around eye. The controller
	// notices the new transform on the next tick.
	w.camera.Pitch = delta[1]
	w.camera.Yaw = delta[0]
	w.camera.Update()
}

// Generate a vertical gradient used as the frame displayed when ray
// tracing is unavailable.
func Background(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		t := float32(y) / float32(height)
		c := color.RGBA{
			R: uint8(40 + 60*t),
			G: uint8(60 + 80*t),
			B: uint8(110 + 110*t),
			A: 255,
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
