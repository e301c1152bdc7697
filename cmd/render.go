package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/achilleasa/rtpreview/config"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/achilleasa/rtpreview/renderer/interactive"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/tracer/software"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// A renderer session bound to the software backend.
type session struct {
	settings config.Settings
	backend  *software.Backend
	scene    *scene.Scene
	ctrl     *renderer.Controller
}

func setupSession(ctx *cli.Context) (*session, error) {
	s, err := loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	setupLogging(ctx, s.Level())

	opts, err := s.ToOptions()
	if err != nil {
		return nil, err
	}

	sc, err := setupScene(ctx)
	if err != nil {
		return nil, err
	}

	backendOpts := software.DefaultOptions()
	backendOpts.HardwareSupport = !ctx.Bool("no-hw")
	backendOpts.Exposure = s.Exposure
	backendOpts.Workers = ctx.Int("workers")
	backend := software.New(backendOpts)

	ctrl := renderer.NewController(backend, opts)
	if err = ctrl.Enable(sc.Camera); err != nil {
		return nil, err
	}

	return &session{
		settings: s,
		backend:  backend,
		scene:    sc,
		ctrl:     ctrl,
	}, nil
}

// Render a still frame by running a fixed number of progressive ticks.
func RenderFrame(ctx *cli.Context) error {
	sess, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer sess.ctrl.Close()

	frameW, frameH := ctx.Int("width"), ctx.Int("height")
	if frameW <= 0 || frameH <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", frameW, frameH)
	}
	ticks := ctx.Int("ticks")
	if ticks <= 0 {
		return fmt.Errorf("invalid tick count %d", ticks)
	}

	frame := renderer.Frame{
		Viewport: renderer.Viewport{Width: uint32(frameW), Height: uint32(frameH)},
		Camera:   sess.scene.Camera,
		Scene:    sess.scene,
		Src:      interactive.Background(frameW, frameH),
		Dst:      image.NewRGBA(image.Rect(0, 0, frameW, frameH)),
	}

	logger.Noticef("rendering %dx%d frame with %d ticks", frameW, frameH, ticks)
	start := time.Now()
	for tick := 0; tick < ticks; tick++ {
		if err = sess.ctrl.Tick(frame); err != nil {
			return err
		}
	}
	logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1000000)

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = png.Encode(f, frame.Dst); err != nil {
		return fmt.Errorf("error encoding png file: %s", err.Error())
	}
	logger.Noticef("wrote frame to %s", imgFile)

	displayFrameStats(sess.ctrl.Stats(), sess.backend.Stats())
	return nil
}

// Open a window that progressively refines the preview while the camera
// is moved around.
func RenderInteractive(ctx *cli.Context) error {
	sess, err := setupSession(ctx)
	if err != nil {
		return err
	}
	defer sess.ctrl.Close()

	winOpts := interactive.Options{
		Width:  uint32(ctx.Int("width")),
		Height: uint32(ctx.Int("height")),
		Title:  "rtpreview",
	}

	if path := ctx.String("config"); path != "" {
		watcher, err := config.Watch(path)
		if err != nil {
			return err
		}
		defer watcher.Close()

		winOpts.Settings = watcher.Changes()
		winOpts.ApplySettings = func(s config.Settings) error {
			return sess.apply(ctx, s)
		}
	}

	win, err := interactive.New(sess.ctrl, sess.scene, winOpts)
	if err != nil {
		return err
	}
	defer win.Close()

	err = win.Run()
	displayFrameStats(sess.ctrl.Stats(), sess.backend.Stats())
	return err
}

// Apply reloaded settings and restart accumulation.
func (sess *session) apply(ctx *cli.Context, s config.Settings) error {
	s = applyFlagOverrides(ctx, s)
	if err := s.Validate(); err != nil {
		return err
	}

	opts, err := s.ToOptions()
	if err != nil {
		return err
	}

	setupLogging(ctx, s.Level())
	sess.backend.SetExposure(s.Exposure)
	sess.ctrl.SetOptions(opts)
	sess.ctrl.RestartAccumulation()
	sess.settings = s
	return nil
}

func displayFrameStats(stats renderer.FrameStats, backendStats software.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"State", "Samples", "Output", "Rendered", "Passed through", "Skipped", "Render time"})

	degraded := ""
	if stats.Degraded != renderer.NotDegraded {
		degraded = fmt.Sprintf(" (%s)", stats.Degraded)
	}
	table.Append([]string{
		stats.State.String() + degraded,
		fmt.Sprintf("%d", stats.AccumulationStep),
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.RenderedFrames),
		fmt.Sprintf("%d", stats.PassThroughFrames),
		fmt.Sprintf("%d", stats.SkippedFrames),
		fmt.Sprintf("%s", stats.RenderTime),
	})
	table.SetFooter([]string{"", "", "", "", "DISPATCHES", fmt.Sprintf("%d", backendStats.Dispatches), fmt.Sprintf("%s", backendStats.DispatchTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
