package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/tracer/software"
)

func TestSoftwareBackendConvergence(t *testing.T) {
	backend := software.New(software.DefaultOptions())
	prog, err := software.LookupProgram(software.ConvergenceDebugProgram)
	if err != nil {
		t.Fatal(err)
	}

	camera := scene.NewCamera(45)
	sc := scene.NewScene(camera)
	for _, obj := range []*scene.Object{
		{Name: "floor", Mode: scene.Static},
		{Name: "ball", Mode: scene.Dynamic, Layer: 3},
		{Name: "hidden", Mode: scene.Static, Disabled: true},
	} {
		if err := sc.AddObject(obj); err != nil {
			t.Fatal(err)
		}
	}

	opts := DefaultOptions()
	opts.Program = prog
	ctrl := NewController(backend, opts)
	if err := ctrl.Enable(camera); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Close()

	dst := image.NewRGBA(image.Rect(0, 0, 16, 8))
	frame := Frame{
		Viewport: Viewport{16, 8},
		Camera:   camera,
		Scene:    sc,
		Src:      dst,
		Dst:      dst,
	}
	for i := 0; i < 3; i++ {
		if err := ctrl.Tick(frame); err != nil {
			t.Fatal(err)
		}
	}

	pix, err := backend.ReadPixel(ctrl.res.output, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if exp := [4]float32{2, 2, 2, 2}; pix != exp {
		t.Fatalf("expected pixel %v after 3 passes over 2 instances; got %v", exp, pix)
	}

	ctrl.Close()
	if stats := backend.Stats(); stats.LiveImages != 0 || stats.LiveStructures != 0 {
		t.Fatalf("expected no live backend resources; got %d images and %d structures", stats.LiveImages, stats.LiveStructures)
	}
}

func TestSoftwareBackendEnvironmentPreview(t *testing.T) {
	envImg := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			envImg.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	backend := software.New(software.DefaultOptions())
	prog, err := software.LookupProgram(software.EnvPreviewProgram)
	if err != nil {
		t.Fatal(err)
	}

	camera := scene.NewCamera(60)
	opts := DefaultOptions()
	opts.Program = prog
	opts.Environment = texture.NewEnvironment("white", texture.FromImage(envImg))
	ctrl := NewController(backend, opts)
	if err := ctrl.Enable(camera); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Close()

	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	err = ctrl.Tick(Frame{
		Viewport: Viewport{8, 8},
		Camera:   camera,
		Scene:    scene.NewScene(camera),
		Src:      src,
		Dst:      dst,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := dst.RGBAAt(4, 4); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected a white pixel; got %v", got)
	}
}
