package software

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/scene"
)

func TestEnvPreviewRunningMean(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	env := texture.NewEnvironment("white", texture.FromImage(img))

	b := New(DefaultOptions())
	prog, _ := LookupProgram(EnvPreviewProgram)
	b.SelectPass(prog, PathTracingPass)
	out, _ := b.CreateImage(rgbaDesc(4, 4))
	cam := scene.NewCamera(60)

	b.SetParameter(prog, "g_Radiance", out)
	b.SetParameter(prog, "g_Zoom", cam.Zoom())
	b.SetParameter(prog, "g_AspectRatio", float32(1))

	// Accumulating a constant environment converges to that constant
	for step := 0; step < 4; step++ {
		b.SetParameter(prog, "g_ConvergenceStep", step)
		b.SetParameter(prog, "g_FrameIndex", step)
		b.SetParameter(prog, "g_EnvTex", env)
		if err := b.Dispatch(prog, RayGenEntryPoint, 4, 4, 1, cam); err != nil {
			t.Fatal(err)
		}
	}
	pix, _ := b.ReadPixel(out, 2, 2)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(pix[i]-1)) > 1e-5 {
			t.Fatalf("expected accumulated radiance of 1; got %v", pix)
		}
	}

	// A zero step discards stale accumulation even with no environment bound
	b.SetParameter(prog, "g_ConvergenceStep", 0)
	b.SetParameter(prog, "g_EnvTex", nil)
	if err := b.Dispatch(prog, RayGenEntryPoint, 4, 4, 1, cam); err != nil {
		t.Fatal(err)
	}
	pix, _ = b.ReadPixel(out, 2, 2)
	if pix != [4]float32{0, 0, 0, 1} {
		t.Fatalf("expected accumulation to restart from black; got %v", pix)
	}
}
