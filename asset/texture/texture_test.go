package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/achilleasa/rtpreview/asset"
	"github.com/achilleasa/rtpreview/types"
)

func TestPngTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 0, 0, 0})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := New(asset.NewResourceFromStream("mem.png", &buf))
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 2x1; got %dx%d", tex.Width, tex.Height)
	}

	expLen := 8
	if len(tex.Data) != expLen {
		t.Fatalf("expected tex data len to be %d; got %d", expLen, len(tex.Data))
	}

	if texel := tex.Texel(0.1, 0.5); texel != [4]float32{1, 0, 0, 1} {
		t.Fatalf("expected first texel to be opaque red; got %v", texel)
	}
	if texel := tex.Texel(0.9, 0.5); texel[3] != 0 {
		t.Fatalf("expected second texel to be transparent; got %v", texel)
	}
}

func TestBmpTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := New(asset.NewResourceFromStream("mem.bmp", &buf))
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 4 || tex.Height != 4 {
		t.Fatalf("expected tex dims to be 4x4; got %dx%d", tex.Width, tex.Height)
	}
}

func TestUnsupportedTexture(t *testing.T) {
	_, err := New(asset.NewResourceFromStream("mem.txt", bytes.NewBufferString("not an image")))
	if err == nil {
		t.Fatal("expected an error decoding a non-image payload")
	}
}

func TestEquirectangularEnvironment(t *testing.T) {
	tex := FromImage(solidImage(8, 4, color.RGBA{255, 255, 255, 255}))
	env := NewEnvironment("white", tex)

	if env.Layout != Equirectangular {
		t.Fatalf("expected layout to be %s; got %s", Equirectangular, env.Layout)
	}

	sample := env.Sample(types.XYZ(0, 0, -1))
	for i := 0; i < 3; i++ {
		if math.Abs(float64(sample[i]-1)) > 1e-6 {
			t.Fatalf("expected white sample; got %v", sample)
		}
	}
}

func TestCubeStripEnvironment(t *testing.T) {
	faceColors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, 24, 4))
	for face, c := range faceColors {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.Set(face*4+x, y, c)
			}
		}
	}
	env := NewEnvironment("strip", FromImage(img))
	if env.Layout != CubeStrip {
		t.Fatalf("expected layout to be %s; got %s", CubeStrip, env.Layout)
	}

	dirs := []types.Vec3{
		types.XYZ(1, 0, 0),
		types.XYZ(-1, 0, 0),
		types.XYZ(0, 1, 0),
		types.XYZ(0, -1, 0),
		types.XYZ(0, 0, 1),
		types.XYZ(0, 0, -1),
	}
	for face, dir := range dirs {
		sample := env.Sample(dir)
		c := faceColors[face]
		exp := types.XYZ(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
		for i := 0; i < 3; i++ {
			if math.Abs(float64(sample[i]-exp[i])) > 1e-6 {
				t.Fatalf("[face %d] expected sample %v; got %v", face, exp, sample)
			}
		}
	}
}

func TestCubeStripFaceEdges(t *testing.T) {
	faceColors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, 24, 4))
	for face, c := range faceColors {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.Set(face*4+x, y, c)
			}
		}
	}
	env := NewEnvironment("strip", FromImage(img))

	type spec struct {
		dir  types.Vec3
		face int
	}
	// Directions on the edge shared by two faces map to u == 1 on the
	// selected face
	specs := []spec{
		{types.XYZ(1, 0, -1), 0},
		{types.XYZ(-1, 0, 1), 1},
		{types.XYZ(1, 1, 0), 0},
		{types.XYZ(-1, 0, -1), 1},
	}
	for index, s := range specs {
		sample := env.Sample(s.dir)
		c := faceColors[s.face]
		exp := types.XYZ(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
		for i := 0; i < 3; i++ {
			if math.Abs(float64(sample[i]-exp[i])) > 1e-6 {
				t.Fatalf("[spec %d] expected sample from face %d %v; got %v", index, s.face, exp, sample)
			}
		}
	}

	for _, c := range []float32{-2, -1, 0, 1, 2} {
		if got := faceCoord(c); got < 0 || got >= 1 {
			t.Fatalf("expected face coordinate for %f to be in [0, 1); got %f", c, got)
		}
	}
}

func TestLoadEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err = png.Encode(f, solidImage(4, 2, color.RGBA{0, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	f.Close()

	env, err := LoadEnvironment(path)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := env.Size(); w != 4 || h != 2 {
		t.Fatalf("expected env dims to be 4x2; got %dx%d", w, h)
	}

	if _, err = LoadEnvironment(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected an error loading a missing environment map")
	}
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
