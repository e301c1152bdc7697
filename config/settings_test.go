package config

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/achilleasa/rtpreview/tracer/software"
)

func TestDecode(t *testing.T) {
	type spec struct {
		doc    string
		exp    Settings
		expErr bool
	}
	def := Default()
	specs := []spec{
		{"", def, false},
		{
			"opaque_bounces = 12\ntransparent_bounces = 3\nprogram = \"convergence-debug\"\nexposure = 2.5\nlog_level = \"debug\"",
			Settings{OpaqueBounces: 12, TransparentBounces: 3, Program: software.ConvergenceDebugProgram, Exposure: 2.5, LogLevel: "debug"},
			false,
		},
		{"opaque_bounze = 3", Settings{}, true},
		{"log_level = \"loud\"", Settings{}, true},
		{"exposure = -1.0", Settings{}, true},
		{"opaque_bounces = \"many\"", Settings{}, true},
	}

	for index, s := range specs {
		got, err := Decode(strings.NewReader(s.doc))
		if s.expErr {
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("[spec %d] expected ErrInvalidSettings; got %v", index, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected settings %+v; got %+v", index, s.exp, got)
		}
	}
}

func TestToOptions(t *testing.T) {
	s := Default()
	s.OpaqueBounces = 0
	s.TransparentBounces = 500

	opts, err := s.ToOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OpaqueBounces != renderer.MinBounces || opts.TransparentBounces != renderer.MaxBounces {
		t.Fatalf("expected bounces to be clamped; got %d and %d", opts.OpaqueBounces, opts.TransparentBounces)
	}
	if opts.Program == nil || opts.Program.Name() != software.EnvPreviewProgram {
		t.Fatalf("expected program %q; got %v", software.EnvPreviewProgram, opts.Program)
	}
	if opts.Environment != nil {
		t.Fatal("expected no environment")
	}

	s.Program = ""
	if opts, err = s.ToOptions(); err != nil || opts.Program != nil {
		t.Fatalf("expected no program and no error; got %v, %v", opts.Program, err)
	}

	s.Program = "no-such-program"
	if _, err = s.ToOptions(); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings; got %v", err)
	}
}

func TestLoadResolvesEnvironment(t *testing.T) {
	dir := t.TempDir()
	writePng(t, filepath.Join(dir, "sky.png"), 8, 4)
	cfgPath := filepath.Join(dir, "settings.toml")
	writeFile(t, cfgPath, "environment = \"sky.png\"\nlog_level = \"warning\"\n")

	s, err := Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if exp := filepath.Join(dir, "sky.png"); s.EnvironmentPath() != exp {
		t.Fatalf("expected environment path %q; got %q", exp, s.EnvironmentPath())
	}
	if s.Level() != log.Warning {
		t.Fatalf("expected warning level; got %d", s.Level())
	}

	opts, err := s.ToOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Environment == nil {
		t.Fatal("expected environment to be loaded")
	}
	if w, h := opts.Environment.Size(); w != 8 || h != 4 {
		t.Fatalf("expected 8x4 environment; got %dx%d", w, h)
	}

	if _, err = Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.toml")
	writeFile(t, cfgPath, "opaque_bounces = 5\n")

	w, err := Watch(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Unrelated files in the same dir are ignored; broken edits are skipped
	writeFile(t, filepath.Join(dir, "other.toml"), "opaque_bounces = 99\n")
	writeFile(t, cfgPath, "opaque_bounces = [\n")
	writeFile(t, cfgPath, "opaque_bounces = 42\n")

	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-w.Changes():
			if s.OpaqueBounces == 42 {
				return
			}
			if s.OpaqueBounces != 5 {
				t.Fatalf("expected only settings.toml changes to be reported; got opaque bounces %d", s.OpaqueBounces)
			}
		case <-timeout:
			t.Fatal("timed out waiting for settings reload")
		}
	}
}

func TestWatchClose(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "settings.toml")
	writeFile(t, cfgPath, "")

	w, err := Watch(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Fatal("expected changes channel to be closed")
	}
}

func writeFile(t *testing.T, path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writePng(t *testing.T, path string, w, h int) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err = png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
