package tracer

import (
	"testing"

	"github.com/achilleasa/rtpreview/scene"
)

func TestSettingsIncludes(t *testing.T) {
	type spec struct {
		settings AccelerationStructureSettings
		obj      *scene.Object
		exp      bool
	}
	everything := AccelerationStructureSettings{ModeMask: IncludeEverything, LayerMask: 0xFF}
	specs := []spec{
		{everything, &scene.Object{Layer: 0, Mode: scene.Static}, true},
		{everything, &scene.Object{Layer: 7, Mode: scene.Dynamic}, true},
		{everything, &scene.Object{Layer: 3, Mode: scene.Dynamic, Disabled: true}, false},
		{everything, nil, false},
		{AccelerationStructureSettings{ModeMask: IncludeStatic, LayerMask: 0xFF}, &scene.Object{Mode: scene.Dynamic}, false},
		{AccelerationStructureSettings{ModeMask: IncludeEverything, LayerMask: 1 << 2}, &scene.Object{Layer: 1, Mode: scene.Static}, false},
		{AccelerationStructureSettings{ModeMask: IncludeEverything, LayerMask: 1 << 2}, &scene.Object{Layer: 2, Mode: scene.Static}, true},
	}

	for index, s := range specs {
		if got := s.settings.Includes(s.obj); got != s.exp {
			t.Fatalf("[spec %d] expected Includes to return %t; got %t", index, s.exp, got)
		}
	}
}

func TestImageIsNull(t *testing.T) {
	if !NullImage.IsNull() {
		t.Fatal("expected NullImage to be null")
	}
	if (Image{Handle: 1}).IsNull() {
		t.Fatal("expected image with a handle to be live")
	}
	if FormatRGBA32F.PixelSize() != 16 {
		t.Fatalf("expected RGBA32F pixel size to be 16; got %d", FormatRGBA32F.PixelSize())
	}
}
