package renderer

import (
	"errors"
	"fmt"
	"image/draw"

	"github.com/achilleasa/rtpreview/scene"
	"github.com/achilleasa/rtpreview/tracer"
)

type mockProgram string

func (p mockProgram) Name() string { return string(p) }

type dispatchCall struct {
	prog       string
	entryPoint string
	width      uint32
	height     uint32
	depth      uint32
	params     map[string]interface{}
	pass       string
}

// A backend that records every call and keeps track of live handles.
type mockBackend struct {
	hwSupport bool

	failAccelStruct bool
	failImage       bool
	failDispatch    bool

	lastHandle tracer.Handle
	live       map[tracer.Handle]string

	imageDescs []tracer.ImageDescriptor
	releases   []tracer.Handle
	rebuilds   int
	blits      int
	dispatches []dispatchCall

	pass   string
	params map[string]interface{}
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		hwSupport: true,
		live:      make(map[tracer.Handle]string),
		params:    make(map[string]interface{}),
	}
}

func (b *mockBackend) Name() string          { return "mock" }
func (b *mockBackend) HardwareSupport() bool { return b.hwSupport }

func (b *mockBackend) CreateAccelerationStructure(tracer.AccelerationStructureSettings) (tracer.AccelerationStructure, error) {
	if b.failAccelStruct {
		return tracer.NullAccelerationStructure, errors.New("out of device memory")
	}
	b.lastHandle++
	b.live[b.lastHandle] = "accel"
	return tracer.AccelerationStructure(b.lastHandle), nil
}

func (b *mockBackend) Rebuild(as tracer.AccelerationStructure, _ *scene.Scene) error {
	if _, ok := b.live[tracer.Handle(as)]; !ok {
		return fmt.Errorf("unknown acceleration structure %d", as)
	}
	b.rebuilds++
	return nil
}

func (b *mockBackend) SelectPass(_ tracer.Program, pass string) error {
	b.pass = pass
	return nil
}

func (b *mockBackend) SetParameter(_ tracer.Program, name string, value interface{}) error {
	b.params[name] = value
	return nil
}

func (b *mockBackend) Dispatch(prog tracer.Program, entryPoint string, width, height, depth uint32, _ *scene.Camera) error {
	if b.failDispatch {
		return errors.New("device lost")
	}
	params := make(map[string]interface{}, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	b.dispatches = append(b.dispatches, dispatchCall{
		prog:       prog.Name(),
		entryPoint: entryPoint,
		width:      width,
		height:     height,
		depth:      depth,
		params:     params,
		pass:       b.pass,
	})
	return nil
}

func (b *mockBackend) CreateImage(desc tracer.ImageDescriptor) (tracer.Image, error) {
	if b.failImage {
		return tracer.NullImage, errors.New("out of device memory")
	}
	b.lastHandle++
	b.live[b.lastHandle] = "image"
	b.imageDescs = append(b.imageDescs, desc)
	return tracer.Image{Handle: b.lastHandle, Desc: desc}, nil
}

func (b *mockBackend) Release(handle tracer.Handle) {
	if _, ok := b.live[handle]; !ok {
		return
	}
	delete(b.live, handle)
	b.releases = append(b.releases, handle)
}

func (b *mockBackend) Blit(src tracer.Image, _ draw.Image) error {
	if _, ok := b.live[src.Handle]; !ok {
		return fmt.Errorf("unknown image %d", src.Handle)
	}
	b.blits++
	return nil
}

func (b *mockBackend) lastDispatch() dispatchCall {
	return b.dispatches[len(b.dispatches)-1]
}
