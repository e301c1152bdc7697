package scene

import "fmt"

// Mode describes how an object participates in ray tracing.
type Mode uint8

const (
	// Static objects never move once added to the scene.
	Static Mode = 1 << iota

	// Dynamic objects may be transformed between frames.
	Dynamic
)

func (m Mode) String() string {
	switch m {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// A renderable scene object. Geometry is owned by the rendering backend;
// the scene only tracks the attributes used for acceleration structure
// membership.
type Object struct {
	Name string

	// Layer index in the [0, 7] range.
	Layer uint8

	Mode Mode

	// Disabled objects are never included in an acceleration structure.
	Disabled bool
}

// The scene contents visible to the controller.
type Scene struct {
	Camera *Camera

	Objects []*Object
}

func NewScene(camera *Camera) *Scene {
	return &Scene{
		Camera:  camera,
		Objects: make([]*Object, 0),
	}
}

// Add an object to the scene.
func (s *Scene) AddObject(obj *Object) error {
	if obj == nil {
		return fmt.Errorf("scene: nil object")
	}
	if obj.Layer > 7 {
		return fmt.Errorf("scene: object %q uses invalid layer %d", obj.Name, obj.Layer)
	}
	for _, existing := range s.Objects {
		if existing == obj {
			return fmt.Errorf("scene: object %q already added", obj.Name)
		}
	}
	s.Objects = append(s.Objects, obj)
	return nil
}

// Remove an object from the scene. Returns false if the object was not found.
func (s *Scene) RemoveObject(obj *Object) bool {
	for index, existing := range s.Objects {
		if existing == obj {
			s.Objects = append(s.Objects[:index], s.Objects[index+1:]...)
			return true
		}
	}
	return false
}
