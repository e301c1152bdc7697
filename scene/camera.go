package scene

import (
	"math"

	"github.com/achilleasa/rtpreview/types"
)

// The direction of camera movement.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	// Camera-to-world transform; refreshed by Update.
	ViewMat types.Mat4

	// Vertical field of view in degrees.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
	c.Update()
	return c
}

// Get the tangent of half the vertical field of view.
func (c *Camera) Zoom() float32 {
	return float32(math.Tan(float64(c.FOV) * math.Pi / 180.0 * 0.5))
}

// Get the camera-to-world transform.
func (c *Camera) CameraToWorld() types.Mat4 {
	return c.ViewMat
}

// Update camera. Any pending pitch/yaw is applied to the look-at point and
// then cleared.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up).Normalize()
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir)
	c.Pitch, c.Yaw = 0, 0

	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}

// Move the camera along the given direction.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	fwd := c.LookAt.Sub(c.Position).Normalize()
	var delta types.Vec3
	switch dir {
	case Forward:
		delta = fwd.Mul(amount)
	case Backward:
		delta = fwd.Mul(-amount)
	case Left:
		delta = c.Up.Cross(fwd).Normalize().Mul(amount)
	case Right:
		delta = fwd.Cross(c.Up).Normalize().Mul(amount)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}
