package types

import "golang.org/x/image/math/f32"

// A 4x4 matrix in row major order.
type Mat4 f32.Mat4

// Create a 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Build a camera-to-world transform for an eye located at eye looking at
// center. The camera looks down its local -Z axis; columns hold the
// right, up and back axes followed by the eye position.
func LookAtV(eye, center, up Vec3) Mat4 {
	back := eye.Sub(center).Normalize()
	right := up.Cross(back).Normalize()
	camUp := back.Cross(right)

	return Mat4{
		right[0], camUp[0], back[0], eye[0],
		right[1], camUp[1], back[1], eye[1],
		right[2], camUp[2], back[2], eye[2],
		0, 0, 0, 1,
	}
}

// Multiply matrix with a column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// Transform a direction vector (w = 0).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Get the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Compare two matrices element by element. No epsilon is applied; any
// difference, however small, reports the matrices as different.
func (m Mat4) Equal(m2 Mat4) bool {
	for i := range m {
		if m[i] != m2[i] {
			return false
		}
	}
	return true
}
