package texture

import (
	"fmt"
	"math"

	"github.com/achilleasa/rtpreview/asset"
	"github.com/achilleasa/rtpreview/types"
)

// Environment map layouts.
type Layout uint8

const (
	// A single latitude/longitude image.
	Equirectangular Layout = iota

	// Six square faces stored left to right in +X, -X, +Y, -Y, +Z, -Z order.
	CubeStrip
)

func (l Layout) String() string {
	switch l {
	case Equirectangular:
		return "equirectangular"
	case CubeStrip:
		return "cube strip"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// An environment map used as background and lighting.
type Environment struct {
	Name   string
	Layout Layout

	tex *Texture
}

// Load an environment map. The layout is detected from the image aspect
// ratio: a 6:1 image is treated as a cube strip.
func LoadEnvironment(pathToImage string) (*Environment, error) {
	res, err := asset.NewResource(pathToImage, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	tex, err := New(res)
	if err != nil {
		return nil, err
	}

	return NewEnvironment(res.Path(), tex), nil
}

// Wrap a texture as an environment map.
func NewEnvironment(name string, tex *Texture) *Environment {
	layout := Equirectangular
	if tex.Width == 6*tex.Height {
		layout = CubeStrip
	}
	return &Environment{
		Name:   name,
		Layout: layout,
		tex:    tex,
	}
}

// Get the dimensions of the backing texture.
func (e *Environment) Size() (uint32, uint32) {
	return e.tex.Width, e.tex.Height
}

// Sample the radiance arriving from the given world-space direction.
func (e *Environment) Sample(dir types.Vec3) types.Vec3 {
	dir = dir.Normalize()

	var texel [4]float32
	switch e.Layout {
	case CubeStrip:
		face, u, v := cubeFaceUV(dir)
		texel = e.tex.Texel((float32(face)+u)/6.0, v)
	default:
		u := 0.5 + float32(math.Atan2(float64(dir[0]), float64(-dir[2])))/(2*math.Pi)
		v := float32(math.Acos(clamp(float64(dir[1]), -1, 1))) / math.Pi
		texel = e.tex.Texel(u, v)
	}

	return types.XYZ(texel[0], texel[1], texel[2])
}

// Map a direction to a cube face index and face-local uv coordinates.
func cubeFaceUV(dir types.Vec3) (int, float32, float32) {
	x, y, z := dir[0], dir[1], dir[2]
	ax, ay, az := abs(x), abs(y), abs(z)

	var face int
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if x > 0 {
			face, sc, tc = 0, -z, -y
		} else {
			face, sc, tc = 1, z, -y
		}
	case ay >= az:
		ma = ay
		if y > 0 {
			face, sc, tc = 2, x, z
		} else {
			face, sc, tc = 3, x, -z
		}
	default:
		ma = az
		if z > 0 {
			face, sc, tc = 4, x, -y
		} else {
			face, sc, tc = 5, -x, -y
		}
	}

	if ma == 0 {
		return 4, 0.5, 0.5
	}
	return face, faceCoord(sc / ma), faceCoord(tc / ma)
}

// Largest face-local coordinate; keeps edge lookups on their own face of
// the strip.
const maxFaceCoord float32 = 1 - 1e-6

// Map a [-1, 1] face coordinate to [0, maxFaceCoord].
func faceCoord(c float32) float32 {
	c = (c + 1) * 0.5
	if c < 0 {
		return 0
	}
	if c > maxFaceCoord {
		return maxFaceCoord
	}
	return c
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
