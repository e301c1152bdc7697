package texture

import (
	"fmt"
	"image"
	"math"

	// Image formats supported by image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/achilleasa/rtpreview/asset"
)

// Encoding gamma of 8/16-bit source images.
const sourceGamma = 2.2

// A texture image converted to linear RGBA float data.
type Texture struct {
	Width  uint32
	Height uint32

	// 4 floats per texel laid out row by row.
	Data []float32
}

// Decode a texture from a Resource. Any format registered with the image
// package can be used.
func New(res *asset.Resource) (*Texture, error) {
	img, imgFmt, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	tex := FromImage(img)
	if tex.Width == 0 || tex.Height == 0 {
		return nil, fmt.Errorf("texture: %s image %s has no pixels", imgFmt, res.Path())
	}
	return tex, nil
}

// Convert an image to a linear float texture.
func FromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Data:   make([]float32, 4*bounds.Dx()*bounds.Dy()),
	}

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			tex.Data[offset] = toLinear(r)
			tex.Data[offset+1] = toLinear(g)
			tex.Data[offset+2] = toLinear(b)
			tex.Data[offset+3] = float32(a) / 0xffff
			offset += 4
		}
	}

	return tex
}

// Fetch the texel closest to the normalized (u, v) coordinates.
func (t *Texture) Texel(u, v float32) [4]float32 {
	x := clampIndex(int(u*float32(t.Width)), int(t.Width))
	y := clampIndex(int(v*float32(t.Height)), int(t.Height))
	offset := 4 * (y*int(t.Width) + x)
	return [4]float32{t.Data[offset], t.Data[offset+1], t.Data[offset+2], t.Data[offset+3]}
}

func toLinear(c uint32) float32 {
	return float32(math.Pow(float64(c)/0xffff, sourceGamma))
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}
