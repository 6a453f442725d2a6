package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ImageTexture provides color from a decoded 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], row 0 at the top
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Value samples the texture at given UV coordinates with bilinear filtering.
// UVs are clamped to [0, 1]; v=0 is the bottom row of the image.
func (t *ImageTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}

	u := core.Clamp(uv.X, 0, 1)
	v := core.Clamp(uv.Y, 0, 1)

	// Continuous pixel coordinates with texel centers at half-integers
	x := u*float64(t.Width) - 0.5
	y := (1.0-v)*float64(t.Height) - 0.5

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	top := c00.Multiply(1 - fx).Add(c10.Multiply(fx))
	bottom := c01.Multiply(1 - fx).Add(c11.Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

// texel returns the pixel at (x, y) with edge clamping
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = core.Clamp(x, 0, t.Width-1)
	y = core.Clamp(y, 0, t.Height-1)
	return t.Pixels[y*t.Width+x]
}

func (*ImageTexture) isTexture() {}
