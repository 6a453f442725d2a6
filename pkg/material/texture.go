package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Texture provides spatially-varying colors for materials.
// Implementations are pure functions of (uv, point) and safe for concurrent use.
type Texture interface {
	// Value returns color at given UV coordinates and 3D point
	Value(uv core.Vec2, point core.Vec3) core.Vec3

	isTexture()
}

// BumpValue returns the scalar height of a texture used as a bump map
func BumpValue(t Texture, uv core.Vec2, point core.Vec3) float64 {
	return t.Value(uv, point).Average()
}

// ConstantTexture provides a uniform color
type ConstantTexture struct {
	Color core.Vec3
}

// NewConstantTexture creates a new constant color texture
func NewConstantTexture(color core.Vec3) *ConstantTexture {
	return &ConstantTexture{Color: color}
}

// Value returns the constant color regardless of UV or position
func (c *ConstantTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	return c.Color
}

func (*ConstantTexture) isTexture() {}

// CheckerTexture alternates between two textures on a 3D grid of cells
type CheckerTexture struct {
	Repeat float64
	Odd    Texture
	Even   Texture
}

// NewCheckerTexture creates a checker with repeat cells per unit length
func NewCheckerTexture(repeat float64, odd, even Texture) *CheckerTexture {
	return &CheckerTexture{Repeat: repeat, Odd: odd, Even: even}
}

// Value picks Odd or Even by the parity of the cell containing point
func (c *CheckerTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	cell := int64(math.Floor(c.Repeat*point.X)) +
		int64(math.Floor(c.Repeat*point.Y)) +
		int64(math.Floor(c.Repeat*point.Z))
	if cell&1 != 0 {
		return c.Odd.Value(uv, point)
	}
	return c.Even.Value(uv, point)
}

func (*CheckerTexture) isTexture() {}

// NoiseTexture is gray Perlin noise remapped to [0, 1]
type NoiseTexture struct {
	Scale float64
}

// NewNoiseTexture creates a noise texture with the given spatial frequency
func NewNoiseTexture(scale float64) *NoiseTexture {
	return &NoiseTexture{Scale: scale}
}

// Value evaluates 0.5 * (1 + noise(scale * point))
func (n *NoiseTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	v := 0.5 * (1.0 + core.Noise(point.Multiply(n.Scale)))
	return core.NewVec3(v, v, v)
}

func (*NoiseTexture) isTexture() {}

// TurbulenceTexture is a gray fractal sum of noise octaves
type TurbulenceTexture struct {
	Scale float64
	Depth int
	Omega float64 // per-octave amplitude damping in [0, 1]
}

// NewTurbulenceTexture creates a turbulence texture
func NewTurbulenceTexture(scale float64, depth int, omega float64) *TurbulenceTexture {
	return &TurbulenceTexture{Scale: scale, Depth: depth, Omega: omega}
}

// Value evaluates turbulence at scale * point
func (t *TurbulenceTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	v := core.Turbulence(point.Multiply(t.Scale), t.Depth, t.Omega)
	return core.NewVec3(v, v, v)
}

func (*TurbulenceTexture) isTexture() {}

// TestTexture visualizes UV coordinates
type TestTexture struct{}

// NewTestTexture creates a UV debug texture
func NewTestTexture() *TestTexture {
	return &TestTexture{}
}

// Value maps u to red, v to green and the remaining barycentric weight to blue
func (*TestTexture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	return core.NewVec3(uv.X, uv.Y, max(0, 1-uv.X-uv.Y))
}

func (*TestTexture) isTexture() {}
