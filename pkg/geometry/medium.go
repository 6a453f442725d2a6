package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ConstantMedium is a homogeneous participating medium filling a closed boundary shape
type ConstantMedium struct {
	Boundary Shape
	Density  float64
	Phase    *material.Isotropic
}

// NewConstantMedium creates a medium of the given density inside boundary
func NewConstantMedium(boundary Shape, density float64, phase *material.Isotropic) (*ConstantMedium, error) {
	if density <= 0 {
		return nil, errors.Errorf("medium density must be positive, got %g", density)
	}
	return &ConstantMedium{Boundary: boundary, Density: density, Phase: phase}, nil
}

// Hit samples an exponential free-flight distance through the boundary and reports a
// scattering event if it falls inside the medium
func (m *ConstantMedium) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	if sampler == nil {
		return nil, false
	}

	entry, ok := m.Boundary.Hit(ray, math.Inf(-1), math.Inf(1), sampler)
	if !ok {
		return nil, false
	}
	exit, ok := m.Boundary.Hit(ray, entry.T+1e-4, math.Inf(1), sampler)
	if !ok {
		return nil, false
	}

	t1 := max(entry.T, tMin)
	t2 := min(exit.T, tMax)
	if t1 >= t2 {
		return nil, false
	}
	t1 = max(t1, 0)

	rayLength := ray.Direction.Length()
	distanceInside := (t2 - t1) * rayLength
	hitDistance := -math.Log(1-sampler.Get1D()) / m.Density
	if hitDistance > distanceInside {
		return nil, false
	}

	t := t1 + hitDistance/rayLength
	hit := &material.HitRecord{
		T:         t,
		Point:     ray.At(t),
		UV:        entry.UV,
		Material:  m.Phase,
		FrontFace: true,
	}
	// The phase function ignores orientation; any unit normal will do
	hit.Normal = core.NewVec3(1, 0, 0)
	hit.OutwardNormal = hit.Normal
	return hit, true
}

// BoundingBox returns the boundary's bounds
func (m *ConstantMedium) BoundingBox() core.AABB {
	return m.Boundary.BoundingBox()
}

func (*ConstantMedium) isShape() {}
