package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Isotropic scatters uniformly in all directions; it is the phase function of a participating medium
type Isotropic struct {
	emitsNothing
	Albedo Texture
}

// NewIsotropic creates a new isotropic phase material
func NewIsotropic(albedo Texture) *Isotropic {
	return &Isotropic{Albedo: albedo}
}

// Scatter picks a uniformly random direction over the full sphere
func (i *Isotropic) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := core.SampleOnUnitSphere(sampler.Get2D())
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: i.Albedo.Value(hit.UV, hit.Point),
		PDF:         0,
		Normal:      hit.Normal,
	}, true
}

func (*Isotropic) isMaterial() {}
