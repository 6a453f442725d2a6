package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Metal represents a metallic material with glossy specular reflection
type Metal struct {
	emitsNothing
	Albedo    Texture // Metal color
	Roughness float64 // 0.0 = perfect mirror, 1.0 = very rough
}

// NewMetal creates a new metal material with a solid color
func NewMetal(albedo core.Vec3, roughness float64) *Metal {
	return NewTexturedMetal(NewConstantTexture(albedo), roughness)
}

// NewTexturedMetal creates a new metal material; roughness is clamped to [0, 1]
func NewTexturedMetal(albedo Texture, roughness float64) *Metal {
	return &Metal{Albedo: albedo, Roughness: core.Clamp(roughness, 0, 1)}
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := reflectVector(rayIn.Direction.Normalize(), hit.Normal)

	if m.Roughness > 0 {
		perturbation := core.SamplePointInUnitSphere(sampler.Get3D()).Multiply(m.Roughness)
		reflected = reflected.Add(perturbation)
	}

	// Absorbed when the perturbed reflection points into the surface
	if reflected.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected),
		Attenuation: m.Albedo.Value(hit.UV, hit.Point),
		PDF:         0,
		Normal:      hit.Normal,
	}, true
}

func (*Metal) isMaterial() {}
