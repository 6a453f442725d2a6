package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// bumpDelta is the finite-difference step for bump-map gradients
const bumpDelta = 0.005

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	emitsNothing
	Albedo  Texture // Base color/reflectance
	BumpMap Texture // Optional height field perturbing the shading normal
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewConstantTexture(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture and optional bump map
func NewTexturedLambertian(albedo, bumpMap Texture) *Lambertian {
	return &Lambertian{Albedo: albedo, BumpMap: bumpMap}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	normal := l.ShadingNormal(hit)

	// Generate cosine-weighted random direction in hemisphere around normal
	scatterDirection := core.SampleCosineHemisphere(normal, sampler.Get2D())
	cosTheta := scatterDirection.Dot(normal)
	if cosTheta <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.EvaluateBRDF(hit),
		PDF:         cosTheta / math.Pi,
		Normal:      normal,
	}, true
}

// EvaluateBRDF returns albedo / π at the hit point
func (l *Lambertian) EvaluateBRDF(hit HitRecord) core.Vec3 {
	return l.Albedo.Value(hit.UV, hit.Point).Multiply(1.0 / math.Pi)
}

// PDF returns the cosine-weighted density of sampling direction about normal
func (l *Lambertian) PDF(direction, normal core.Vec3) float64 {
	cosTheta := direction.Normalize().Dot(normal)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// ShadingNormal returns hit.Normal, perturbed by the bump map when one is set
func (l *Lambertian) ShadingNormal(hit HitRecord) core.Vec3 {
	if l.BumpMap == nil || hit.DPDU.IsZero() || hit.DPDV.IsZero() {
		return hit.Normal
	}

	// Displace the tangents along the normal by the height-field gradient
	h := BumpValue(l.BumpMap, hit.UV, hit.Point)
	hu := BumpValue(l.BumpMap,
		core.NewVec2(hit.UV.X+bumpDelta, hit.UV.Y),
		hit.Point.Add(hit.DPDU.Multiply(bumpDelta)))
	hv := BumpValue(l.BumpMap,
		core.NewVec2(hit.UV.X, hit.UV.Y+bumpDelta),
		hit.Point.Add(hit.DPDV.Multiply(bumpDelta)))

	pu := hit.DPDU.Add(hit.Normal.Multiply((hu - h) / bumpDelta))
	pv := hit.DPDV.Add(hit.Normal.Multiply((hv - h) / bumpDelta))

	bumped := pu.Cross(pv).Normalize()
	if bumped.IsZero() {
		return hit.Normal
	}
	if bumped.Dot(hit.Normal) < 0 {
		bumped = bumped.Negate()
	}
	return bumped
}

func (*Lambertian) isMaterial() {}
