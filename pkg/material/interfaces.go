package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Material describes how a surface responds to light. The set of materials is closed:
// Lambert, Metal, Dielectric, DiffuseLight and Isotropic.
type Material interface {
	// Scatter generates a continuation ray, or reports false if the ray is absorbed
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// Emitted returns the radiance emitted at the hit point
	Emitted(hit HitRecord) core.Vec3

	isMaterial()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // BRDF value for diffuse scattering, color weight for specular
	PDF         float64   // Density of the scattered direction (0 for specular scattering)
	Normal      core.Vec3 // Shading normal the direction was sampled around
}

// IsSpecular returns true if this is specular scattering (no PDF)
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// LightSurface is implemented by geometry that can be sampled as an area light
type LightSurface interface {
	// PDFValue returns the solid-angle density of sampling direction from origin
	PDFValue(origin, direction core.Vec3) float64
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point         core.Vec3    // Point of intersection
	Normal        core.Vec3    // Unit shading normal, facing against the incoming ray
	OutwardNormal core.Vec3    // Geometric normal pointing out of the surface
	T             float64      // Parameter t along the ray
	UV            core.Vec2    // Surface parameterization
	DPDU          core.Vec3    // Surface tangent along u
	DPDV          core.Vec3    // Surface tangent along v
	FrontFace     bool         // Whether ray hit the front face
	Material      Material     // Material of the hit object
	Light         LightSurface // Set when the hit surface is a samplable light
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.OutwardNormal = outwardNormal
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// emitsNothing is embedded by materials that never emit light
type emitsNothing struct{}

// Emitted returns black
func (emitsNothing) Emitted(hit HitRecord) core.Vec3 {
	return core.Vec3{}
}
