package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// DiffuseLight represents a two-sided light-emitting material
type DiffuseLight struct {
	Emission Texture // Emitted radiance
}

// NewDiffuseLight creates a new emissive material with uniform radiance
func NewDiffuseLight(emission core.Vec3) *DiffuseLight {
	return &DiffuseLight{Emission: NewConstantTexture(emission)}
}

// NewTexturedDiffuseLight creates a new emissive material from a texture
func NewTexturedDiffuseLight(emission Texture) *DiffuseLight {
	return &DiffuseLight{Emission: emission}
}

// Scatter terminates the path: lights absorb all incoming rays
func (e *DiffuseLight) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}

// Emitted returns the emission texture at the hit point
func (e *DiffuseLight) Emitted(hit HitRecord) core.Vec3 {
	return e.Emission.Value(hit.UV, hit.Point)
}

func (*DiffuseLight) isMaterial() {}
