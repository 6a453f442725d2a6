package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// RayTMin is the minimum hit distance for every ray leaving a surface, to avoid self-intersection
const RayTMin = 0.001

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray. The result may be non-finite
	// for numerically degenerate paths; callers are expected to filter it.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}
