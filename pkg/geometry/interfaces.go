package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Shape is a primitive that can be hit by rays. The set of shapes is closed:
// Sphere, Triangle, Mesh and ConstantMedium.
type Shape interface {
	// Hit returns the nearest intersection with t in (tMin, tMax).
	// The sampler is only consumed by participating media.
	Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool)

	// BoundingBox returns the world-space bounds
	BoundingBox() core.AABB

	isShape()
}

// Aggregate answers ray queries against a whole collection of shapes
type Aggregate interface {
	Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool)
	AnyHit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) bool
	BoundingBox() core.AABB
}

// Light is a shape that can be sampled directly for next-event estimation
type Light interface {
	material.LightSurface

	// Sample picks a direction from origin toward a point on the light
	Sample(origin core.Vec3, sample core.Vec2) LightSample
}

// LightSample describes a sampled point on a light as seen from a shading point
type LightSample struct {
	Point     core.Vec3 // Point on the light
	Normal    core.Vec3 // Light surface normal at Point
	Direction core.Vec3 // Unit direction from the shading point toward Point
	Distance  float64   // Distance to Point
	Emission  core.Vec3 // Emitted radiance toward the shading point
	PDF       float64   // Solid-angle density of Direction; zero means the sample is unusable
}

// isEmitter reports whether a material emits light
func isEmitter(m material.Material) bool {
	_, ok := m.(*material.DiffuseLight)
	return ok
}

// CollectLights returns every shape (meshes expanded to triangles) that can be sampled as a light
func CollectLights(shapes []Shape) []Light {
	var lights []Light
	for _, shape := range shapes {
		switch s := shape.(type) {
		case *Sphere:
			if s.isLight {
				lights = append(lights, s)
			}
		case *Triangle:
			if s.isLight {
				lights = append(lights, s)
			}
		case *Mesh:
			for _, tri := range s.Triangles {
				if tri.isLight {
					lights = append(lights, tri)
				}
			}
		}
	}
	return lights
}

// solidAnglePDF converts an area density at a light point into a solid-angle density
func solidAnglePDF(areaPDF, distance float64, lightNormal, direction core.Vec3) float64 {
	cosLight := math.Abs(lightNormal.Dot(direction))
	if cosLight < 1e-8 {
		return 0
	}
	return areaPDF * distance * distance / cosLight
}
