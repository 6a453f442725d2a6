package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	Shapes         []geometry.Shape   // Objects in the scene
	Lights         []geometry.Light   // Samplable emitters, filled by Preprocess
	Aggregate      geometry.Aggregate // Acceleration structure for ray-object intersection
	AggregateKind  string             // "BVH" or "List"
	SamplingConfig SamplingConfig
	CameraConfig   geometry.CameraConfig
	Stats          BuildStats
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                 int       // Image width
	Height                int       // Image height
	SamplesPerPixel       int       // Number of rays per pixel
	MaxDepth              int       // Maximum ray bounce depth
	RussianRouletteDepth  int       // Bounces before Russian Roulette can terminate a path
	UseImportanceSampling bool      // Next-event estimation with MIS at diffuse vertices
	Background            core.Vec3 // Radiance returned by rays that escape the scene
}

// DefaultSamplingConfig returns the settings used when a scene leaves them unset
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                400,
		Height:               400,
		SamplesPerPixel:      30,
		MaxDepth:             50,
		RussianRouletteDepth: 5,
	}
}

// BuildStats counts what happened while assembling the scene
type BuildStats struct {
	Shapes             int // Primitives handed to the aggregate
	Lights             int
	SkippedDegenerates int // Zero-area mesh faces dropped
	BVH                geometry.BVHStats
}

// Aggregate kinds
const (
	AggregateBVH  = "BVH"
	AggregateList = "List"
)

// NewGroundSquare creates a large horizontal two-triangle square centered at center,
// facing up, to stand in for an infinite ground plane
func NewGroundSquare(center core.Vec3, size float64, mat material.Material) *geometry.Mesh {
	return newSquare(center, core.NewVec3(size, 0, 0), core.NewVec3(0, 0, -size), mat)
}

// newSquare creates a parallelogram spanned by u and v around center. The front face
// points along u × v.
func newSquare(center, u, v core.Vec3, mat material.Material) *geometry.Mesh {
	corner := center.Subtract(u.Multiply(0.5)).Subtract(v.Multiply(0.5))
	vertices := []core.Vec3{corner, corner.Add(u), corner.Add(u).Add(v), corner.Add(v)}
	faces := []geometry.MeshFace{
		{Vertex: [3]int{0, 1, 2}, Normal: [3]int{-1, -1, -1}, UV: [3]int{-1, -1, -1}},
		{Vertex: [3]int{0, 2, 3}, Normal: [3]int{-1, -1, -1}, UV: [3]int{-1, -1, -1}},
	}
	// Four distinct corners and identity placement cannot fail
	mesh, _ := geometry.NewMesh(vertices, faces, mat, geometry.MeshOptions{})
	return mesh
}

// Preprocess prepares the scene for rendering: meshes are flattened into triangles,
// the aggregate is built, and samplable lights are collected.
func (s *Scene) Preprocess() error {
	var primitives []geometry.Shape
	for _, shape := range s.Shapes {
		if mesh, ok := shape.(*geometry.Mesh); ok {
			primitives = append(primitives, mesh.Shapes()...)
			continue
		}
		primitives = append(primitives, shape)
	}

	switch s.AggregateKind {
	case "", AggregateBVH:
		bvh := geometry.NewBVH(primitives)
		s.Aggregate = bvh
		s.Stats.BVH = bvh.Stats()
	case AggregateList:
		s.Aggregate = geometry.NewShapeList(primitives)
	default:
		return errors.Wrapf(ErrUnknownType, "aggregate %q", s.AggregateKind)
	}

	s.Lights = geometry.CollectLights(s.Shapes)
	s.Stats.Shapes = len(primitives)
	s.Stats.Lights = len(s.Lights)
	return nil
}
