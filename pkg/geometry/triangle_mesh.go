package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// minTriangleArea is the area below which a triangle is treated as degenerate
const minTriangleArea = 1e-12

// ErrInvalidMesh is returned for meshes with out-of-range face indices
var ErrInvalidMesh = errors.New("invalid mesh")

// MeshFace indexes the vertex positions, normals and UVs of one triangle.
// Normal and UV indices are -1 when absent.
type MeshFace struct {
	Vertex [3]int
	Normal [3]int
	UV     [3]int
}

// MeshOptions contains optional parameters for mesh creation
type MeshOptions struct {
	Normals   []core.Vec3    // Object-space vertex normals referenced by MeshFace.Normal
	UVs       []core.Vec2    // Texture coordinates referenced by MeshFace.UV
	Cull      bool           // Enable backface culling on every triangle
	Transform core.Transform // Object-to-world placement; zero value means identity
}

// Mesh is an ordered collection of triangles sharing one material and culling flag.
// The mesh owns its triangles; acceleration structures index them individually.
type Mesh struct {
	Triangles []*Triangle
	Material  material.Material
	Cull      bool
	Skipped   int // Degenerate faces dropped at construction
	bbox      core.AABB
}

// NewMesh bakes the transform into world-space triangles. Zero-area faces are skipped
// and counted in Skipped.
func NewMesh(vertices []core.Vec3, faces []MeshFace, mat material.Material, opts MeshOptions) (*Mesh, error) {
	transform := opts.Transform
	if transform.Scale.IsZero() && transform.Rotate.IsZero() && transform.Translate.IsZero() {
		transform = core.IdentityTransform()
	}
	affine, ok := core.NewAffineTransform(transform)
	if !ok {
		return nil, errors.Wrapf(ErrSingularTransform, "mesh scale %v", transform.Scale)
	}

	world := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		world[i] = affine.ObjectToWorld.TransformPoint(v)
	}
	worldNormals := make([]core.Vec3, len(opts.Normals))
	for i, n := range opts.Normals {
		worldNormals[i] = affine.NormalToWorld(n)
	}

	m := &Mesh{
		Triangles: make([]*Triangle, 0, len(faces)),
		Material:  mat,
		Cull:      opts.Cull,
		bbox:      core.EmptyAABB(),
	}

	for faceIndex, face := range faces {
		var p [3]core.Vec3
		for k, idx := range face.Vertex {
			if idx < 0 || idx >= len(world) {
				return nil, errors.Wrapf(ErrInvalidMesh, "face %d: vertex index %d out of range", faceIndex, idx)
			}
			p[k] = world[idx]
		}

		triOpts := TriangleOptions{Cull: opts.Cull}
		normals, err := gather(worldNormals, face.Normal)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d normals", faceIndex)
		}
		triOpts.Normals = normals
		uvs, err := gather(opts.UVs, face.UV)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d uvs", faceIndex)
		}
		triOpts.UVs = uvs

		tri := NewTriangleWithOptions(p[0], p[1], p[2], mat, triOpts)
		if tri.Area() < minTriangleArea {
			m.Skipped++
			continue
		}
		m.Triangles = append(m.Triangles, tri)
		m.bbox = m.bbox.Union(tri.BoundingBox())
	}

	return m, nil
}

// gather returns the three referenced elements, or nil when any index is absent
func gather[T any](items []T, indices [3]int) ([]T, error) {
	out := make([]T, 3)
	for k, idx := range indices {
		if idx < 0 {
			return nil, nil
		}
		if idx >= len(items) {
			return nil, errors.Wrapf(ErrInvalidMesh, "index %d out of range", idx)
		}
		out[k] = items[idx]
	}
	return out, nil
}

// Hit tests every triangle and returns the nearest hit
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	if !m.bbox.Hit(ray, tMin, tMax) {
		return nil, false
	}

	var closest *material.HitRecord
	closestSoFar := tMax
	for _, tri := range m.Triangles {
		if hit, ok := tri.Hit(ray, tMin, closestSoFar, sampler); ok {
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, closest != nil
}

// BoundingBox returns the union of the triangle bounds
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}

// Shapes returns the mesh triangles as individual shapes for an acceleration structure
func (m *Mesh) Shapes() []Shape {
	shapes := make([]Shape, len(m.Triangles))
	for i, tri := range m.Triangles {
		shapes[i] = tri
	}
	return shapes
}

func (*Mesh) isShape() {}
