package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Default texture coordinates for triangles without UVs
var defaultTriangleUVs = [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

// TriangleOptions holds the optional per-vertex data of a triangle
type TriangleOptions struct {
	Normals []core.Vec3 // nil, or three world-space vertex normals
	UVs     []core.Vec2 // nil, or three texture coordinates
	Cull    bool        // reject hits on the back (clockwise) side
}

// Triangle represents a single triangle defined by three world-space vertices.
// Counter-clockwise winding, seen from the front, defines the front face.
type Triangle struct {
	V0, V1, V2 core.Vec3
	Material   material.Material
	Cull       bool

	normals    [3]core.Vec3
	hasNormals bool
	uvs        [3]core.Vec2

	normal     core.Vec3 // Cached geometric normal
	area       float64
	dpdu, dpdv core.Vec3
	bbox       core.AABB
	isLight    bool
}

// NewTriangle creates a new two-sided triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, mat material.Material) *Triangle {
	return NewTriangleWithOptions(v0, v1, v2, mat, TriangleOptions{})
}

// NewTriangleWithOptions creates a triangle with optional vertex normals, UVs and culling
func NewTriangleWithOptions(v0, v1, v2 core.Vec3, mat material.Material, opts TriangleOptions) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: mat,
		Cull:     opts.Cull,
		uvs:      defaultTriangleUVs,
		isLight:  isEmitter(mat),
	}
	if len(opts.UVs) == 3 {
		copy(t.uvs[:], opts.UVs)
	}
	if len(opts.Normals) == 3 {
		for i, n := range opts.Normals {
			t.normals[i] = n.Normalize()
		}
		t.hasNormals = true
	}

	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	t.area = 0.5 * cross.Length()
	t.normal = cross.Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	t.computeTangents()
	return t
}

// computeTangents derives dP/du and dP/dv from the vertex UVs
func (t *Triangle) computeTangents() {
	duv02 := core.NewVec2(t.uvs[0].X-t.uvs[2].X, t.uvs[0].Y-t.uvs[2].Y)
	duv12 := core.NewVec2(t.uvs[1].X-t.uvs[2].X, t.uvs[1].Y-t.uvs[2].Y)
	dp02 := t.V0.Subtract(t.V2)
	dp12 := t.V1.Subtract(t.V2)

	det := duv02.X*duv12.Y - duv02.Y*duv12.X
	if math.Abs(det) < 1e-12 {
		t.dpdu, t.dpdv = core.OrthonormalBasis(t.normal)
		return
	}
	inv := 1.0 / det
	t.dpdu = dp02.Multiply(duv12.Y).Subtract(dp12.Multiply(duv02.Y)).Multiply(inv)
	t.dpdv = dp12.Multiply(duv02.X).Subtract(dp02.Multiply(duv12.X)).Multiply(inv)
}

// Intersect runs the Möller-Trumbore test and returns the ray parameter and barycentric
// weights (b0, b1, b2) of V0, V1, V2
func (t *Triangle) Intersect(ray core.Ray, tMin, tMax float64) (tHit, b0, b1, b2 float64, ok bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// det > 0 means the ray approaches the front face
	if t.Cull {
		if det < epsilon {
			return 0, 0, 0, 0, false
		}
	} else if math.Abs(det) < epsilon {
		return 0, 0, 0, 0, false
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, 0, false
	}

	tHit = f * edge2.Dot(q)
	if tHit <= tMin || tHit >= tMax {
		return 0, 0, 0, 0, false
	}

	return tHit, 1 - u - v, u, v, true
}

// Hit tests if a ray intersects with the triangle
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	tHit, b0, b1, b2, ok := t.Intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}

	hit := &material.HitRecord{
		T:        tHit,
		Point:    ray.At(tHit),
		Material: t.Material,
		UV: core.NewVec2(
			b0*t.uvs[0].X+b1*t.uvs[1].X+b2*t.uvs[2].X,
			b0*t.uvs[0].Y+b1*t.uvs[1].Y+b2*t.uvs[2].Y,
		),
		DPDU: t.dpdu,
		DPDV: t.dpdv,
	}
	hit.SetFaceNormal(ray, t.normal)

	if t.hasNormals {
		shading := t.normals[0].Multiply(b0).Add(t.normals[1].Multiply(b1)).Add(t.normals[2].Multiply(b2)).Normalize()
		if shading.Dot(hit.Normal) < 0 {
			shading = shading.Negate()
		}
		if !shading.IsZero() {
			hit.Normal = shading
		}
	}

	if t.isLight {
		hit.Light = t
	}
	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's geometric normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the triangle's surface area
func (t *Triangle) Area() float64 {
	return t.area
}

// Sample implements Light by picking a uniform point on the triangle
func (t *Triangle) Sample(origin core.Vec3, sample core.Vec2) LightSample {
	su := math.Sqrt(sample.X)
	b0 := 1 - su
	b1 := sample.Y * su
	b2 := 1 - b0 - b1
	point := t.V0.Multiply(b0).Add(t.V1.Multiply(b1)).Add(t.V2.Multiply(b2))

	toPoint := point.Subtract(origin)
	distance := toPoint.Length()
	if distance == 0 || t.area == 0 {
		return LightSample{}
	}
	direction := toPoint.Multiply(1 / distance)

	// A culled triangle is invisible from behind
	if t.Cull && direction.Dot(t.normal) >= 0 {
		return LightSample{}
	}

	hit := material.HitRecord{
		Point:  point,
		Normal: t.normal,
		UV: core.NewVec2(
			b0*t.uvs[0].X+b1*t.uvs[1].X+b2*t.uvs[2].X,
			b0*t.uvs[0].Y+b1*t.uvs[1].Y+b2*t.uvs[2].Y,
		),
	}

	return LightSample{
		Point:     point,
		Normal:    t.normal,
		Direction: direction,
		Distance:  distance,
		Emission:  t.Material.Emitted(hit),
		PDF:       solidAnglePDF(1/t.area, distance, t.normal, direction),
	}
}

// PDFValue implements material.LightSurface
func (t *Triangle) PDFValue(origin, direction core.Vec3) float64 {
	unit := direction.Normalize()
	tHit, _, _, _, ok := t.Intersect(core.NewRay(origin, unit), 1e-6, math.Inf(1))
	if !ok || t.area == 0 {
		return 0
	}
	return solidAnglePDF(1/t.area, tHit, t.normal, unit)
}

func (*Triangle) isShape() {}
