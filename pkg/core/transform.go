package core

import "math"

// Matrix4 is a row-major 4x4 affine transform matrix
type Matrix4 [4][4]float64

// IdentityMatrix returns the identity transform
func IdentityMatrix() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// TranslationMatrix returns a translation by t
func TranslationMatrix(t Vec3) Matrix4 {
	m := IdentityMatrix()
	m[0][3], m[1][3], m[2][3] = t.X, t.Y, t.Z
	return m
}

// ScaleMatrix returns a per-axis scale by s
func ScaleMatrix(s Vec3) Matrix4 {
	m := IdentityMatrix()
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	return m
}

// RotationXMatrix rotates about the X axis by degrees
func RotationXMatrix(degrees float64) Matrix4 {
	s, c := math.Sincos(degrees * math.Pi / 180)
	m := IdentityMatrix()
	m[1][1], m[1][2] = c, -s
	m[2][1], m[2][2] = s, c
	return m
}

// RotationYMatrix rotates about the Y axis by degrees
func RotationYMatrix(degrees float64) Matrix4 {
	s, c := math.Sincos(degrees * math.Pi / 180)
	m := IdentityMatrix()
	m[0][0], m[0][2] = c, s
	m[2][0], m[2][2] = -s, c
	return m
}

// RotationZMatrix rotates about the Z axis by degrees
func RotationZMatrix(degrees float64) Matrix4 {
	s, c := math.Sincos(degrees * math.Pi / 180)
	m := IdentityMatrix()
	m[0][0], m[0][1] = c, -s
	m[1][0], m[1][1] = s, c
	return m
}

// Mul returns m * other
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Transpose returns the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Inverse returns the inverse using Gauss-Jordan elimination with partial pivoting.
// ok is false when the matrix is singular.
func (m Matrix4) Inverse() (inv Matrix4, ok bool) {
	a := m
	inv = IdentityMatrix()

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix4{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		scale := 1.0 / a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] *= scale
			inv[col][j] *= scale
		}

		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			factor := a[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				a[row][j] -= factor * a[col][j]
				inv[row][j] -= factor * inv[col][j]
			}
		}
	}

	return inv, true
}

// TransformPoint applies the full affine transform to a point
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// TransformVector applies the linear part of the transform to a direction
func (m Matrix4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// TransformBox returns the world-space box bounding the eight transformed corners of box
func (m Matrix4) TransformBox(box AABB) AABB {
	corners := box.Corners()
	for i := range corners {
		corners[i] = m.TransformPoint(corners[i])
	}
	return NewAABBFromPoints(corners[:]...)
}

// Transform describes an object-to-world placement.
// Rotation angles are in degrees.
type Transform struct {
	Translate Vec3
	Rotate    Vec3
	Scale     Vec3
}

// IdentityTransform returns a transform that leaves objects in place
func IdentityTransform() Transform {
	return Transform{Scale: NewVec3(1, 1, 1)}
}

// Matrix composes T * Rx * Ry * Rz * S: scale first, then rotate z, y, x, then translate
func (t Transform) Matrix() Matrix4 {
	return TranslationMatrix(t.Translate).
		Mul(RotationXMatrix(t.Rotate.X)).
		Mul(RotationYMatrix(t.Rotate.Y)).
		Mul(RotationZMatrix(t.Rotate.Z)).
		Mul(ScaleMatrix(t.Scale))
}

// IsUniformScale reports whether all scale components have the same magnitude
func (t Transform) IsUniformScale() bool {
	const eps = 1e-9
	x, y, z := math.Abs(t.Scale.X), math.Abs(t.Scale.Y), math.Abs(t.Scale.Z)
	return math.Abs(x-y) < eps && math.Abs(y-z) < eps
}

// AffineTransform caches the forward, inverse, and normal matrices of a Transform
type AffineTransform struct {
	ObjectToWorld Matrix4
	WorldToObject Matrix4
	NormalMatrix  Matrix4 // inverse-transpose, for normals
}

// NewAffineTransform precomputes the matrices for t.
// ok is false when the transform is singular.
func NewAffineTransform(t Transform) (AffineTransform, bool) {
	m := t.Matrix()
	inv, ok := m.Inverse()
	if !ok {
		return AffineTransform{}, false
	}
	return AffineTransform{
		ObjectToWorld: m,
		WorldToObject: inv,
		NormalMatrix:  inv.Transpose(),
	}, true
}

// RayToObject maps a world-space ray into object space. The direction is not renormalized,
// so ray parameters t are identical in both spaces.
func (a AffineTransform) RayToObject(ray Ray) Ray {
	return Ray{
		Origin:    a.WorldToObject.TransformPoint(ray.Origin),
		Direction: a.WorldToObject.TransformVector(ray.Direction),
	}
}

// NormalToWorld maps an object-space normal to a unit world-space normal
func (a AffineTransform) NormalToWorld(n Vec3) Vec3 {
	return a.NormalMatrix.TransformVector(n).Normalize()
}
