package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrSingularTransform is returned when a shape's transform cannot be inverted
var ErrSingularTransform = errors.New("singular transform")

// Sphere is a sphere of the given radius centered at the object-space origin and placed
// in the world by an affine transform. A negative radius turns the sphere inside out.
type Sphere struct {
	Radius    float64
	Material  material.Material
	transform core.AffineTransform
	bbox      core.AABB

	// Light sampling is only supported for uniformly scaled spheres
	isLight     bool
	worldCenter core.Vec3
	worldRadius float64
}

// NewSphere creates an untransformed sphere at center
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	tr := core.IdentityTransform()
	tr.Translate = center
	s, _ := NewTransformedSphere(radius, tr, mat)
	return s
}

// NewTransformedSphere creates a sphere placed by transform
func NewTransformedSphere(radius float64, transform core.Transform, mat material.Material) (*Sphere, error) {
	affine, ok := core.NewAffineTransform(transform)
	if !ok {
		return nil, errors.Wrapf(ErrSingularTransform, "sphere scale %v", transform.Scale)
	}

	r := math.Abs(radius)
	objectBox := core.NewAABB(core.NewVec3(-r, -r, -r), core.NewVec3(r, r, r))

	s := &Sphere{
		Radius:    radius,
		Material:  mat,
		transform: affine,
		bbox:      affine.ObjectToWorld.TransformBox(objectBox),
	}

	if transform.IsUniformScale() && r > 0 {
		s.worldCenter = affine.ObjectToWorld.TransformPoint(core.Vec3{})
		s.worldRadius = r * math.Abs(transform.Scale.X)
		s.isLight = isEmitter(mat)
	}
	return s, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	t0, t1, ok := s.roots(ray)
	if !ok {
		return nil, false
	}

	root := t0
	if root <= tMin || root >= tMax {
		root = t1
		if root <= tMin || root >= tMax {
			return nil, false
		}
	}

	local := s.transform.RayToObject(ray).At(root)

	hit := &material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Dividing by the signed radius flips the normal inward for negative radii
	objNormal := local.Multiply(1.0 / s.Radius)
	hit.SetFaceNormal(ray, s.transform.NormalToWorld(objNormal))

	unit := local.Multiply(1.0 / math.Abs(s.Radius))
	hit.UV, hit.DPDU, hit.DPDV = s.surfaceFrame(unit, math.Abs(s.Radius))
	if s.isLight {
		hit.Light = s
	}
	return hit, true
}

// roots solves the object-space quadratic. t0 <= t1.
func (s *Sphere) roots(ray core.Ray) (t0, t1 float64, ok bool) {
	local := s.transform.RayToObject(ray)
	oc := local.Origin
	d := local.Direction

	a := d.Dot(d)
	if a == 0 {
		return 0, 0, false
	}
	halfB := oc.Dot(d)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Discriminant from the distance of the closest approach to the center, avoiding
	// the cancellation in halfB² - a·c when the ray is far away
	l := oc.Subtract(d.Multiply(halfB / a))
	discriminant := a * (s.Radius*s.Radius - l.LengthSquared())
	if discriminant < 0 {
		return 0, 0, false
	}

	q := -(halfB + math.Copysign(math.Sqrt(discriminant), halfB))
	if q == 0 {
		return 0, 0, true
	}
	t0 = q / a
	t1 = c / q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// surfaceFrame returns UV and world-space tangents at the unit-sphere point p
func (s *Sphere) surfaceFrame(p core.Vec3, radius float64) (core.Vec2, core.Vec3, core.Vec3) {
	phi := math.Atan2(p.Z, p.X)
	theta := math.Asin(core.Clamp(p.Y, -1, 1))

	uv := core.NewVec2(1-(phi+math.Pi)/(2*math.Pi), (theta+math.Pi/2)/math.Pi)

	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	cosTheta := math.Cos(theta)
	dpdu := core.NewVec3(2*math.Pi*p.Z, 0, -2*math.Pi*p.X).Multiply(radius)
	dpdv := core.NewVec3(-p.Y*cosPhi, cosTheta, -p.Y*sinPhi).Multiply(math.Pi * radius)

	m := s.transform.ObjectToWorld
	return uv, m.TransformVector(dpdu), m.TransformVector(dpdv)
}

// BoundingBox returns the world-space bounds of the transformed sphere
func (s *Sphere) BoundingBox() core.AABB {
	return s.bbox
}

// Sample implements Light by sampling the cone the sphere subtends from origin
func (s *Sphere) Sample(origin core.Vec3, sample core.Vec2) LightSample {
	toCenter := s.worldCenter.Subtract(origin)
	distanceToCenter := toCenter.Length()

	if distanceToCenter <= s.worldRadius {
		return s.sampleUniform(origin, sample)
	}

	sinThetaMax := s.worldRadius / distanceToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))
	direction := core.SampleCone(toCenter.Multiply(1/distanceToCenter), cosThetaMax, sample)

	ray := core.NewRay(origin, direction)
	hit, ok := s.Hit(ray, 1e-6, math.Inf(1), nil)
	if !ok {
		return LightSample{}
	}

	return LightSample{
		Point:     hit.Point,
		Normal:    hit.OutwardNormal,
		Direction: direction,
		Distance:  hit.T,
		Emission:  s.Material.Emitted(*hit),
		PDF:       1.0 / (2.0 * math.Pi * (1.0 - cosThetaMax)),
	}
}

// sampleUniform samples the whole surface, for origins inside the sphere
func (s *Sphere) sampleUniform(origin core.Vec3, sample core.Vec2) LightSample {
	normal := core.SampleOnUnitSphere(sample)
	point := s.worldCenter.Add(normal.Multiply(s.worldRadius))
	toPoint := point.Subtract(origin)
	distance := toPoint.Length()
	if distance == 0 {
		return LightSample{}
	}
	direction := toPoint.Multiply(1 / distance)

	areaPDF := 1.0 / (4.0 * math.Pi * s.worldRadius * s.worldRadius)
	hit := material.HitRecord{Point: point, Normal: normal}
	hit.UV, _, _ = s.surfaceFrame(s.transform.WorldToObject.TransformPoint(point).Normalize(), s.worldRadius)

	return LightSample{
		Point:     point,
		Normal:    normal,
		Direction: direction,
		Distance:  distance,
		Emission:  s.Material.Emitted(hit),
		PDF:       solidAnglePDF(areaPDF, distance, normal, direction),
	}
}

// PDFValue implements material.LightSurface
func (s *Sphere) PDFValue(origin, direction core.Vec3) float64 {
	hit, ok := s.Hit(core.NewRay(origin, direction), 1e-6, math.Inf(1), nil)
	if !ok {
		return 0
	}

	distanceToCenter := s.worldCenter.Subtract(origin).Length()
	if distanceToCenter <= s.worldRadius {
		areaPDF := 1.0 / (4.0 * math.Pi * s.worldRadius * s.worldRadius)
		return solidAnglePDF(areaPDF, hit.T*direction.Length(), hit.OutwardNormal, direction.Normalize())
	}

	sinThetaMax := s.worldRadius / distanceToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1.0-sinThetaMax*sinThetaMax))
	return 1.0 / (2.0 * math.Pi * (1.0 - cosThetaMax))
}

func (*Sphere) isShape() {}
