package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ShapeList is an aggregate that tests every shape in order
type ShapeList struct {
	Shapes []Shape
	bbox   core.AABB
}

// NewShapeList creates a linear aggregate over shapes
func NewShapeList(shapes []Shape) *ShapeList {
	bbox := core.EmptyAABB()
	for _, shape := range shapes {
		bbox = bbox.Union(shape.BoundingBox())
	}
	return &ShapeList{Shapes: shapes, bbox: bbox}
}

// Hit returns the nearest intersection across all shapes
func (l *ShapeList) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	closestSoFar := tMax
	for _, shape := range l.Shapes {
		if hit, ok := shape.Hit(ray, tMin, closestSoFar, sampler); ok {
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, closest != nil
}

// AnyHit reports whether any shape intersects the ray
func (l *ShapeList) AnyHit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) bool {
	for _, shape := range l.Shapes {
		if _, ok := shape.Hit(ray, tMin, tMax, sampler); ok {
			return true
		}
	}
	return false
}

// BoundingBox returns the union of all shape bounds
func (l *ShapeList) BoundingBox() core.AABB {
	return l.bbox
}
