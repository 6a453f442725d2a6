package core

import (
	"testing"
)

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		tMin     float64
		tMax     float64
		expected bool
	}{
		{"straight through", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 0, 100, true},
		{"miss to the side", NewRay(NewVec3(3, 0, -5), NewVec3(0, 0, 1)), 0, 100, false},
		{"parallel inside slab", NewRay(NewVec3(0.5, 0.5, -5), NewVec3(0, 0, 1)), 0, 100, true},
		{"parallel outside slab", NewRay(NewVec3(0.5, 2, -5), NewVec3(0, 0, 1)), 0, 100, false},
		{"interval ends before box", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 0, 3, false},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(1, 1, 0)), 0, 100, true},
		{"box behind ray", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, 1)), 0, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, tt.tMin, tt.tMax); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAABB_UnionAndContains(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(2, -1, 0), NewVec3(3, 0, 4))
	u := a.Union(b)

	if !u.Contains(a, 0) || !u.Contains(b, 0) {
		t.Errorf("Expected union %v to contain both inputs", u)
	}
	if a.Contains(b, 0) {
		t.Error("Expected disjoint box not to be contained")
	}

	empty := EmptyAABB()
	if got := empty.Union(a); got != a {
		t.Errorf("Expected union with empty box to be %v, got %v", a, got)
	}
	if empty.SurfaceArea() != 0 {
		t.Error("Expected empty box to have zero surface area")
	}
}

func TestAABB_SurfaceArea(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 2, 3))
	if got := box.SurfaceArea(); got != 22 {
		t.Errorf("Expected surface area 22, got %f", got)
	}
}
