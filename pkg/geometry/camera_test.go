package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// constantSampler returns the same value for every dimension
type constantSampler float64

func (c constantSampler) Get1D() float64   { return float64(c) }
func (c constantSampler) Get2D() core.Vec2 { return core.NewVec2(float64(c), float64(c)) }
func (c constantSampler) Get3D() core.Vec3 {
	return core.NewVec3(float64(c), float64(c), float64(c))
}

func TestCamera_CenterRay(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})

	if !vecNear(camera.Forward(), core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected forward -Z, got %v", camera.Forward())
	}

	ray := camera.GetRay(0.5, 0.5, core.NewVec2(0.5, 0.5))
	if !vecNear(ray.Direction.Normalize(), core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected center ray along -Z, got %v", ray.Direction)
	}

	// 90° vertical fov: the top edge is at 45°
	top := camera.GetRay(0.5, 1, core.NewVec2(0.5, 0.5)).Direction.Normalize()
	if math.Abs(top.Y-math.Sqrt2/2) > 1e-9 {
		t.Errorf("Expected top edge at 45°, got %v", top)
	}

	// Aspect ratio 2 doubles the horizontal half-extent
	right := camera.GetRay(1, 0.5, core.NewVec2(0.5, 0.5)).Direction
	if math.Abs(right.X/-right.Z-2) > 1e-9 {
		t.Errorf("Expected horizontal half-extent 2, got %v", right)
	}
}

func TestCamera_PixelRowsTopDown(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60,
		AspectRatio: 1,
	})

	top := camera.GetPixelRay(5, 0, 10, 10, constantSampler(0.5))
	bottom := camera.GetPixelRay(5, 9, 10, 10, constantSampler(0.5))
	if top.Direction.Y <= 0 || bottom.Direction.Y >= 0 {
		t.Errorf("Expected row 0 above the horizon and row 9 below, got %v and %v", top.Direction, bottom.Direction)
	}
}

func TestCamera_DepthOfField(t *testing.T) {
	config := CameraConfig{
		Position:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -10),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   1,
		Aperture:      1,
		FocusDistance: 4,
	}
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(9)

	// Every lens sample for the same screen point converges on the focus plane
	var focus core.Vec3
	for i := 0; i < 50; i++ {
		ray := camera.GetRay(0.3, 0.7, sampler.Get2D())
		if ray.Origin.Length() > 0.5+1e-9 {
			t.Fatalf("Lens sample %v outside aperture", ray.Origin)
		}
		tFocus := -4 / ray.Direction.Z
		p := ray.At(tFocus)
		if i == 0 {
			focus = p
			continue
		}
		if !vecNear(p, focus, 1e-9) {
			t.Fatalf("Ray %d reaches the focus plane at %v, expected %v", i, p, focus)
		}
	}
}

func TestCamera_DefaultFocusDistance(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position:    core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: 1,
		Aperture:    2,
	})

	// The look-at point stays sharp for any lens sample
	for _, lens := range []core.Vec2{core.NewVec2(0, 0), core.NewVec2(1, 0.3), core.NewVec2(0.9, 0.9)} {
		ray := camera.GetRay(0.5, 0.5, lens)
		p := ray.At(1)
		if !vecNear(p, core.NewVec3(0, 0, 0), 1e-9) {
			t.Errorf("Expected center ray to reach the look-at point, got %v", p)
		}
	}
}
