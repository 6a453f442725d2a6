package core

import (
	"math"
	"testing"
)

func TestSampleCosineHemisphere_StaysAboveSurface(t *testing.T) {
	sampler := NewRandomSampler(7)
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 0, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
	}

	for _, normal := range normals {
		for i := 0; i < 1000; i++ {
			dir := SampleCosineHemisphere(normal, sampler.Get2D())
			if dir.Dot(normal) < -1e-12 {
				t.Fatalf("Direction %v below surface with normal %v", dir, normal)
			}
			if math.Abs(dir.Length()-1) > 1e-9 {
				t.Fatalf("Expected unit direction, got length %f", dir.Length())
			}
		}
	}
}

func TestSamplePointInUnitDisk(t *testing.T) {
	sampler := NewRandomSampler(3)
	for i := 0; i < 1000; i++ {
		p := SamplePointInUnitDisk(sampler.Get2D())
		if p.LengthSquared() > 1+1e-12 || p.Z != 0 {
			t.Fatalf("Point %v outside unit disk", p)
		}
	}
}

func TestSamplePointInUnitSphere(t *testing.T) {
	sampler := NewRandomSampler(5)
	for i := 0; i < 1000; i++ {
		p := SamplePointInUnitSphere(sampler.Get3D())
		if p.LengthSquared() > 1+1e-12 {
			t.Fatalf("Point %v outside unit sphere", p)
		}
	}
}

func TestSampleCone_WithinAngle(t *testing.T) {
	sampler := NewRandomSampler(11)
	axis := NewVec3(0, 0, 1)
	cosMax := math.Cos(math.Pi / 8)
	for i := 0; i < 1000; i++ {
		dir := SampleCone(axis, cosMax, sampler.Get2D())
		if dir.Dot(axis) < cosMax-1e-9 {
			t.Fatalf("Direction %v outside cone", dir)
		}
	}
}

func TestRandomSampler_Reseed(t *testing.T) {
	a := NewRandomSampler(1)
	b := NewRandomSampler(99)
	b.Reseed(1)

	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Expected reseeded sampler to reproduce the stream")
		}
	}
}

func TestNoise(t *testing.T) {
	// Gradient noise vanishes on the integer lattice
	if v := Noise(NewVec3(3, -2, 5)); math.Abs(v) > 1e-12 {
		t.Errorf("Expected zero at lattice point, got %f", v)
	}

	sampler := NewRandomSampler(13)
	for i := 0; i < 2000; i++ {
		p := sampler.Get3D().Multiply(50)
		v := Noise(p)
		if v < -1.5 || v > 1.5 {
			t.Fatalf("Noise out of range at %v: %f", p, v)
		}
		if v != Noise(p) {
			t.Fatal("Expected noise to be deterministic")
		}
	}
}

func TestTurbulence(t *testing.T) {
	sampler := NewRandomSampler(17)
	for i := 0; i < 500; i++ {
		p := sampler.Get3D().Multiply(10)
		if v := Turbulence(p, 7, 0.5); v < 0 {
			t.Fatalf("Expected non-negative turbulence, got %f", v)
		}
	}

	// One octave is the absolute value of plain noise
	p := NewVec3(0.3, 1.7, 2.2)
	if math.Abs(Turbulence(p, 1, 0.5)-math.Abs(Noise(p))) > 1e-12 {
		t.Error("Expected single-octave turbulence to equal |noise|")
	}
}
