package material

import (
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestImageTexture_Corners(t *testing.T) {
	// 2x2 image, row 0 on top
	red := core.NewVec3(1, 0, 0)
	green := core.NewVec3(0, 1, 0)
	blue := core.NewVec3(0, 0, 1)
	white := core.NewVec3(1, 1, 1)
	tex := NewImageTexture(2, 2, []core.Vec3{red, green, blue, white})

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"top-left", core.NewVec2(0, 1), red},
		{"top-right", core.NewVec2(1, 1), green},
		{"bottom-left", core.NewVec2(0, 0), blue},
		{"bottom-right", core.NewVec2(1, 0), white},
		{"clamped below", core.NewVec2(-3, -3), blue},
		{"clamped above", core.NewVec2(5, 5), green},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tex.Value(tt.uv, core.Vec3{})
			if got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestImageTexture_Bilinear(t *testing.T) {
	black := core.NewVec3(0, 0, 0)
	white := core.NewVec3(1, 1, 1)
	tex := NewImageTexture(2, 1, []core.Vec3{black, white})

	// Halfway between the two texel centers
	got := tex.Value(core.NewVec2(0.5, 0.5), core.Vec3{})
	expected := core.NewVec3(0.5, 0.5, 0.5)
	if got.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestImageTexture_Empty(t *testing.T) {
	tex := NewImageTexture(0, 0, nil)
	if got := tex.Value(core.NewVec2(0.5, 0.5), core.Vec3{}); !got.IsZero() {
		t.Errorf("Expected black for empty image, got %v", got)
	}
}
