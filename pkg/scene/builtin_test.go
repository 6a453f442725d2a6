package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

func TestBuiltinScenes(t *testing.T) {
	for _, info := range ListBuiltinScenes() {
		t.Run(info.Name, func(t *testing.T) {
			s, err := Builtin(info.Name)
			if err != nil {
				t.Fatalf("Builtin(%q) failed: %v", info.Name, err)
			}
			if s.Camera == nil || s.Aggregate == nil {
				t.Fatal("Expected camera and aggregate to be built")
			}
			if len(s.Lights) == 0 {
				t.Error("Expected at least one light")
			}
			if s.SamplingConfig.Width <= 0 || s.SamplingConfig.Height <= 0 || s.SamplingConfig.SamplesPerPixel <= 0 {
				t.Errorf("Invalid sampling config %+v", s.SamplingConfig)
			}
			if s.Stats.Shapes == 0 || s.Stats.BVH.Nodes == 0 {
				t.Errorf("Unexpected stats %+v", s.Stats)
			}
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, err := Builtin("teapot"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestCornellScene_Geometry(t *testing.T) {
	s := NewCornellScene()

	// Walls, light, block and sphere
	if s.Stats.Shapes != 10+2+12+1 {
		t.Errorf("Expected 25 primitives, got %d", s.Stats.Shapes)
	}
	if len(s.Lights) != 2 {
		t.Errorf("Expected 2 light triangles, got %d", len(s.Lights))
	}

	// Every wall faces into the box
	center := core.NewVec3(cornellBoxSize/2, cornellBoxSize/2, cornellBoxSize/2)
	for _, shape := range s.Shapes[:5] {
		mesh := shape.(*geometry.Mesh)
		for _, tri := range mesh.Triangles {
			toCenter := center.Subtract(tri.BoundingBox().Center())
			if tri.Normal().Dot(toCenter) <= 0 {
				t.Errorf("Wall triangle normal %v faces away from the box", tri.Normal())
			}
		}
	}

	// The light faces down
	light := s.Shapes[5].(*geometry.Mesh)
	for _, tri := range light.Triangles {
		if math.Abs(tri.Normal().Y+1) > 1e-12 {
			t.Errorf("Expected light normal (0,-1,0), got %v", tri.Normal())
		}
	}

	// The block's top is 330 high
	block := s.Shapes[6].BoundingBox()
	if math.Abs(block.Max.Y-330) > 1e-9 || math.Abs(block.Min.Y) > 1e-9 {
		t.Errorf("Unexpected block bounds %v", block)
	}
}

func TestGroundSquare_FacesUp(t *testing.T) {
	ground := NewGroundSquare(core.NewVec3(0, -1, 0), 10, nil)
	if len(ground.Triangles) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(ground.Triangles))
	}
	for _, tri := range ground.Triangles {
		if tri.Normal() != core.NewVec3(0, 1, 0) {
			t.Errorf("Expected normal (0,1,0), got %v", tri.Normal())
		}
	}
	box := ground.BoundingBox()
	if box.Min != core.NewVec3(-5, -1, -5) || box.Max != core.NewVec3(5, -1, 5) {
		t.Errorf("Unexpected bounds %v", box)
	}
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-scene.yaml", "a_scene.json", "notes.txt", "c.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	scenes, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	want := []string{"A Scene", "B Scene", "C"}
	if len(scenes) != len(want) {
		t.Fatalf("Expected %d scenes, got %+v", len(want), scenes)
	}
	for i, s := range scenes {
		if s.DisplayName != want[i] || s.Type != "file" {
			t.Errorf("Scene %d: expected %q file, got %+v", i, want[i], s)
		}
	}
}

func TestListAllScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListAllScenes(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListAllScenes failed: %v", err)
	}
	if len(scenes) != len(builtins) {
		t.Errorf("Expected only the %d built-in scenes, got %d", len(builtins), len(scenes))
	}
	for _, s := range scenes {
		if s.Type != "builtin" {
			t.Errorf("Unexpected scene %+v", s)
		}
	}
}
