package scene

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
)

// memResources serves meshes and images from memory
type memResources struct {
	meshes map[string]*loaders.MeshData
	images map[string]*loaders.ImageData
}

func (r memResources) Mesh(path string) (*loaders.MeshData, error) {
	if m, ok := r.meshes[path]; ok {
		return m, nil
	}
	return nil, errors.Errorf("mesh %q not found", path)
}

func (r memResources) Image(path string) (*loaders.ImageData, error) {
	if img, ok := r.images[path]; ok {
		return img, nil
	}
	return nil, errors.Errorf("image %q not found", path)
}

var none = [3]int{-1, -1, -1}

func testResources() memResources {
	return memResources{
		meshes: map[string]*loaders.MeshData{
			"tri.obj": {
				Vertices: []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
				Faces:    []geometry.MeshFace{{Vertex: [3]int{0, 1, 2}, Normal: none, UV: none}},
			},
			"sliver.obj": {
				Vertices: []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 2, Y: 0, Z: 0}},
				Faces: []geometry.MeshFace{
					{Vertex: [3]int{0, 1, 2}, Normal: none, UV: none},
					{Vertex: [3]int{0, 1, 3}, Normal: none, UV: none}, // Collinear
				},
			},
		},
		images: map[string]*loaders.ImageData{
			"pixel.png": {Width: 1, Height: 1, Pixels: []core.Vec3{{X: 1, Y: 0, Z: 0}}},
		},
	}
}

// minimalDescription is a valid scene with one sphere that tests mutate
func minimalDescription() *Description {
	return &Description{
		Logistics: LogisticsDesc{ResolutionX: 8, ResolutionY: 4, Samples: 2},
		Camera: CameraDesc{
			Position: Vec3Desc{Z: 5},
			FOV:      40,
		},
		Textures: map[string]TextureDesc{
			"gray": {Type: "Constant", Color: &ColorDesc{R: 0.5, G: 0.5, B: 0.5}},
		},
		Materials: map[string]MaterialDesc{
			"matte": {Type: "Lambert", Albedo: "gray"},
		},
		Shapes: []ShapeDesc{
			{Type: "Sphere", Material: "matte", Radius: 1},
		},
	}
}

func build(desc *Description) (*Scene, error) {
	return NewBuilder(testResources(), slog.Default()).Build(desc)
}

func TestBuilder_MinimalScene(t *testing.T) {
	s, err := build(minimalDescription())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if s.SamplingConfig.Width != 8 || s.SamplingConfig.Height != 4 {
		t.Errorf("Expected 8x4, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.SamplingConfig.MaxDepth != 50 {
		t.Errorf("Expected default max depth 50, got %d", s.SamplingConfig.MaxDepth)
	}
	if s.SamplingConfig.RussianRouletteDepth != 5 {
		t.Errorf("Expected default roulette depth 5, got %d", s.SamplingConfig.RussianRouletteDepth)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio from resolution (2), got %g", s.CameraConfig.AspectRatio)
	}
	if s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up vector, got %v", s.CameraConfig.Up)
	}
	if _, ok := s.Aggregate.(*geometry.BVH); !ok {
		t.Errorf("Expected BVH aggregate by default, got %T", s.Aggregate)
	}
	if len(s.Lights) != 0 {
		t.Errorf("Expected no lights, got %d", len(s.Lights))
	}

	hit, ok := s.Aggregate.Hit(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected ray toward the origin to hit the sphere")
	}
	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected hit at t=4, got %g", hit.T)
	}
}

func TestBuilder_AllVariants(t *testing.T) {
	desc := minimalDescription()
	desc.Aggregate = "List"
	desc.Textures["checks"] = TextureDesc{Type: "Checker", Repeat: 4, Odd: "gray", Even: "pixel"}
	desc.Textures["pixel"] = TextureDesc{Type: "Image", FilePath: "pixel.png"}
	desc.Textures["noise"] = TextureDesc{Type: "Noise", Scale: 2}
	desc.Textures["marble"] = TextureDesc{Type: "Turbulence", Omega: 0.5}
	desc.Textures["uv"] = TextureDesc{Type: "Test"}
	desc.Textures["glow"] = TextureDesc{Type: "Constant", Color: &ColorDesc{R: 4, G: 4, B: 4}}
	desc.Materials["bumpy"] = MaterialDesc{Type: "Lambert", Albedo: "checks", BumpMap: "noise"}
	desc.Materials["steel"] = MaterialDesc{Type: "Metal", Albedo: "uv", Roughness: 2}
	desc.Materials["glass"] = MaterialDesc{Type: "Dielectric", RefractiveIndex: 1.5}
	desc.Materials["lamp"] = MaterialDesc{Type: "DiffuseLight", Emission: "glow"}
	desc.Materials["fog"] = MaterialDesc{Type: "Isotropic", Albedo: "marble"}
	desc.Shapes = append(desc.Shapes,
		ShapeDesc{Type: "Sphere", Material: "glass", Radius: -0.5},
		ShapeDesc{Type: "Mesh", Material: "bumpy", FilePath: "tri.obj", EnableBackfaceCulling: true,
			Transform: &TransformDesc{Translate: &Vec3Desc{X: 3}}},
		ShapeDesc{Type: "Sphere", Material: "lamp", Radius: 0.25,
			Transform: &TransformDesc{Translate: &Vec3Desc{Y: 3}}},
		ShapeDesc{Type: "Medium", Material: "fog", Density: 0.1,
			Boundary: &ShapeDesc{Type: "Sphere", Radius: 2, Transform: &TransformDesc{Translate: &Vec3Desc{X: -4}}}},
		ShapeDesc{Type: "Sphere", Material: "steel", Radius: 1,
			Transform: &TransformDesc{Scale: &Vec3Desc{X: 1, Y: 2, Z: 1}}},
	)

	s, err := build(desc)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := s.Aggregate.(*geometry.ShapeList); !ok {
		t.Errorf("Expected ShapeList aggregate, got %T", s.Aggregate)
	}
	if s.Stats.Shapes != 6 {
		t.Errorf("Expected 6 primitives, got %d", s.Stats.Shapes)
	}
	if len(s.Lights) != 1 {
		t.Errorf("Expected 1 light, got %d", len(s.Lights))
	}

	var medium *geometry.ConstantMedium
	for _, shape := range s.Shapes {
		if m, ok := shape.(*geometry.ConstantMedium); ok {
			medium = m
		}
	}
	if medium == nil {
		t.Fatal("Expected a ConstantMedium shape")
	}
	if boundary, ok := medium.Boundary.(*geometry.Sphere); !ok || boundary.Material != medium.Phase {
		t.Errorf("Expected boundary to fall back to the medium's phase material")
	}

	for _, shape := range s.Shapes {
		if sphere, ok := shape.(*geometry.Sphere); ok && sphere.Radius == 1 && sphere.Material != nil {
			if m, ok := sphere.Material.(*material.Metal); ok && m.Roughness != 1 {
				t.Errorf("Expected roughness clamped to 1, got %g", m.Roughness)
			}
		}
	}
}

func TestBuilder_SharedTexturesResolvedOnce(t *testing.T) {
	desc := minimalDescription()
	desc.Materials["other"] = MaterialDesc{Type: "Lambert", Albedo: "gray"}

	b := NewBuilder(testResources(), nil)
	if _, err := b.Build(desc); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	a := b.materials["matte"].(*material.Lambertian)
	o := b.materials["other"].(*material.Lambertian)
	if a.Albedo != o.Albedo {
		t.Error("Expected both materials to share one texture instance")
	}
}

func TestBuilder_SkipsDegenerateTriangles(t *testing.T) {
	desc := minimalDescription()
	desc.Shapes = []ShapeDesc{{Type: "Mesh", Material: "matte", FilePath: "sliver.obj"}}

	s, err := build(desc)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Stats.SkippedDegenerates != 1 {
		t.Errorf("Expected 1 skipped triangle, got %d", s.Stats.SkippedDegenerates)
	}
	if s.Stats.Shapes != 1 {
		t.Errorf("Expected 1 remaining triangle, got %d", s.Stats.Shapes)
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Description)
		want   error
	}{
		{"unresolved material", func(d *Description) { d.Shapes[0].Material = "missing" }, ErrUnresolvedReference},
		{"unresolved texture", func(d *Description) {
			d.Materials["matte"] = MaterialDesc{Type: "Lambert", Albedo: "missing"}
		}, ErrUnresolvedReference},
		{"unresolved bump map", func(d *Description) {
			d.Materials["matte"] = MaterialDesc{Type: "Lambert", Albedo: "gray", BumpMap: "missing"}
		}, ErrUnresolvedReference},
		{"missing shape material", func(d *Description) { d.Shapes[0].Material = "" }, ErrUnresolvedReference},
		{"unknown texture type", func(d *Description) { d.Textures["gray"] = TextureDesc{Type: "Marble"} }, ErrUnknownType},
		{"unknown material type", func(d *Description) { d.Materials["matte"] = MaterialDesc{Type: "Plastic"} }, ErrUnknownType},
		{"unknown shape type", func(d *Description) { d.Shapes[0].Type = "Torus" }, ErrUnknownType},
		{"unknown aggregate", func(d *Description) { d.Aggregate = "KDTree" }, ErrUnknownType},
		{"zero refractive index", func(d *Description) {
			d.Materials["matte"] = MaterialDesc{Type: "Dielectric"}
		}, ErrInvalidValue},
		{"negative refractive index", func(d *Description) {
			d.Materials["matte"] = MaterialDesc{Type: "Dielectric", RefractiveIndex: -1.5}
		}, ErrInvalidValue},
		{"omega above one", func(d *Description) {
			d.Textures["gray"] = TextureDesc{Type: "Turbulence", Omega: 1.5}
		}, ErrInvalidValue},
		{"constant without color", func(d *Description) { d.Textures["gray"] = TextureDesc{Type: "Constant"} }, ErrInvalidValue},
		{"checker cycle", func(d *Description) {
			d.Textures["gray"] = TextureDesc{Type: "Checker", Odd: "gray", Even: "gray"}
		}, ErrInvalidValue},
		{"zero resolution", func(d *Description) { d.Logistics.ResolutionX = 0 }, ErrInvalidValue},
		{"zero samples", func(d *Description) { d.Logistics.Samples = 0 }, ErrInvalidValue},
		{"bad fov", func(d *Description) { d.Camera.FOV = 0 }, ErrInvalidValue},
		{"camera looks at itself", func(d *Description) { d.Camera.LookAt = d.Camera.Position }, ErrInvalidValue},
		{"zero radius", func(d *Description) { d.Shapes[0].Radius = 0 }, ErrInvalidValue},
		{"medium with lambert", func(d *Description) {
			d.Shapes[0] = ShapeDesc{Type: "Medium", Material: "matte", Density: 1,
				Boundary: &ShapeDesc{Type: "Sphere", Radius: 1}}
		}, ErrInvalidValue},
		{"medium without boundary", func(d *Description) {
			d.Materials["fog"] = MaterialDesc{Type: "Isotropic", Albedo: "gray"}
			d.Shapes[0] = ShapeDesc{Type: "Medium", Material: "fog", Density: 1}
		}, ErrInvalidValue},
		{"medium with zero density", func(d *Description) {
			d.Materials["fog"] = MaterialDesc{Type: "Isotropic", Albedo: "gray"}
			d.Shapes[0] = ShapeDesc{Type: "Medium", Material: "fog", Boundary: &ShapeDesc{Type: "Sphere", Radius: 1}}
		}, ErrInvalidValue},
		{"singular transform", func(d *Description) {
			d.Shapes[0].Transform = &TransformDesc{Scale: &Vec3Desc{X: 1, Y: 0, Z: 1}}
		}, geometry.ErrSingularTransform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := minimalDescription()
			tt.mutate(desc)
			_, err := build(desc)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuilder_MissingResources(t *testing.T) {
	desc := minimalDescription()
	desc.Shapes[0] = ShapeDesc{Type: "Mesh", Material: "matte", FilePath: "missing.obj"}
	if _, err := build(desc); err == nil {
		t.Error("Expected error for missing mesh")
	}

	desc = minimalDescription()
	desc.Textures["gray"] = TextureDesc{Type: "Image", FilePath: "missing.png"}
	if _, err := build(desc); err == nil {
		t.Error("Expected error for missing image")
	}
}

func TestLoad_CornellJSON(t *testing.T) {
	s, err := Load("testdata/cornell.json", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !s.SamplingConfig.UseImportanceSampling {
		t.Error("Expected importance sampling to be enabled")
	}
	// 5 walls and the light at 2 triangles each, 12 box triangles, 1 sphere
	if s.Stats.Shapes != 25 {
		t.Errorf("Expected 25 primitives, got %d", s.Stats.Shapes)
	}
	if len(s.Lights) != 2 {
		t.Errorf("Expected the light square's 2 triangles as lights, got %d", len(s.Lights))
	}

	box := s.Aggregate.BoundingBox()
	if !vecNear(box.Min, core.NewVec3(0, 0, 0), 1e-6) || !vecNear(box.Max, core.NewVec3(555, 555, 555), 1e-6) {
		t.Errorf("Expected bounds [0,555]^3, got %v", box)
	}

	// A ray down the middle of the box meets the rotated block's front face
	ray := core.NewRay(core.NewVec3(278, 278, -800), core.NewVec3(0, 0, 1))
	hit, ok := s.Aggregate.Hit(ray, 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected center ray to hit the block")
	}
	sin, cos := math.Sincos(15 * math.Pi / 180)
	wantZ := 295 - (278-265)/cos*sin
	if math.Abs(hit.Point.Z-wantZ) > 1e-6 {
		t.Errorf("Expected hit at z=%g, got %g", wantZ, hit.Point.Z)
	}
	if !vecNear(hit.Normal, core.NewVec3(-sin, 0, -cos), 1e-9) {
		t.Errorf("Expected rotated face normal, got %v", hit.Normal)
	}

	// Straight up from the floor center reaches the light
	up := core.NewRay(core.NewVec3(278, 1, 278), core.NewVec3(0, 1, 0))
	hit, ok = s.Aggregate.Hit(up, 0.001, math.Inf(1), nil)
	if !ok || hit.Light == nil {
		t.Fatal("Expected upward ray to hit the ceiling light")
	}
	if math.Abs(hit.Point.Y-554) > 1e-9 {
		t.Errorf("Expected light at y=554, got %g", hit.Point.Y)
	}
}

func TestLoad_FogYAML(t *testing.T) {
	s, err := Load("testdata/fog.yaml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := s.Aggregate.(*geometry.ShapeList); !ok {
		t.Errorf("Expected ShapeList aggregate, got %T", s.Aggregate)
	}
	if s.SamplingConfig.Background != core.NewVec3(0.1, 0.1, 0.2) {
		t.Errorf("Unexpected background %v", s.SamplingConfig.Background)
	}
	if s.CameraConfig.Aperture != 0.1 || s.CameraConfig.FocusDistance != 10 {
		t.Errorf("Unexpected lens %g/%g", s.CameraConfig.Aperture, s.CameraConfig.FocusDistance)
	}
	// Floor square (2), three spheres, the medium and the lamp
	if s.Stats.Shapes != 7 {
		t.Errorf("Expected 7 primitives, got %d", s.Stats.Shapes)
	}
	if len(s.Lights) != 1 {
		t.Errorf("Expected 1 light, got %d", len(s.Lights))
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("testdata/missing.json", nil); err == nil {
		t.Error("Expected error for missing scene file")
	}
	if _, err := Load("testdata/square.obj", nil); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType for unsupported extension, got %v", err)
	}
}

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
