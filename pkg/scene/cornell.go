package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Cornell box dimensions (standard 555x555x555 units)
const cornellBoxSize = 555.0

// NewCornellScene creates a classic Cornell box: five diffuse walls, a square ceiling
// light, a rotated tall block and a glass sphere
func NewCornellScene() *Scene {
	config := geometry.CameraConfig{
		Position:    core.NewVec3(278, 278, -800), // Outside the open front of the box
		LookAt:      core.NewVec3(278, 278, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 1.0,
	}

	sampling := DefaultSamplingConfig()
	sampling.Width = 500
	sampling.Height = 500
	sampling.SamplesPerPixel = 30
	sampling.UseImportanceSampling = true

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	light := material.NewDiffuseLight(core.NewVec3(15, 15, 15))
	glass := material.NewDielectric(1.5)

	size := cornellBoxSize
	half := size / 2
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	// Walls face into the box
	shapes := []geometry.Shape{
		newSquare(core.NewVec3(half, 0, half), z, x, white),    // Floor
		newSquare(core.NewVec3(half, size, half), x, z, white), // Ceiling
		newSquare(core.NewVec3(half, half, size), y, x, white), // Back wall
		newSquare(core.NewVec3(0, half, half), y, z, red),      // Left wall
		newSquare(core.NewVec3(size, half, half), z, y, green), // Right wall
	}

	// Ceiling light, slightly below the ceiling and facing down
	shapes = append(shapes, newSquare(core.NewVec3(half, size-1, half),
		core.NewVec3(130, 0, 0), core.NewVec3(0, 0, 130), light))

	block := core.Transform{
		Translate: core.NewVec3(265, 0, 295),
		Rotate:    core.NewVec3(0, 15, 0),
		Scale:     core.NewVec3(165, 330, 165),
	}
	shapes = append(shapes, newBox(block, white))
	shapes = append(shapes, geometry.NewSphere(core.NewVec3(190, 90, 190), 90, glass))

	return finish(&Scene{
		Shapes:         shapes,
		SamplingConfig: sampling,
		CameraConfig:   config,
	})
}

// unitCube spans [0,1]^3 with counter-clockwise outward-facing triangles
var unitCube = struct {
	vertices []core.Vec3
	faces    [][3]int
}{
	vertices: []core.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	},
	faces: [][3]int{
		{0, 3, 2}, {0, 2, 1}, // -z
		{4, 5, 6}, {4, 6, 7}, // +z
		{0, 4, 7}, {0, 7, 3}, // -x
		{1, 2, 6}, {1, 6, 5}, // +x
		{0, 1, 5}, {0, 5, 4}, // -y
		{3, 7, 6}, {3, 6, 2}, // +y
	},
}

// newBox creates a closed box mesh by placing the unit cube with transform
func newBox(transform core.Transform, mat material.Material) *geometry.Mesh {
	faces := make([]geometry.MeshFace, len(unitCube.faces))
	for i, f := range unitCube.faces {
		faces[i] = geometry.MeshFace{Vertex: f, Normal: [3]int{-1, -1, -1}, UV: [3]int{-1, -1, -1}}
	}
	mesh, err := geometry.NewMesh(unitCube.vertices, faces, mat, geometry.MeshOptions{Transform: transform})
	if err != nil {
		panic(err) // Only reachable with a zero scale in built-in scenes
	}
	return mesh
}
