package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// builtins maps the names accepted by Builtin to their constructors
var builtins = map[string]struct {
	description string
	create      func() *Scene
}{
	"cornell":     {"Cornell box with a tall block and a glass sphere", NewCornellScene},
	"spheres":     {"Metal, glass and diffuse spheres on a ground plane under a sphere light", NewSpheresScene},
	"sphere-grid": {"20x20 grid of rainbow-colored metal spheres", NewSphereGridScene},
	"textures":    {"Procedural textures, bump mapping and a fog volume", NewTexturesScene},
}

// Builtin returns a freshly constructed built-in scene
func Builtin(name string) (*Scene, error) {
	entry, ok := builtins[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "built-in scene %q", name)
	}
	return entry.create(), nil
}

func finish(s *Scene) *Scene {
	s.Camera = geometry.NewCamera(s.CameraConfig)
	if s.AggregateKind == "" {
		s.AggregateKind = AggregateBVH
	}
	// Built-in geometry is well formed, so Preprocess cannot fail here
	_ = s.Preprocess()
	return s
}

// NewSpheresScene creates a scene with spheres of different materials, including a
// hollow glass sphere, on a large ground square
func NewSpheresScene() *Scene {
	sampling := DefaultSamplingConfig()
	sampling.Width = 400
	sampling.Height = 225
	sampling.SamplesPerPixel = 100
	sampling.RussianRouletteDepth = 20 // Glass needs many bounces
	sampling.UseImportanceSampling = true
	sampling.Background = core.NewVec3(0.5, 0.7, 1.0).Multiply(0.3)

	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	glass := material.NewDielectric(1.5)
	sun := material.NewDiffuseLight(core.NewVec3(15.0, 14.0, 13.0))

	// Hollow glass sphere: a negative radius flips the inner surface's normals
	hollowCenter := core.NewVec3(-0.5, 0.25, -0.5)

	return finish(&Scene{
		SamplingConfig: sampling,
		CameraConfig: geometry.CameraConfig{
			Position:    core.NewVec3(0, 0.75, 2),
			LookAt:      core.NewVec3(0, 0.5, -1),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        40.0,
			AspectRatio: 16.0 / 9.0,
			Aperture:    0.05,
		},
		Shapes: []geometry.Shape{
			NewGroundSquare(core.NewVec3(0, 0, 0), 10000.0, lambertianGreen),
			geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed),
			geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver),
			geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold),
			geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),
			geometry.NewSphere(hollowCenter, 0.25, glass),
			geometry.NewSphere(hollowCenter, -0.24, glass),
			geometry.NewSphere(hollowCenter, 0.20, lambertianBlue),
			geometry.NewSphere(core.NewVec3(30, 30.5, 15), 10, sun),
		},
	})
}

// NewTexturesScene creates a row of spheres showing each procedural texture, a
// bump-mapped sphere and a sphere of fog, over a checkered floor
func NewTexturesScene() *Scene {
	sampling := DefaultSamplingConfig()
	sampling.Width = 600
	sampling.Height = 300
	sampling.SamplesPerPixel = 64
	sampling.UseImportanceSampling = true
	sampling.Background = core.NewVec3(0.05, 0.05, 0.08)

	white := material.NewConstantTexture(core.NewVec3(0.9, 0.9, 0.9))
	blue := material.NewConstantTexture(core.NewVec3(0.2, 0.2, 0.8))
	checker := material.NewCheckerTexture(2, white, blue)
	noise := material.NewNoiseTexture(4)
	marble := material.NewTurbulenceTexture(4, 7, 0.5)

	floor := material.NewTexturedLambertian(checker, nil)
	fog := material.NewIsotropic(material.NewConstantTexture(core.NewVec3(0.8, 0.8, 0.8)))
	light := material.NewDiffuseLight(core.NewVec3(20, 20, 20))

	// Fog sphere; density is fixed and positive
	fogBoundary := geometry.NewSphere(core.NewVec3(6, 1, 0), 1.0, fog)
	fogVolume, _ := geometry.NewConstantMedium(fogBoundary, 0.8, fog)

	return finish(&Scene{
		SamplingConfig: sampling,
		CameraConfig: geometry.CameraConfig{
			Position:    core.NewVec3(0, 2, 10),
			LookAt:      core.NewVec3(0, 1, 0),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        45.0,
			AspectRatio: 2.0,
		},
		Shapes: []geometry.Shape{
			NewGroundSquare(core.NewVec3(0, 0, 0), 40, floor),
			geometry.NewSphere(core.NewVec3(-6, 1, 0), 1.0, material.NewTexturedLambertian(noise, nil)),
			geometry.NewSphere(core.NewVec3(-3.5, 1, 0), 1.0, material.NewTexturedLambertian(marble, nil)),
			geometry.NewSphere(core.NewVec3(-1, 1, 0), 1.0, material.NewTexturedLambertian(material.NewTestTexture(), nil)),
			geometry.NewSphere(core.NewVec3(1.5, 1, 0), 1.0, material.NewTexturedLambertian(white, noise)),
			geometry.NewSphere(core.NewVec3(3.75, 1, 0), 1.0, material.NewTexturedMetal(checker, 0.2)),
			fogVolume,
			newSquare(core.NewVec3(0, 8, 5), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, 4), light),
		},
	})
}
