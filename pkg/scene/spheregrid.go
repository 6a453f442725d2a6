package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to linear RGB, clamped to [0, 1].
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	sin, cos := math.Sincos(h * math.Pi / 180.0)
	a := c * cos
	b := c * sin

	// OKLAB to LMS, cubed
	lms := [3]float64{
		l + 0.3963377774*a + 0.2158037573*b,
		l - 0.1055613458*a - 0.0638541728*b,
		l - 0.0894841775*a - 1.2914855480*b,
	}
	for i, v := range lms {
		lms[i] = v * v * v
	}

	rgb := core.NewVec3(
		+4.0767416621*lms[0]-3.3077115913*lms[1]+0.2309699292*lms[2],
		-1.2684380046*lms[0]+2.6097574011*lms[1]-0.3413193965*lms[2],
		-0.0041960863*lms[0]-0.7034186147*lms[1]+1.7076147010*lms[2],
	)
	return rgb.Clamp(0, 1)
}

// NewSphereGridScene creates a 20x20 grid of small metal spheres whose hue varies along x
// and chroma along z. The many small primitives make it a BVH workout.
func NewSphereGridScene() *Scene {
	const (
		gridSize   = 20
		targetArea = 9.0 // Grid spans roughly 9x9 units
		lightness  = 0.65
		minChroma  = 0.05
		maxChroma  = 0.25
	)

	sampling := DefaultSamplingConfig()
	sampling.Width = 800
	sampling.Height = 450
	sampling.SamplesPerPixel = 100
	sampling.MaxDepth = 40
	sampling.RussianRouletteDepth = 12 // Metal reflections chain several bounces
	sampling.UseImportanceSampling = true
	sampling.Background = core.NewVec3(0.5, 0.7, 1.0).Multiply(0.2)

	shapes := []geometry.Shape{
		NewGroundSquare(core.NewVec3(4.5, 0, 4.5), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
		geometry.NewSphere(core.NewVec3(20, 25, 20), 8, material.NewDiffuseLight(core.NewVec3(12.0, 11.5, 10.0))),
	}

	spacing := targetArea / float64(gridSize-1)
	radius := core.Clamp(spacing*0.35, 0.02, 0.35)
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := float64(i) / float64(gridSize-1) * 360.0
			chroma := core.Lerp(minChroma, maxChroma, float64(j)/float64(gridSize-1))
			l := lightness + 0.1*math.Sin(float64(i+j)*0.5)
			roughness := 0.05 + 0.05*float64((i+j)%3)

			shapes = append(shapes, geometry.NewSphere(core.NewVec3(x, radius, z), radius,
				material.NewMetal(oklchToRGB(l, chroma, hue), roughness)))
		}
	}

	return finish(&Scene{
		SamplingConfig: sampling,
		CameraConfig: geometry.CameraConfig{
			Position:    core.NewVec3(4.5, 6, 18),
			LookAt:      core.NewVec3(4.5, 0.8, 4.5),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        40.0,
			AspectRatio: 16.0 / 9.0,
			Aperture:    0.02,
		},
		Shapes: shapes,
	})
}
