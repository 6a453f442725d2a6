package renderer

import (
	"image"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// TileRenderer renders rectangular regions of the framebuffer using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	seed       uint64
}

// NewTileRenderer creates a new tile renderer with the given scene, integrator and base seed
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator, seed uint64) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
		seed:       seed,
	}
}

// RenderTileBounds takes SamplesPerPixel samples for every pixel within bounds. The
// sampler is reseeded per pixel so the result does not depend on which worker ran it.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer, sampler *core.RandomSampler) (RenderStats, error) {
	if !bounds.In(fb.Bounds()) {
		return RenderStats{}, errors.Errorf("tile %v outside framebuffer %v", bounds, fb.Bounds())
	}

	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			sampler.Reseed(PixelSeed(tr.seed, j*fb.Width+i))
			rejected := tr.samplePixel(i, j, fb, sampler)
			stats.RejectedSamples += rejected
		}
	}
	stats.TotalSamples = stats.TotalPixels * tr.scene.SamplingConfig.SamplesPerPixel
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats, nil
}

// samplePixel accumulates the pixel's samples and returns how many were rejected.
// A rejected sample still counts toward the mean, as a black contribution.
func (tr *TileRenderer) samplePixel(i, j int, fb *Framebuffer, sampler core.Sampler) int {
	config := tr.scene.SamplingConfig
	ps := fb.At(i, j)
	rejected := 0
	for s := 0; s < config.SamplesPerPixel; s++ {
		ray := tr.scene.Camera.GetPixelRay(i, j, config.Width, config.Height, sampler)
		color := tr.integrator.RayColor(ray, tr.scene, sampler)
		if !validSample(color) {
			rejected++
			color = core.Vec3{}
		}
		ps.AddSample(color)
	}
	return rejected
}

func validSample(c core.Vec3) bool {
	return c.IsFinite() && c.X >= 0 && c.Y >= 0 && c.Z >= 0
}

// PixelSeed derives an independent sampler seed for a pixel from the base seed
// using the SplitMix64 finalizer
func PixelSeed(base uint64, pixelIndex int) uint64 {
	z := base + uint64(pixelIndex+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
