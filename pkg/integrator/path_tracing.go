package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing. Each path is traced in a
// loop carrying its throughput; with importance sampling enabled, diffuse vertices also
// sample a light directly and both strategies are combined with the power heuristic.
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	var radiance core.Vec3
	throughput := core.NewVec3(1, 1, 1)

	// Density of the previous diffuse scatter; zero after a specular bounce
	previousPDF := 0.0

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		if depth >= pt.config.RussianRouletteDepth {
			survive := core.Clamp(throughput.MaxComponent(), 0.05, 0.95)
			if sampler.Get1D() >= survive {
				break
			}
			throughput = throughput.Multiply(1 / survive)
		}

		hit, isHit := s.Aggregate.Hit(ray, RayTMin, math.Inf(1), sampler)
		if !isHit {
			radiance = radiance.Add(throughput.MultiplyVec(pt.config.Background))
			break
		}

		if emitted := hit.Material.Emitted(*hit); !emitted.IsZero() {
			weight := pt.emissionWeight(ray, hit, s, previousPDF)
			radiance = radiance.Add(throughput.MultiplyVec(emitted).Multiply(weight))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			break
		}

		if scatter.IsSpecular() {
			throughput = throughput.MultiplyVec(scatter.Attenuation)
			previousPDF = 0
			ray = scatter.Scattered
			continue
		}

		if pt.config.UseImportanceSampling {
			if lambertian, ok := hit.Material.(*material.Lambertian); ok {
				direct := pt.sampleDirectLight(s, hit, scatter, lambertian, sampler)
				radiance = radiance.Add(throughput.MultiplyVec(direct))
			}
		}

		cosine := scatter.Scattered.Direction.Normalize().Dot(scatter.Normal)
		if cosine <= 0 {
			break
		}
		throughput = throughput.MultiplyVec(scatter.Attenuation).Multiply(cosine / scatter.PDF)
		previousPDF = scatter.PDF
		ray = scatter.Scattered
	}

	return radiance
}

// emissionWeight returns the MIS weight for emission found by BRDF sampling. Emission is
// only down-weighted when the same light could also have been reached by light sampling
// from the previous vertex.
func (pt *PathTracingIntegrator) emissionWeight(ray core.Ray, hit *material.HitRecord, s *scene.Scene, previousPDF float64) float64 {
	if !pt.config.UseImportanceSampling || previousPDF <= 0 || hit.Light == nil || len(s.Lights) == 0 {
		return 1
	}
	lightPDF := hit.Light.PDFValue(ray.Origin, ray.Direction.Normalize()) / float64(len(s.Lights))
	return core.PowerHeuristic(1, previousPDF, 1, lightPDF)
}

// sampleDirectLight performs next-event estimation at a diffuse vertex: one light is chosen
// uniformly, a direction toward it is sampled, and the unoccluded contribution is weighted
// against BRDF sampling of the same direction
func (pt *PathTracingIntegrator) sampleDirectLight(s *scene.Scene, hit *material.HitRecord, scatter material.ScatterResult, lambertian *material.Lambertian, sampler core.Sampler) core.Vec3 {
	numLights := len(s.Lights)
	if numLights == 0 {
		return core.Vec3{}
	}
	index := min(int(sampler.Get1D()*float64(numLights)), numLights-1)
	lightSample := s.Lights[index].Sample(hit.Point, sampler.Get2D())
	if lightSample.PDF <= 0 || lightSample.Emission.IsZero() {
		return core.Vec3{}
	}

	// The light must be above both the shading and the geometric surface
	cosine := lightSample.Direction.Dot(scatter.Normal)
	if cosine <= 0 || lightSample.Direction.Dot(hit.Normal) <= 0 {
		return core.Vec3{}
	}

	shadowRay := core.NewRay(hit.Point, lightSample.Direction)
	if s.Aggregate.AnyHit(shadowRay, RayTMin, lightSample.Distance-RayTMin, sampler) {
		return core.Vec3{}
	}

	lightPDF := lightSample.PDF / float64(numLights)
	brdfPDF := lambertian.PDF(lightSample.Direction, scatter.Normal)
	weight := core.PowerHeuristic(1, lightPDF, 1, brdfPDF)

	// BRDF * emission * cosine * MIS weight / light PDF
	return scatter.Attenuation.MultiplyVec(lightSample.Emission).Multiply(cosine * weight / lightPDF)
}
