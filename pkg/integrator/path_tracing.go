package integrator

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/lights"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// Minimum hit distance along a ray, keeps rays from re-hitting their origin
const rayEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing with next
// event estimation
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// pathVertex carries what the next bounce needs to weight emission it finds
// by chance against light sampling
type pathVertex struct {
	point    core.Vec3
	normal   core.Vec3
	pdf      float64 // Density the BSDF sampled the outgoing ray with
	specular bool    // Camera ray or delta bounce: no light sampling competed
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, arena *bxdf.Arena) core.Vec3 {
	return pt.rayColor(ray, scene, sampler, arena, pt.config.MaxDepth, core.NewGray(1), pathVertex{specular: true})
}

func (pt *PathTracingIntegrator) rayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, arena *bxdf.Arena, depth int, throughput core.Vec3, prev pathVertex) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	shouldTerminate, rrCompensation := pt.applyRussianRoulette(depth, throughput, sampler)
	if shouldTerminate {
		return core.Vec3{}
	}

	si, isHit := scene.Hit(ray, rayEpsilon, math.Inf(1))
	if !isHit {
		return pt.environmentLight(ray, scene, prev).Multiply(rrCompensation)
	}

	colorEmitted := pt.getEmittedLight(si)

	// The previous bounce is done with its BSDF by the time we get here
	arena.Reset()
	if err := si.Material.ComputeScatteringFunctions(si, arena, material.Radiance, true); err != nil {
		// A material that cannot build its BSDF absorbs
		return colorEmitted.Multiply(rrCompensation)
	}
	if si.BSDF == nil || si.BSDF.NumComponents(bxdf.All) == 0 {
		return colorEmitted.Multiply(rrCompensation)
	}

	directLight := pt.calculateDirectLighting(scene, si, sampler)
	indirectLight := pt.calculateIndirectLighting(scene, si, sampler, arena, depth, throughput)

	return colorEmitted.Add(directLight).Add(indirectLight).Multiply(rrCompensation)
}

// getEmittedLight returns the light emitted by the hit surface towards the
// ray origin
func (pt *PathTracingIntegrator) getEmittedLight(si *material.SurfaceInteraction) core.Vec3 {
	if emitter, isEmissive := si.Material.(material.Emitter); isEmissive {
		return emitter.Emit(si, si.Wo)
	}
	return core.Vec3{}
}

// environmentLight gathers infinite lights for an escaped ray, weighted
// against the light sampling that could also have produced the direction
func (pt *PathTracingIntegrator) environmentLight(ray core.Ray, scene *scene.Scene, prev pathVertex) core.Vec3 {
	var total core.Vec3
	direction := ray.Direction.Normalize()
	for i, light := range scene.Lights {
		if light.Type() != lights.LightTypeInfinite {
			continue
		}
		emission := light.Emit(ray)
		if prev.specular {
			total = total.Add(emission)
			continue
		}
		lightPDF := light.PDF(prev.point, prev.normal, direction) *
			scene.LightSampler.GetLightProbability(i, prev.point, prev.normal)
		misWeight := core.PowerHeuristic(1, prev.pdf, 1, lightPDF)
		total = total.Add(emission.Multiply(misWeight))
	}
	return total
}

// calculateDirectLighting samples one light and evaluates the BSDF towards it
func (pt *PathTracingIntegrator) calculateDirectLighting(scene *scene.Scene, si *material.SurfaceInteraction, sampler core.Sampler) core.Vec3 {
	lightSample, _, _, hasLight := lights.SampleLight(scene.Lights, scene.LightSampler, si.Point, si.Normal, sampler)
	if !hasLight || lightSample.PDF <= 0 || lightSample.Emission.IsBlack() {
		return core.Vec3{}
	}

	bsdf := si.BSDF
	f := bsdf.F(si.Wo, lightSample.Direction, bxdf.All)
	cosine := lightSample.Direction.AbsDot(bsdf.ShadingNormal())
	if f.IsBlack() || cosine == 0 {
		return core.Vec3{}
	}

	// Shadow ray
	tMax := math.Inf(1)
	if !math.IsInf(lightSample.Distance, 1) {
		tMax = lightSample.Distance - rayEpsilon
	}
	if _, blocked := scene.Hit(si.SpawnRay(lightSample.Direction), rayEpsilon, tMax); blocked {
		return core.Vec3{}
	}

	misWeight := 1.0
	if !lightSample.IsDelta {
		bsdfPDF := bsdf.PDF(si.Wo, lightSample.Direction, bxdf.All)
		misWeight = core.PowerHeuristic(1, lightSample.PDF, 1, bsdfPDF)
	}

	return f.MultiplyVec(lightSample.Emission).Multiply(cosine * misWeight / lightSample.PDF)
}

// calculateIndirectLighting samples the BSDF and follows the scattered ray
func (pt *PathTracingIntegrator) calculateIndirectLighting(scene *scene.Scene, si *material.SurfaceInteraction, sampler core.Sampler, arena *bxdf.Arena, depth int, throughput core.Vec3) core.Vec3 {
	bsdf := si.BSDF
	sample, ok := bsdf.SampleF(si.Wo, sampler.Get2D(), bxdf.All)
	if !ok || sample.PDF <= 0 || sample.F.IsBlack() {
		return core.Vec3{}
	}

	cosine := sample.Wi.AbsDot(bsdf.ShadingNormal())
	weight := sample.F.Multiply(cosine / sample.PDF)
	if weight.IsBlack() {
		return core.Vec3{}
	}

	next := pathVertex{
		point:    si.Point,
		normal:   si.Normal,
		pdf:      sample.PDF,
		specular: sample.Type.IsSpecular(),
	}
	incomingLight := pt.rayColor(si.SpawnRay(sample.Wi), scene, sampler, arena, depth-1, throughput.MultiplyVec(weight), next)
	return weight.MultiplyVec(incomingLight)
}

// applyRussianRoulette determines if a ray should be terminated and returns the compensation factor
func (pt *PathTracingIntegrator) applyRussianRoulette(depth int, throughput core.Vec3, sampler core.Sampler) (bool, float64) {
	currentBounce := pt.config.MaxDepth - depth
	if currentBounce < pt.config.RussianRouletteMinBounces {
		return false, 1.0
	}

	// Survival between 0.5 and 0.95 keeps the compensation between 1.05x and 2x
	survivalProb := math.Min(0.95, math.Max(0.5, throughput.Luminance()))
	if sampler.Get1D() > survivalProb {
		return true, 0.0
	}
	return false, 1.0 / survivalProb
}
