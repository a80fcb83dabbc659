package integrator

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// Field selects the surface quantity a FieldIntegrator outputs
type Field int

const (
	FieldPosition Field = iota
	FieldRelPosition
	FieldDistance
	FieldGeoNormal
	FieldShNormal
	FieldUV
	FieldAlbedo
	FieldMask
)

var fieldNames = map[string]Field{
	"position":    FieldPosition,
	"relPosition": FieldRelPosition,
	"distance":    FieldDistance,
	"geoNormal":   FieldGeoNormal,
	"shNormal":    FieldShNormal,
	"uv":          FieldUV,
	"albedo":      FieldAlbedo,
	"mask":        FieldMask,
}

// Number of BSDF samples used to estimate the albedo field
const albedoSamples = 16

// ParseField maps a field name to a Field
func ParseField(name string) (Field, bool) {
	field, ok := fieldNames[name]
	return field, ok
}

func (f Field) String() string {
	for name, field := range fieldNames {
		if field == f {
			return name
		}
	}
	return "unknown"
}

// FieldIntegrator renders one geometric or shading quantity of the first
// hit instead of light transport. Rays that miss return the undefined color.
type FieldIntegrator struct {
	field     Field
	undefined core.Vec3
}

// NewFieldIntegrator creates a field integrator for the named field. Unknown
// names fall back to the mask field with a warning.
func NewFieldIntegrator(name string, undefined core.Vec3, logger core.Logger) *FieldIntegrator {
	field, ok := ParseField(name)
	if !ok {
		if logger == nil {
			logger = core.NopLogger{}
		}
		logger.Printf("unknown field %q, falling back to mask", name)
		field = FieldMask
	}
	return &FieldIntegrator{field: field, undefined: undefined}
}

// Undefined returns the color of rays that miss
func (fi *FieldIntegrator) Undefined() core.Vec3 {
	return fi.undefined
}

// Field returns the selected field
func (fi *FieldIntegrator) Field() Field {
	return fi.field
}

// RayColor implements Integrator
func (fi *FieldIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, arena *bxdf.Arena) core.Vec3 {
	si, isHit := scene.Hit(ray, rayEpsilon, math.Inf(1))
	if !isHit {
		return fi.undefined
	}

	switch fi.field {
	case FieldPosition:
		return si.Point
	case FieldRelPosition:
		if scene.Camera == nil {
			return fi.undefined
		}
		return scene.Camera.WorldToCamera(si.Point)
	case FieldDistance:
		return core.NewGray(si.T * ray.Direction.Length())
	case FieldGeoNormal:
		return encodeNormal(si.Normal)
	case FieldShNormal:
		// Textured normals only exist once the material has run
		arena.Reset()
		if err := si.Material.ComputeScatteringFunctions(si, arena, material.Radiance, true); err != nil {
			return fi.undefined
		}
		return encodeNormal(si.Shading.N)
	case FieldUV:
		return core.NewVec3(si.UV.X, si.UV.Y, 0)
	case FieldAlbedo:
		return fi.albedo(si, sampler, arena)
	default:
		return core.NewGray(1)
	}
}

// albedo estimates the hemispherical-directional reflectance towards the
// viewer
func (fi *FieldIntegrator) albedo(si *material.SurfaceInteraction, sampler core.Sampler, arena *bxdf.Arena) core.Vec3 {
	arena.Reset()
	if err := si.Material.ComputeScatteringFunctions(si, arena, material.Radiance, true); err != nil || si.BSDF == nil {
		return fi.undefined
	}
	var samples [albedoSamples]core.Vec2
	for i := range samples {
		samples[i] = sampler.Get2D()
	}
	return si.BSDF.Rho(si.Wo, samples[:], bxdf.All)
}

// encodeNormal maps a unit normal into [0,1]³
func encodeNormal(n core.Vec3) core.Vec3 {
	return n.Multiply(0.5).Add(core.NewGray(0.5))
}
