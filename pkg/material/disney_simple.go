package material

import (
	"fmt"
	"math"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

const (
	// Anisotropy aspect of the specular lobe. 1 keeps it isotropic.
	disneyAspect = 1.0

	// Blend of the dielectric specular color from the base hue toward white.
	// 0 keeps the full hue.
	disneySpecularTint = 0.0

	// Smallest microfacet alpha; avoids a delta distribution
	minDisneyAlpha = 0.001
)

// DisneySimple is a reduced principled material driven by a diffuse color
// and a specular color. The share of specular in their sum decides how
// metallic the surface is.
type DisneySimple struct {
	Diffuse   ColorSource
	Specular  ColorSource
	Roughness FloatSource
	Eta       FloatSource
	Normal    ColorSource // Optional tangent-space normal map
}

// NewDisneySimple creates a material with constant parameters
func NewDisneySimple(diffuse, specular core.Vec3, roughness, eta float64) *DisneySimple {
	return &DisneySimple{
		Diffuse:   NewSolidColor(diffuse),
		Specular:  NewSolidColor(specular),
		Roughness: NewConstantFloat(roughness),
		Eta:       NewConstantFloat(eta),
	}
}

// DisneyWeights are the derived quantities the material blends its lobes
// with
type DisneyWeights struct {
	Diffuse   core.Vec3 // Clamped diffuse color
	Specular  core.Vec3 // Clamped specular color
	Tint      core.Vec3 // Base color normalized to unit luminance
	Metallic  float64   // Specular share of the base luminance
	Cspec0    core.Vec3 // Normal-incidence reflectance of the specular lobe
	AlphaX    float64
	AlphaY    float64
	Eta       float64
	Roughness float64
}

// Weights evaluates the textures at si and derives the blend weights
func (m *DisneySimple) Weights(si *SurfaceInteraction) DisneyWeights {
	d := m.Diffuse.Evaluate(si.UV, si.Point).Clamp(0, 1)
	s := m.Specular.Evaluate(si.UV, si.Point).Clamp(0, 1)

	c := d.Add(s)
	lum := c.Luminance()
	tint := core.NewGray(1)
	metallic := 0.0
	if lum > 0 {
		tint = c.Divide(lum)
		metallic = s.Luminance() / lum
	}

	e := m.Eta.Evaluate(si.UV, si.Point)
	rough := m.Roughness.Evaluate(si.UV, si.Point)

	ax := math.Max(minDisneyAlpha, sqr(rough)/disneyAspect)
	ay := math.Max(minDisneyAlpha, sqr(rough)*disneyAspect)

	dielectric := core.Lerp(disneySpecularTint, tint, core.NewGray(1)).Multiply(SchlickR0FromEta(e))
	cspec0 := core.Lerp(metallic, dielectric, c)

	return DisneyWeights{
		Diffuse:   d,
		Specular:  s,
		Tint:      tint,
		Metallic:  metallic,
		Cspec0:    cspec0,
		AlphaX:    ax,
		AlphaY:    ay,
		Eta:       e,
		Roughness: rough,
	}
}

// ComputeScatteringFunctions implements the Material interface. The BSDF
// holds a diffuse and a retro-reflection lobe unless the surface is fully
// metallic, followed by one microfacet specular lobe.
func (m *DisneySimple) ComputeScatteringFunctions(si *SurfaceInteraction, arena *bxdf.Arena, mode TransportMode, allowMultipleLobes bool) error {
	if m.Normal != nil {
		NormalMap(m.Normal, si)
	}

	bsdf := newBSDF(si, arena)
	si.BSDF = bsdf

	w := m.Weights(si)

	if 1-w.Metallic > 0 {
		if err := bsdf.Add(bxdf.New(arena, DisneyDiffuse{R: w.Diffuse})); err != nil {
			return fmt.Errorf("disney diffuse: %w", err)
		}
		if err := bsdf.Add(bxdf.New(arena, DisneyRetro{R: w.Diffuse, Roughness: w.Roughness})); err != nil {
			return fmt.Errorf("disney retro: %w", err)
		}
	}

	distrib := bxdf.New(arena, NewDisneyMicrofacetDistribution(w.AlphaX, w.AlphaY))
	fresnel := bxdf.New(arena, DisneyFresnel{R0: w.Cspec0, Metallic: w.Metallic, Eta: w.Eta})
	specular := bxdf.New(arena, bxdf.MicrofacetReflection{
		R:            core.NewGray(1),
		Distribution: distrib,
		Fresnel:      fresnel,
	})
	if err := bsdf.Add(specular); err != nil {
		return fmt.Errorf("disney specular: %w", err)
	}
	return nil
}
