// Package bxdf provides the generic scattering-lobe layer: the BxDF
// interface, Fresnel terms, microfacet distributions, the microfacet
// reflection lobe and the BSDF aggregate that holds the lobes of one
// surface interaction.
//
// All directions handled by a BxDF are expressed in the local shading frame,
// where the shading normal is +Z.
package bxdf

import (
	"math"
	"strings"

	"github.com/df07/go-principled-shading/pkg/core"
)

// Type classifies a lobe. Values are bit flags and may be combined.
type Type uint8

const (
	Reflection Type = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular

	All = Reflection | Transmission | Diffuse | Glossy | Specular
)

// HasFlags reports whether every flag of t is present in flags.
func (t Type) HasFlags(flags Type) bool {
	return t&flags == t
}

// IsSpecular reports whether t describes a delta lobe.
func (t Type) IsSpecular() bool {
	return t&Specular != 0
}

func (t Type) String() string {
	var parts []string
	for _, f := range []struct {
		flag Type
		name string
	}{
		{Reflection, "reflection"},
		{Transmission, "transmission"},
		{Diffuse, "diffuse"},
		{Glossy, "glossy"},
		{Specular, "specular"},
	} {
		if t&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Sample is the result of importance sampling a lobe.
type Sample struct {
	Wi   core.Vec3 // Sampled incident direction (local frame)
	F    core.Vec3 // Lobe value for (wo, Wi)
	PDF  float64   // Solid angle density of Wi
	Type Type      // Type of the lobe that produced the sample
}

// BxDF is a single scattering lobe.
type BxDF interface {
	// Type returns the lobe classification.
	Type() Type

	// F evaluates the lobe for a pair of directions.
	F(wo, wi core.Vec3) core.Vec3

	// SampleF samples an incident direction given wo. Returns false when no
	// direction could be produced.
	SampleF(wo core.Vec3, u core.Vec2) (Sample, bool)

	// PDF returns the density SampleF would use for wi.
	PDF(wo, wi core.Vec3) float64

	// Rho returns the hemispherical-directional reflectance for wo.
	Rho(wo core.Vec3, samples []core.Vec2) core.Vec3
}

// Spherical trig of directions in the local shading frame, where z is the
// normal. Lobes in other packages build on the whole set, so it is
// exported as one piece.

func CosTheta(w core.Vec3) float64    { return w.Z }
func Cos2Theta(w core.Vec3) float64   { return w.Z * w.Z }
func AbsCosTheta(w core.Vec3) float64 { return math.Abs(w.Z) }
func Sin2Theta(w core.Vec3) float64   { return math.Max(0, 1-Cos2Theta(w)) }
func SinTheta(w core.Vec3) float64    { return math.Sqrt(Sin2Theta(w)) }
func TanTheta(w core.Vec3) float64    { return SinTheta(w) / CosTheta(w) }
func Tan2Theta(w core.Vec3) float64   { return Sin2Theta(w) / Cos2Theta(w) }

func CosPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return clamp(w.X/sinTheta, -1, 1)
}

func SinPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return clamp(w.Y/sinTheta, -1, 1)
}

func Cos2Phi(w core.Vec3) float64 { return CosPhi(w) * CosPhi(w) }
func Sin2Phi(w core.Vec3) float64 { return SinPhi(w) * SinPhi(w) }

// SameHemisphere reports whether w and wp lie on the same side of the surface.
func SameHemisphere(w, wp core.Vec3) bool {
	return w.Z*wp.Z > 0
}

// Reflect mirrors wo about n.
func Reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// FaceForward flips n so it lies in the hemisphere of v.
func FaceForward(n, v core.Vec3) core.Vec3 {
	if n.Dot(v) < 0 {
		return n.Negate()
	}
	return n
}

// SampleCosine is the default lobe sampling strategy: a cosine-weighted
// direction in the hemisphere of wo.
func SampleCosine(b BxDF, wo core.Vec3, u core.Vec2) (Sample, bool) {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	pdf := CosinePDF(wo, wi)
	if pdf == 0 {
		return Sample{}, false
	}
	return Sample{Wi: wi, F: b.F(wo, wi), PDF: pdf, Type: b.Type()}, true
}

// CosinePDF is the density matching SampleCosine.
func CosinePDF(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	return AbsCosTheta(wi) / math.Pi
}

// EstimateRho computes a Monte Carlo estimate of the hemispherical-directional
// reflectance of b for wo using its own sampling routine.
func EstimateRho(b BxDF, wo core.Vec3, samples []core.Vec2) core.Vec3 {
	if len(samples) == 0 {
		return core.Vec3{}
	}
	var r core.Vec3
	for _, u := range samples {
		s, ok := b.SampleF(wo, u)
		if ok && s.PDF > 0 {
			r = r.Add(s.F.Multiply(AbsCosTheta(s.Wi) / s.PDF))
		}
	}
	return r.Divide(float64(len(samples)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
