package bxdf

import (
	"github.com/df07/go-principled-shading/pkg/core"
)

// MicrofacetReflection is the Cook-Torrance glossy reflection lobe
// R · D · G · F / (4 cosθi cosθo).
type MicrofacetReflection struct {
	R            core.Vec3
	Distribution MicrofacetDistribution
	Fresnel      Fresnel
}

// NewMicrofacetReflection creates a microfacet reflection lobe
func NewMicrofacetReflection(r core.Vec3, distribution MicrofacetDistribution, fresnel Fresnel) *MicrofacetReflection {
	return &MicrofacetReflection{R: r, Distribution: distribution, Fresnel: fresnel}
}

// Type implements BxDF.
func (m *MicrofacetReflection) Type() Type {
	return Reflection | Glossy
}

// F implements BxDF.
func (m *MicrofacetReflection) F(wo, wi core.Vec3) core.Vec3 {
	cosThetaO := AbsCosTheta(wo)
	cosThetaI := AbsCosTheta(wi)
	wh := wi.Add(wo)

	// Grazing directions and opposed directions carry no energy
	if cosThetaI == 0 || cosThetaO == 0 {
		return core.Vec3{}
	}
	if wh.IsZero() {
		return core.Vec3{}
	}
	wh = wh.Normalize()

	f := m.Fresnel.Evaluate(wi.Dot(FaceForward(wh, core.NewVec3(0, 0, 1))))
	scale := m.Distribution.D(wh) * m.Distribution.G(wo, wi) / (4 * cosThetaI * cosThetaO)
	return m.R.MultiplyVec(f).Multiply(scale)
}

// SampleF implements BxDF by sampling visible microfacet normals.
func (m *MicrofacetReflection) SampleF(wo core.Vec3, u core.Vec2) (Sample, bool) {
	if wo.Z == 0 {
		return Sample{}, false
	}
	wh := m.Distribution.SampleWh(wo, u)
	if wo.Dot(wh) < 0 {
		return Sample{}, false
	}
	wi := Reflect(wo, wh)
	if !SameHemisphere(wo, wi) {
		return Sample{}, false
	}

	pdf := m.Distribution.PDF(wo, wh) / (4 * wo.Dot(wh))
	return Sample{Wi: wi, F: m.F(wo, wi), PDF: pdf, Type: m.Type()}, true
}

// PDF implements BxDF.
func (m *MicrofacetReflection) PDF(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	wh := wo.Add(wi).Normalize()
	return m.Distribution.PDF(wo, wh) / (4 * wo.Dot(wh))
}

// Rho implements BxDF.
func (m *MicrofacetReflection) Rho(wo core.Vec3, samples []core.Vec2) core.Vec3 {
	return EstimateRho(m, wo, samples)
}
