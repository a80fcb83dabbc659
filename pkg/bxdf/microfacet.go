package bxdf

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// MicrofacetDistribution describes the statistical orientation of microfacet
// normals.
type MicrofacetDistribution interface {
	// D is the normal distribution function for half vector wh.
	D(wh core.Vec3) float64

	// Lambda is the Smith auxiliary function for direction w.
	Lambda(w core.Vec3) float64

	// G1 is the masking term for a single direction.
	G1(w core.Vec3) float64

	// G is the combined masking-shadowing term.
	G(wo, wi core.Vec3) float64

	// SampleWh samples a microfacet normal as seen from wo.
	SampleWh(wo core.Vec3, u core.Vec2) core.Vec3

	// PDF is the density of SampleWh for wh.
	PDF(wo, wh core.Vec3) float64
}

// MaskingMode selects how G combines the per-direction masking terms.
type MaskingMode uint8

const (
	// MaskingCorrelated uses the height-correlated Smith form
	// 1 / (1 + Λ(wo) + Λ(wi)).
	MaskingCorrelated MaskingMode = iota

	// MaskingSeparable multiplies independent terms: G1(wo) · G1(wi).
	MaskingSeparable
)

func (m MaskingMode) String() string {
	if m == MaskingSeparable {
		return "separable"
	}
	return "correlated"
}

// TrowbridgeReitz is the anisotropic Trowbridge-Reitz (GGX) distribution.
// AlphaX and AlphaY are the spreads along the two tangent axes.
type TrowbridgeReitz struct {
	AlphaX, AlphaY float64
	Masking        MaskingMode
}

// NewTrowbridgeReitz creates a distribution using correlated masking.
func NewTrowbridgeReitz(alphaX, alphaY float64) *TrowbridgeReitz {
	return &TrowbridgeReitz{AlphaX: alphaX, AlphaY: alphaY}
}

// RoughnessToAlpha maps a perceptual roughness in [0,1] to a distribution
// alpha, the way pbrt's rough conductors do.
func RoughnessToAlpha(roughness float64) float64 {
	roughness = math.Max(roughness, 1e-3)
	x := math.Log(roughness)
	return 1.62142 + 0.819955*x + 0.1734*x*x + 0.0171201*x*x*x + 0.000640711*x*x*x*x
}

// D implements MicrofacetDistribution.
func (tr *TrowbridgeReitz) D(wh core.Vec3) float64 {
	tan2Theta := Tan2Theta(wh)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	cos4Theta := Cos2Theta(wh) * Cos2Theta(wh)
	e := (Cos2Phi(wh)/(tr.AlphaX*tr.AlphaX) + Sin2Phi(wh)/(tr.AlphaY*tr.AlphaY)) * tan2Theta
	return 1 / (math.Pi * tr.AlphaX * tr.AlphaY * cos4Theta * (1 + e) * (1 + e))
}

// Lambda implements MicrofacetDistribution.
func (tr *TrowbridgeReitz) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(TanTheta(w))
	if math.IsInf(absTanTheta, 0) || math.IsNaN(absTanTheta) {
		return 0
	}
	alpha := math.Sqrt(Cos2Phi(w)*tr.AlphaX*tr.AlphaX + Sin2Phi(w)*tr.AlphaY*tr.AlphaY)
	alpha2Tan2Theta := (alpha * absTanTheta) * (alpha * absTanTheta)
	return (-1 + math.Sqrt(1+alpha2Tan2Theta)) / 2
}

// G1 implements MicrofacetDistribution.
func (tr *TrowbridgeReitz) G1(w core.Vec3) float64 {
	return 1 / (1 + tr.Lambda(w))
}

// G implements MicrofacetDistribution.
func (tr *TrowbridgeReitz) G(wo, wi core.Vec3) float64 {
	if tr.Masking == MaskingSeparable {
		return tr.G1(wo) * tr.G1(wi)
	}
	return 1 / (1 + tr.Lambda(wo) + tr.Lambda(wi))
}

// SampleWh samples the distribution of visible normals from wo.
func (tr *TrowbridgeReitz) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	flip := wo.Z < 0
	if flip {
		wo = wo.Negate()
	}
	wh := trowbridgeReitzSample(wo, tr.AlphaX, tr.AlphaY, u.X, u.Y)
	if flip {
		wh = wh.Negate()
	}
	return wh
}

// PDF implements MicrofacetDistribution for visible-normal sampling.
func (tr *TrowbridgeReitz) PDF(wo, wh core.Vec3) float64 {
	cosO := AbsCosTheta(wo)
	if cosO == 0 {
		return 0
	}
	return tr.D(wh) * tr.G1(wo) * wo.AbsDot(wh) / cosO
}

// trowbridgeReitzSample11 samples the slope distribution of the unit-roughness
// configuration seen at cosTheta.
func trowbridgeReitzSample11(cosTheta, u1, u2 float64) (slopeX, slopeY float64) {
	// Normal incidence
	if cosTheta > .9999 {
		r := math.Sqrt(u1 / (1 - u1))
		phi := 2 * math.Pi * u2
		return r * math.Cos(phi), r * math.Sin(phi)
	}

	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	tanTheta := sinTheta / cosTheta
	a := 1 / tanTheta
	g1 := 2 / (1 + math.Sqrt(1+1/(a*a)))

	// slope x
	A := 2*u1/g1 - 1
	tmp := 1 / (A*A - 1)
	if tmp > 1e10 {
		tmp = 1e10
	}
	B := tanTheta
	D := math.Sqrt(math.Max(B*B*tmp*tmp-(A*A-B*B)*tmp, 0))
	slopeX1 := B*tmp - D
	slopeX2 := B*tmp + D
	if A < 0 || slopeX2 > 1/tanTheta {
		slopeX = slopeX1
	} else {
		slopeX = slopeX2
	}

	// slope y
	var s float64
	if u2 > 0.5 {
		s = 1
		u2 = 2 * (u2 - .5)
	} else {
		s = -1
		u2 = 2 * (.5 - u2)
	}
	z := (u2 * (u2*(u2*0.27385-0.73369) + 0.46341)) /
		(u2*(u2*(u2*0.093073+0.309420)-1.000000) + 0.597999)
	slopeY = s * z * math.Sqrt(1+slopeX*slopeX)
	return slopeX, slopeY
}

func trowbridgeReitzSample(wi core.Vec3, alphaX, alphaY, u1, u2 float64) core.Vec3 {
	// Stretch
	wiStretched := core.NewVec3(alphaX*wi.X, alphaY*wi.Y, wi.Z).Normalize()

	slopeX, slopeY := trowbridgeReitzSample11(CosTheta(wiStretched), u1, u2)

	// Rotate
	cosPhi, sinPhi := CosPhi(wiStretched), SinPhi(wiStretched)
	slopeX, slopeY = cosPhi*slopeX-sinPhi*slopeY, sinPhi*slopeX+cosPhi*slopeY

	// Unstretch
	slopeX *= alphaX
	slopeY *= alphaY

	return core.NewVec3(-slopeX, -slopeY, 1).Normalize()
}
