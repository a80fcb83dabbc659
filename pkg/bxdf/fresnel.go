package bxdf

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// Fresnel maps the cosine of the incident angle to the fraction of light
// reflected at an interface.
type Fresnel interface {
	Evaluate(cosI float64) core.Vec3
}

// FrDielectric returns the unpolarized Fresnel reflectance of a dielectric
// interface. A negative cosThetaI means the ray arrives from the inside, in
// which case the indices are swapped. Total internal reflection returns 1.
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = clamp(cosThetaI, -1, 1)
	if cosThetaI <= 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = math.Abs(cosThetaI)
	}

	// Snell's law
	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParl := ((etaT * cosThetaI) - (etaI * cosThetaT)) /
		((etaT * cosThetaI) + (etaI * cosThetaT))
	rPerp := ((etaI * cosThetaI) - (etaT * cosThetaT)) /
		((etaI * cosThetaI) + (etaT * cosThetaT))
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FresnelDielectric is the exact dielectric Fresnel term.
type FresnelDielectric struct {
	EtaI, EtaT float64
}

// Evaluate implements Fresnel.
func (f *FresnelDielectric) Evaluate(cosI float64) core.Vec3 {
	return core.NewGray(FrDielectric(cosI, f.EtaI, f.EtaT))
}

// FresnelNoOp reflects everything.
type FresnelNoOp struct{}

// Evaluate implements Fresnel.
func (FresnelNoOp) Evaluate(cosI float64) core.Vec3 {
	return core.NewGray(1)
}
