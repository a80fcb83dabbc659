package material

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// SchlickWeight returns (1 - cosθ)^5 with 1 - cosθ clamped to [0, 1]
func SchlickWeight(cosTheta float64) float64 {
	m := math.Max(0, math.Min(1, 1-cosTheta))
	return (m * m) * (m * m) * m
}

// FrSchlick interpolates from r0 at normal incidence to 1 at grazing
// incidence using the Schlick weight
func FrSchlick(r0, cosTheta float64) float64 {
	return lerp(SchlickWeight(cosTheta), r0, 1)
}

// FrSchlickColor is FrSchlick applied per channel, tending to white at
// grazing incidence
func FrSchlickColor(r0 core.Vec3, cosTheta float64) core.Vec3 {
	return core.Lerp(SchlickWeight(cosTheta), r0, core.NewGray(1))
}

// SchlickR0FromEta returns the normal-incidence reflectance of an interface
// with relative index of refraction eta. eta must be positive.
func SchlickR0FromEta(eta float64) float64 {
	return sqr(eta-1) / sqr(eta+1)
}

func sqr(x float64) float64 {
	return x * x
}

func lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}
