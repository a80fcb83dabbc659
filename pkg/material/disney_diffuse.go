package material

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// DisneyDiffuse is the Lambertian base of the principled model, darkened
// towards grazing angles by the Schlick weight of both directions.
type DisneyDiffuse struct {
	R core.Vec3
}

// NewDisneyDiffuse creates a diffuse lobe with reflectance r
func NewDisneyDiffuse(r core.Vec3) *DisneyDiffuse {
	return &DisneyDiffuse{R: r}
}

// Type implements bxdf.BxDF.
func (d *DisneyDiffuse) Type() bxdf.Type {
	return bxdf.Reflection | bxdf.Diffuse
}

// F implements bxdf.BxDF.
func (d *DisneyDiffuse) F(wo, wi core.Vec3) core.Vec3 {
	fo := SchlickWeight(bxdf.AbsCosTheta(wo))
	fi := SchlickWeight(bxdf.AbsCosTheta(wi))
	return d.R.Multiply((1 - fo/2) * (1 - fi/2) / math.Pi)
}

// SampleF implements bxdf.BxDF with cosine-weighted hemisphere sampling.
func (d *DisneyDiffuse) SampleF(wo core.Vec3, u core.Vec2) (bxdf.Sample, bool) {
	return bxdf.SampleCosine(d, wo, u)
}

// PDF implements bxdf.BxDF.
func (d *DisneyDiffuse) PDF(wo, wi core.Vec3) float64 {
	return bxdf.CosinePDF(wo, wi)
}

// Rho returns R. The grazing falloff is ignored, so this is an upper bound
// of the true albedo.
func (d *DisneyDiffuse) Rho(wo core.Vec3, samples []core.Vec2) core.Vec3 {
	return d.R
}
