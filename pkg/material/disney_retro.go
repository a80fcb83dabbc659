package material

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// DisneyRetro adds the retro-reflection bump of rough surfaces, strongest
// when the half vector is far from both directions.
type DisneyRetro struct {
	R         core.Vec3
	Roughness float64
}

// NewDisneyRetro creates a retro-reflection lobe
func NewDisneyRetro(r core.Vec3, roughness float64) *DisneyRetro {
	return &DisneyRetro{R: r, Roughness: roughness}
}

// Type implements bxdf.BxDF.
func (d *DisneyRetro) Type() bxdf.Type {
	return bxdf.Reflection | bxdf.Diffuse
}

// F implements bxdf.BxDF.
func (d *DisneyRetro) F(wo, wi core.Vec3) core.Vec3 {
	wh := wi.Add(wo)
	if wh.IsZero() {
		return core.Vec3{}
	}
	wh = wh.Normalize()
	cosThetaD := wi.Dot(wh)

	fo := SchlickWeight(bxdf.AbsCosTheta(wo))
	fi := SchlickWeight(bxdf.AbsCosTheta(wi))
	rr := 2 * d.Roughness * cosThetaD * cosThetaD

	return d.R.Multiply(rr * (fo + fi + fo*fi*(rr-1)) / math.Pi)
}

// SampleF implements bxdf.BxDF with cosine-weighted hemisphere sampling.
func (d *DisneyRetro) SampleF(wo core.Vec3, u core.Vec2) (bxdf.Sample, bool) {
	return bxdf.SampleCosine(d, wo, u)
}

// PDF implements bxdf.BxDF.
func (d *DisneyRetro) PDF(wo, wi core.Vec3) float64 {
	return bxdf.CosinePDF(wo, wi)
}

// Rho returns R as a bound on the lobe's reflectance.
func (d *DisneyRetro) Rho(wo core.Vec3, samples []core.Vec2) core.Vec3 {
	return d.R
}
