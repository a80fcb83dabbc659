package material

import (
	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// DisneyFresnel blends a dielectric Fresnel term with a tinted Schlick
// approximation, weighted by how metallic the surface is.
type DisneyFresnel struct {
	R0       core.Vec3 // Normal-incidence reflectance of the metallic part
	Metallic float64   // 0 is a pure dielectric, 1 a pure Schlick conductor
	Eta      float64
}

// NewDisneyFresnel creates a blended Fresnel term
func NewDisneyFresnel(r0 core.Vec3, metallic, eta float64) *DisneyFresnel {
	return &DisneyFresnel{R0: r0, Metallic: metallic, Eta: eta}
}

// Evaluate implements bxdf.Fresnel.
func (f *DisneyFresnel) Evaluate(cosI float64) core.Vec3 {
	dielectric := core.NewGray(bxdf.FrDielectric(cosI, 1, f.Eta))
	return core.Lerp(f.Metallic, dielectric, FrSchlickColor(f.R0, cosI))
}
