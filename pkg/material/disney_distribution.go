package material

import "github.com/df07/go-principled-shading/pkg/bxdf"

// NewDisneyMicrofacetDistribution returns the anisotropic Trowbridge-Reitz
// distribution used by the principled specular lobe. Masking and shadowing
// are treated as independent: G(wo, wi) = G1(wo) · G1(wi).
func NewDisneyMicrofacetDistribution(alphaX, alphaY float64) bxdf.TrowbridgeReitz {
	return bxdf.TrowbridgeReitz{
		AlphaX:  alphaX,
		AlphaY:  alphaY,
		Masking: bxdf.MaskingSeparable,
	}
}
