package material

import (
	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// Emissive represents a light-emitting material. It emits from its front
// face only and does not scatter.
type Emissive struct {
	Emission core.Vec3 // Emitted radiance
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: emission}
}

// ComputeScatteringFunctions attaches a BSDF with no lobes
func (e *Emissive) ComputeScatteringFunctions(si *SurfaceInteraction, arena *bxdf.Arena, mode TransportMode, allowMultipleLobes bool) error {
	si.BSDF = newBSDF(si, arena)
	return nil
}

// Emit returns the emitted radiance for front-face hits
func (e *Emissive) Emit(si *SurfaceInteraction, w core.Vec3) core.Vec3 {
	if !si.FrontFace {
		return core.Vec3{}
	}
	return e.Emission
}
