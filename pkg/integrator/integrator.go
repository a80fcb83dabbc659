package integrator

import (
	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance arriving along ray. Scattering functions
	// are allocated from arena, which the integrator may Reset at will; the
	// arena must not be shared between goroutines.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, arena *bxdf.Arena) core.Vec3
}
