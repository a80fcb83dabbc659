package material

import (
	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// TransportMode tells a material whether the path carries radiance from
// lights (camera paths) or importance from the camera (light paths)
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// Material turns a surface hit into a set of scattering lobes
type Material interface {
	// ComputeScatteringFunctions resolves the material's textures at si and
	// attaches a BSDF to it. Every object it creates comes from arena and
	// must not outlive the arena's next Reset.
	ComputeScatteringFunctions(si *SurfaceInteraction, arena *bxdf.Arena, mode TransportMode, allowMultipleLobes bool) error
}

// Emitter interface for materials that emit light
type Emitter interface {
	// Emit returns the radiance leaving the surface towards w
	Emit(si *SurfaceInteraction, w core.Vec3) core.Vec3
}

// ShadingGeometry holds the possibly perturbed differential geometry used
// for shading
type ShadingGeometry struct {
	N    core.Vec3 // Shading normal, same hemisphere as the geometric normal
	Dpdu core.Vec3 // Shading tangent
	Dpdv core.Vec3 // Shading bitangent
}

// SurfaceInteraction contains information about a ray-surface intersection
type SurfaceInteraction struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Geometric normal, facing the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	UV        core.Vec2 // Surface parameterization
	Dpdu      core.Vec3 // Partial derivative of the position along u
	Dpdv      core.Vec3 // Partial derivative of the position along v
	Wo        core.Vec3 // Direction back towards the ray origin
	Shading   ShadingGeometry
	Material  Material   // Material of the hit object
	BSDF      *bxdf.BSDF // Set by Material.ComputeScatteringFunctions
}

// SetFaceNormal sets the normal vector and determines front/back face. The
// shading geometry is reset to the geometric one.
func (si *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if si.FrontFace {
		si.Normal = outwardNormal
	} else {
		si.Normal = outwardNormal.Negate()
	}
	si.Wo = ray.Direction.Negate().Normalize()
	si.Shading = ShadingGeometry{N: si.Normal, Dpdu: si.Dpdu, Dpdv: si.Dpdv}
}

// SetShadingGeometry installs a shading frame. The shading normal is flipped
// if needed so it lies on the same side as the geometric normal.
func (si *SurfaceInteraction) SetShadingGeometry(n, dpdu, dpdv core.Vec3) {
	n = n.Normalize()
	if n.Dot(si.Normal) < 0 {
		n = n.Negate()
	}
	si.Shading = ShadingGeometry{N: n, Dpdu: dpdu, Dpdv: dpdv}
}

// SpawnRay creates a ray leaving the surface in direction d
func (si *SurfaceInteraction) SpawnRay(d core.Vec3) core.Ray {
	return core.NewRay(core.OffsetRayOrigin(si.Point, si.Normal, d), d)
}

// newBSDF allocates an empty BSDF for si from arena
func newBSDF(si *SurfaceInteraction, arena *bxdf.Arena) *bxdf.BSDF {
	return bxdf.New(arena, bxdf.NewBSDF(si.Shading.N, si.Normal, si.Shading.Dpdu, 1))
}
