package bxdf

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// MaxBxDFs is the number of lobes a BSDF can hold
const MaxBxDFs = 8

// oneMinusEpsilon is the largest float64 below 1
const oneMinusEpsilon = 0x1.fffffffffffffp-1

// BSDF aggregates the lobes attached to one surface interaction and converts
// between world space and the local shading frame. Lobes live in a fixed
// inline array; the BSDF never allocates.
type BSDF struct {
	Eta float64 // Relative index of refraction across the boundary

	ns, ng core.Vec3 // Shading and geometric normals
	ss, ts core.Vec3 // Shading tangent and bitangent

	lobes [MaxBxDFs]BxDF
	n     int
}

// NewBSDF builds the shading frame from the shading normal ns, the geometric
// normal ng and the surface tangent dpdu. A degenerate dpdu is replaced by
// an arbitrary tangent.
func NewBSDF(ns, ng, dpdu core.Vec3, eta float64) BSDF {
	ns = ns.Normalize()
	ss := dpdu.Subtract(ns.Multiply(ns.Dot(dpdu)))
	if ss.LengthSquared() < 1e-16 {
		ss, _ = core.CoordinateSystem(ns)
	}
	ss = ss.Normalize()
	return BSDF{
		Eta: eta,
		ns:  ns,
		ng:  ng.Normalize(),
		ss:  ss,
		ts:  ns.Cross(ss),
	}
}

// Add registers a lobe. Fails with ErrTooManyLobes once MaxBxDFs lobes are
// present.
func (b *BSDF) Add(lobe BxDF) error {
	if b.n >= MaxBxDFs {
		return ErrTooManyLobes
	}
	b.lobes[b.n] = lobe
	b.n++
	return nil
}

// Lobes returns the registered lobes in registration order
func (b *BSDF) Lobes() []BxDF {
	return b.lobes[:b.n]
}

// NumComponents counts the lobes matching flags
func (b *BSDF) NumComponents(flags Type) int {
	count := 0
	for _, lobe := range b.Lobes() {
		if lobe.Type().HasFlags(flags) {
			count++
		}
	}
	return count
}

// ShadingNormal returns the normal of the shading frame
func (b *BSDF) ShadingNormal() core.Vec3 {
	return b.ns
}

// WorldToLocal expresses v in the shading frame
func (b *BSDF) WorldToLocal(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(b.ss), v.Dot(b.ts), v.Dot(b.ns))
}

// LocalToWorld converts v from the shading frame to world space
func (b *BSDF) LocalToWorld(v core.Vec3) core.Vec3 {
	return b.ss.Multiply(v.X).Add(b.ts.Multiply(v.Y)).Add(b.ns.Multiply(v.Z))
}

// F evaluates the sum of the matching lobes for world space directions. The
// geometric normal decides whether the pair is a reflection or a
// transmission so shading normals cannot leak light through the surface.
func (b *BSDF) F(woWorld, wiWorld core.Vec3, flags Type) core.Vec3 {
	wo := b.WorldToLocal(woWorld)
	wi := b.WorldToLocal(wiWorld)
	if wo.Z == 0 {
		return core.Vec3{}
	}
	reflect := wiWorld.Dot(b.ng)*woWorld.Dot(b.ng) > 0

	var f core.Vec3
	for _, lobe := range b.Lobes() {
		t := lobe.Type()
		if !t.HasFlags(flags) {
			continue
		}
		if (reflect && t&Reflection != 0) || (!reflect && t&Transmission != 0) {
			f = f.Add(lobe.F(wo, wi))
		}
	}
	return f
}

// SampleF picks one matching lobe with u.X, samples it and returns the
// combined value and density of all matching lobes for the sampled
// direction. The returned Wi is in world space.
func (b *BSDF) SampleF(woWorld core.Vec3, u core.Vec2, flags Type) (Sample, bool) {
	matching := b.NumComponents(flags)
	if matching == 0 {
		return Sample{}, false
	}
	comp := min(int(math.Floor(u.X*float64(matching))), matching-1)

	var chosen BxDF
	count := comp
	for _, lobe := range b.Lobes() {
		if lobe.Type().HasFlags(flags) {
			if count == 0 {
				chosen = lobe
				break
			}
			count--
		}
	}

	// Remap the consumed sample dimension back to [0,1)
	uRemapped := core.NewVec2(math.Min(u.X*float64(matching)-float64(comp), oneMinusEpsilon), u.Y)

	wo := b.WorldToLocal(woWorld)
	if wo.Z == 0 {
		return Sample{}, false
	}
	s, ok := chosen.SampleF(wo, uRemapped)
	if !ok || s.PDF == 0 {
		return Sample{}, false
	}
	wi := s.Wi
	wiWorld := b.LocalToWorld(wi)

	if !s.Type.IsSpecular() && matching > 1 {
		for _, lobe := range b.Lobes() {
			if lobe != chosen && lobe.Type().HasFlags(flags) {
				s.PDF += lobe.PDF(wo, wi)
			}
		}
	}
	if matching > 1 {
		s.PDF /= float64(matching)
	}

	if !s.Type.IsSpecular() {
		reflect := wiWorld.Dot(b.ng)*woWorld.Dot(b.ng) > 0
		s.F = core.Vec3{}
		for _, lobe := range b.Lobes() {
			t := lobe.Type()
			if !t.HasFlags(flags) {
				continue
			}
			if (reflect && t&Reflection != 0) || (!reflect && t&Transmission != 0) {
				s.F = s.F.Add(lobe.F(wo, wi))
			}
		}
	}

	s.Wi = wiWorld
	return s, true
}

// PDF returns the density SampleF uses for wiWorld
func (b *BSDF) PDF(woWorld, wiWorld core.Vec3, flags Type) float64 {
	if b.n == 0 {
		return 0
	}
	wo := b.WorldToLocal(woWorld)
	wi := b.WorldToLocal(wiWorld)
	if wo.Z == 0 {
		return 0
	}

	pdf := 0.0
	matching := 0
	for _, lobe := range b.Lobes() {
		if lobe.Type().HasFlags(flags) {
			matching++
			pdf += lobe.PDF(wo, wi)
		}
	}
	if matching == 0 {
		return 0
	}
	return pdf / float64(matching)
}

// Rho sums the hemispherical-directional reflectance of the matching lobes
func (b *BSDF) Rho(woWorld core.Vec3, samples []core.Vec2, flags Type) core.Vec3 {
	wo := b.WorldToLocal(woWorld)
	var r core.Vec3
	for _, lobe := range b.Lobes() {
		if lobe.Type().HasFlags(flags) {
			r = r.Add(lobe.Rho(wo, samples))
		}
	}
	return r
}
