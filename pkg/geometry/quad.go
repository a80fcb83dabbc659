package geometry

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// Quad is the parallelogram corner + a·U + b·V with a, b in [0,1].
// (a, b) doubles as the surface UV.
type Quad struct {
	Corner   core.Vec3
	U, V     core.Vec3
	Normal   core.Vec3
	Material material.Material

	offset float64   // Normal·p for points on the plane
	w      core.Vec3 // (U×V)/|U×V|², projects onto the edge basis
}

func NewQuad(corner, u, v core.Vec3, material material.Material) *Quad {
	n := u.Cross(v)
	normal := n.Normalize()
	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: material,
		offset:   normal.Dot(corner),
		w:        n.Divide(n.LengthSquared()),
	}
}

func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	cos := ray.Direction.Dot(q.Normal)
	if math.Abs(cos) < 1e-8 {
		return nil, false
	}
	t := (q.offset - ray.Origin.Dot(q.Normal)) / cos
	if t < tMin || t > tMax {
		return nil, false
	}

	p := ray.At(t)
	rel := p.Subtract(q.Corner)
	a := q.w.Dot(rel.Cross(q.V))
	b := q.w.Dot(q.U.Cross(rel))
	if a < 0 || a > 1 || b < 0 || b > 1 {
		return nil, false
	}

	si := &material.SurfaceInteraction{
		T:        t,
		Point:    p,
		UV:       core.NewVec2(a, b),
		Dpdu:     q.U,
		Dpdv:     q.V,
		Material: q.Material,
	}
	si.SetFaceNormal(ray, q.Normal)
	return si, true
}

// BoundingBox is padded so axis-aligned quads keep a non-zero thickness
func (q *Quad) BoundingBox() core.AABB {
	far := q.Corner.Add(q.U).Add(q.V)
	box := core.NewAABBFromPoints(q.Corner, q.Corner.Add(q.U), q.Corner.Add(q.V), far)
	pad := core.NewGray(1e-4)
	return core.NewAABB(box.Min.Subtract(pad), box.Max.Add(pad))
}
