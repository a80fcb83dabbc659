package material

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-principled-shading/pkg/core"
)

// NormalMap perturbs the shading frame of si with a tangent-space normal
// texture. Texel values in [0,1] are remapped to [-1,1]; +Z follows the
// current shading normal and +X the shading tangent.
func NormalMap(normalTex ColorSource, si *SurfaceInteraction) {
	c := normalTex.Evaluate(si.UV, si.Point)
	local := mgl64.Vec3{2*c.X - 1, 2*c.Y - 1, 2*c.Z - 1}
	if local.Len() == 0 {
		return
	}
	local = local.Normalize()

	n := si.Shading.N.Normalize()
	t := si.Shading.Dpdu
	t = t.Subtract(n.Multiply(n.Dot(t)))
	if t.LengthSquared() < 1e-16 {
		t, _ = core.CoordinateSystem(n)
	}
	t = t.Normalize()
	b := n.Cross(t)

	frame := mgl64.Mat3FromCols(toMgl(t), toMgl(b), toMgl(n))
	ns := fromMgl(frame.Mul3x1(local)).Normalize()

	// Rebuild tangents around the new normal, keeping their lengths
	ulen := si.Shading.Dpdu.Length()
	vlen := si.Shading.Dpdv.Length()
	dpdu := si.Shading.Dpdu.Subtract(ns.Multiply(ns.Dot(si.Shading.Dpdu)))
	if dpdu.LengthSquared() < 1e-16 {
		dpdu = t
	}
	dpdu = dpdu.Normalize().Multiply(ulen)
	dpdv := ns.Cross(dpdu).Normalize().Multiply(vlen)

	si.SetShadingGeometry(ns, dpdu, dpdv)
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
