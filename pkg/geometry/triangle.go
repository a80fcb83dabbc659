package geometry

import (
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// Triangle represents a single triangle defined by three vertices, with
// optional per-vertex normals and texture coordinates
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	Material   material.Material // Material of the triangle

	normals    *[3]core.Vec3 // Per-vertex shading normals, nil for flat shading
	uvs        *[3]core.Vec2 // Per-vertex texture coordinates, nil for defaults
	normal     core.Vec3     // Cached geometric normal
	dpdu, dpdv core.Vec3     // Cached parametric derivatives
	bbox       core.AABB     // Cached bounding box
}

// NewTriangle creates a new flat-shaded triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material material.Material) *Triangle {
	return NewSmoothTriangle(v0, v1, v2, nil, nil, material)
}

// NewSmoothTriangle creates a triangle with optional per-vertex normals and
// UVs. Either may be nil.
func NewSmoothTriangle(v0, v1, v2 core.Vec3, normals *[3]core.Vec3, uvs *[3]core.Vec2, material material.Material) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
		normals:  normals,
		uvs:      uvs,
	}

	// Precompute normal, derivatives and bounding box for efficiency
	t.computeNormal()
	t.computeDerivatives()
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)

	return t
}

// computeNormal calculates and caches the triangle's normal vector. With
// vertex normals present the geometric normal is flipped to agree with them.
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()

	if t.normals != nil {
		avg := t.normals[0].Add(t.normals[1]).Add(t.normals[2])
		if avg.Dot(t.normal) < 0 {
			t.normal = t.normal.Negate()
		}
	}
}

// computeDerivatives solves for dp/du and dp/dv from the UV parameterization
func (t *Triangle) computeDerivatives() {
	uv := t.vertexUVs()
	duv02 := core.NewVec2(uv[0].X-uv[2].X, uv[0].Y-uv[2].Y)
	duv12 := core.NewVec2(uv[1].X-uv[2].X, uv[1].Y-uv[2].Y)
	dp02 := t.V0.Subtract(t.V2)
	dp12 := t.V1.Subtract(t.V2)

	det := duv02.X*duv12.Y - duv02.Y*duv12.X
	if det > -1e-12 && det < 1e-12 {
		// Degenerate UVs: any tangent frame around the normal will do
		t.dpdu, t.dpdv = core.CoordinateSystem(t.normal)
		return
	}
	inv := 1 / det
	t.dpdu = dp02.Multiply(duv12.Y).Subtract(dp12.Multiply(duv02.Y)).Multiply(inv)
	t.dpdv = dp12.Multiply(duv02.X).Subtract(dp02.Multiply(duv12.X)).Multiply(inv)
	if t.dpdu.Cross(t.dpdv).LengthSquared() == 0 {
		t.dpdu, t.dpdv = core.CoordinateSystem(t.normal)
	}
}

func (t *Triangle) vertexUVs() [3]core.Vec2 {
	if t.uvs != nil {
		return *t.uvs
	}
	return [3]core.Vec2{core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1)}
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	const epsilon = 1e-8

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return nil, false
	}

	// Barycentric weights of V0, V1, V2
	b0, b1, b2 := 1-u-v, u, v
	uv := t.vertexUVs()

	si := &material.SurfaceInteraction{
		T:        tParam,
		Point:    ray.At(tParam),
		UV:       uv[0].Multiply(b0).Add(uv[1].Multiply(b1)).Add(uv[2].Multiply(b2)),
		Dpdu:     t.dpdu,
		Dpdv:     t.dpdv,
		Material: t.Material,
	}
	si.SetFaceNormal(ray, t.normal)

	if t.normals != nil {
		ns := t.normals[0].Multiply(b0).Add(t.normals[1].Multiply(b1)).Add(t.normals[2].Multiply(b2))
		if !ns.IsZero() {
			si.SetShadingGeometry(ns, t.dpdu, t.dpdv)
		}
	}

	return si, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's geometric normal
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}
