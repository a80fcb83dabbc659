package loaders

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
)

// TransformPoint applies m to a position
func TransformPoint(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	v := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if v[3] != 0 && v[3] != 1 {
		v = v.Mul(1 / v[3])
	}
	return core.NewVec3(v[0], v[1], v[2])
}

// TransformVector applies the linear part of m to a direction
func TransformVector(m mgl64.Mat4, d core.Vec3) core.Vec3 {
	v := m.Mat3().Mul3x1(mgl64.Vec3{d.X, d.Y, d.Z})
	return core.NewVec3(v[0], v[1], v[2])
}

// TransformNormal transforms a surface normal with the inverse transpose of
// m. The result is not normalized.
func TransformNormal(m mgl64.Mat4, n core.Vec3) core.Vec3 {
	v := m.Mat3().Inv().Transpose().Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	return core.NewVec3(v[0], v[1], v[2])
}

// TransformMesh returns a copy of mesh with m applied to its positions and
// normals. Indices and uvs are shared with the input.
func TransformMesh(mesh geometry.TriangleMeshData, m mgl64.Mat4) geometry.TriangleMeshData {
	if m == mgl64.Ident4() {
		return mesh
	}
	out := geometry.TriangleMeshData{
		Vertices: make([]core.Vec3, len(mesh.Vertices)),
		Indices:  mesh.Indices,
		UVs:      mesh.UVs,
	}
	for i, p := range mesh.Vertices {
		out.Vertices[i] = TransformPoint(m, p)
	}
	if mesh.Normals != nil {
		normalMatrix := m.Mat3().Inv().Transpose()
		out.Normals = make([]core.Vec3, len(mesh.Normals))
		for i, n := range mesh.Normals {
			v := normalMatrix.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
			out.Normals[i] = core.NewVec3(v[0], v[1], v[2]).Normalize()
		}
	}

	// A mirroring transform flips the winding
	if m.Mat3().Det() < 0 {
		indices := make([]int, len(mesh.Indices))
		copy(indices, mesh.Indices)
		for i := 0; i+2 < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
		out.Indices = indices
	}
	return out
}
