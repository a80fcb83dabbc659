package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// ErrInvalidMesh is returned for inconsistent mesh data
var ErrInvalidMesh = errors.New("geometry: invalid mesh")

// TriangleMesh represents a collection of triangles with efficient ray intersection
// It uses an internal BVH (Bounding Volume Hierarchy) for fast intersection tests
type TriangleMesh struct {
	triangles []Shape
	bvh       *BVH
}

// TriangleMeshData is indexed mesh geometry. Normals and UVs are optional
// and, when present, hold one entry per vertex.
type TriangleMeshData struct {
	Vertices []core.Vec3
	Indices  []int
	Normals  []core.Vec3
	UVs      []core.Vec2
}

// NewTriangleMesh creates a new triangle mesh from indexed vertex data
func NewTriangleMesh(data TriangleMeshData, material material.Material) (*TriangleMesh, error) {
	if len(data.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(data.Indices))
	}
	if data.Normals != nil && len(data.Normals) != len(data.Vertices) {
		return nil, fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, len(data.Normals), len(data.Vertices))
	}
	if data.UVs != nil && len(data.UVs) != len(data.Vertices) {
		return nil, fmt.Errorf("%w: %d uvs for %d vertices", ErrInvalidMesh, len(data.UVs), len(data.Vertices))
	}

	numTriangles := len(data.Indices) / 3
	triangles := make([]Shape, numTriangles)

	for i := 0; i < numTriangles; i++ {
		idx := [3]int{data.Indices[i*3], data.Indices[i*3+1], data.Indices[i*3+2]}
		for _, j := range idx {
			if j < 0 || j >= len(data.Vertices) {
				return nil, fmt.Errorf("%w: index %d out of range in triangle %d", ErrInvalidMesh, j, i)
			}
		}

		var normals *[3]core.Vec3
		if data.Normals != nil {
			normals = &[3]core.Vec3{data.Normals[idx[0]], data.Normals[idx[1]], data.Normals[idx[2]]}
		}
		var uvs *[3]core.Vec2
		if data.UVs != nil {
			uvs = &[3]core.Vec2{data.UVs[idx[0]], data.UVs[idx[1]], data.UVs[idx[2]]}
		}

		triangles[i] = NewSmoothTriangle(data.Vertices[idx[0]], data.Vertices[idx[1]], data.Vertices[idx[2]], normals, uvs, material)
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(triangles),
	}, nil
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	return tm.bvh.Hit(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bvh.BoundingBox()
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.triangles)
}

// GetTriangles returns the individual triangles
func (tm *TriangleMesh) GetTriangles() []Shape {
	return tm.triangles
}
