package loaders

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
)

// ErrInvalidGLTF is returned for glTF documents without usable geometry
var ErrInvalidGLTF = errors.New("loaders: invalid glTF data")

// GLTFMaterial is the metallic-roughness part of a glTF material
type GLTFMaterial struct {
	Name      string
	BaseColor core.Vec3
	Metallic  float64
	Roughness float64
}

// DefaultGLTFMaterial is used by primitives without a material, following
// the glTF defaults
var DefaultGLTFMaterial = GLTFMaterial{Name: "default", BaseColor: core.NewGray(1), Metallic: 1, Roughness: 1}

// DisneyParams maps the material onto diffuse and specular colors: the
// metallic share of the base color becomes specular.
func (m GLTFMaterial) DisneyParams() (diffuse, specular core.Vec3, roughness float64) {
	diffuse = m.BaseColor.Multiply(1 - m.Metallic)
	specular = m.BaseColor.Multiply(m.Metallic)
	return diffuse, specular, m.Roughness
}

// GLTFPrimitive is one mesh primitive in world space with its material
type GLTFPrimitive struct {
	Name     string
	Mesh     geometry.TriangleMeshData
	Material GLTFMaterial
}

// LoadGLTF opens a .gltf or .glb file and flattens the default scene into
// world-space triangle primitives
func LoadGLTF(path string) ([]GLTFPrimitive, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	prims, err := ConvertGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prims, nil
}

// ConvertGLTF flattens an in-memory glTF document. Node transforms are
// applied; when no node of the scene references a mesh, every mesh is
// emitted untransformed.
func ConvertGLTF(doc *gltf.Document) ([]GLTFPrimitive, error) {
	materials := make([]GLTFMaterial, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = convertGLTFMaterial(gm)
	}

	var result []GLTFPrimitive
	referenced := false
	emit := func(meshIdx int, transform mgl64.Mat4) error {
		if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
			return fmt.Errorf("%w: mesh index %d out of range", ErrInvalidGLTF, meshIdx)
		}
		gm := doc.Meshes[meshIdx]
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			mesh, err := readGLTFPrimitive(doc, prim)
			if err != nil {
				return fmt.Errorf("mesh %d prim %d: %w", meshIdx, pi, err)
			}
			mat := DefaultGLTFMaterial
			if prim.Material != nil && *prim.Material < len(materials) {
				mat = materials[*prim.Material]
			}
			result = append(result, GLTFPrimitive{
				Name:     fmt.Sprintf("%s_p%d", gm.Name, pi),
				Mesh:     TransformMesh(mesh, transform),
				Material: mat,
			})
		}
		return nil
	}

	roots := gltfRootNodes(doc)
	var visit func(nodeIdx int, parent mgl64.Mat4, depth int) error
	visit = func(nodeIdx int, parent mgl64.Mat4, depth int) error {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return fmt.Errorf("%w: bad node reference %d", ErrInvalidGLTF, nodeIdx)
		}
		node := doc.Nodes[nodeIdx]
		world := parent.Mul4(gltfNodeMatrix(node))
		if node.Mesh != nil {
			referenced = true
			if err := emit(*node.Mesh, world); err != nil {
				return err
			}
		}
		for _, child := range node.Children {
			if err := visit(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := visit(root, mgl64.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	if !referenced {
		for i := range doc.Meshes {
			if err := emit(i, mgl64.Ident4()); err != nil {
				return nil, err
			}
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no triangle primitives", ErrInvalidGLTF)
	}
	return result, nil
}

// gltfRootNodes returns the nodes of the default scene, or every parentless
// node when there is no default scene
func gltfRootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeMatrix returns the local transform of a node: its matrix when set,
// otherwise T·R·S
func gltfNodeMatrix(node *gltf.Node) mgl64.Mat4 {
	if node.Matrix != ([16]float64{}) && node.Matrix != mgl64.Ident4() {
		return mgl64.Mat4(node.Matrix)
	}
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault() // x, y, z, w
	s := node.ScaleOrDefault()

	rotation := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

func convertGLTFMaterial(gm *gltf.Material) GLTFMaterial {
	mat := DefaultGLTFMaterial
	mat.Name = gm.Name
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.BaseColor = core.NewVec3(cf[0], cf[1], cf[2])
		mat.Metallic = pbr.MetallicFactorOrDefault()
		mat.Roughness = pbr.RoughnessFactorOrDefault()
	}
	return mat
}

// readGLTFPrimitive reads positions, normals, uvs and indices. Non-indexed
// primitives use consecutive vertices.
func readGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) (geometry.TriangleMeshData, error) {
	var mesh geometry.TriangleMeshData

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return mesh, fmt.Errorf("%w: no POSITION attribute", ErrInvalidGLTF)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return mesh, fmt.Errorf("positions: %w", err)
	}
	mesh.Vertices = make([]core.Vec3, len(positions))
	for i, p := range positions {
		mesh.Vertices[i] = core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return mesh, fmt.Errorf("normals: %w", err)
		}
		if len(normals) == len(positions) {
			mesh.Normals = make([]core.Vec3, len(normals))
			for i, n := range normals {
				mesh.Normals[i] = core.NewVec3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
		}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return mesh, fmt.Errorf("texcoords: %w", err)
		}
		if len(uvs) == len(positions) {
			mesh.UVs = make([]core.Vec2, len(uvs))
			for i, uv := range uvs {
				// glTF puts v=0 at the top of the image
				mesh.UVs[i] = core.NewVec2(float64(uv[0]), 1-float64(uv[1]))
			}
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return mesh, fmt.Errorf("indices: %w", err)
		}
		mesh.Indices = make([]int, len(indices))
		for i, idx := range indices {
			mesh.Indices[i] = int(idx)
		}
	} else {
		mesh.Indices = make([]int, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = i
		}
	}
	return mesh, nil
}
