package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
)

// ErrInvalidOBJ is returned for malformed Wavefront OBJ input
var ErrInvalidOBJ = errors.New("loaders: invalid OBJ data")

// objCorner is one face corner: 0-based position, texcoord and normal
// indices, -1 when absent
type objCorner struct {
	v, vt, vn int
}

// objGroup tracks whether every corner of a group carries normals and uvs
type objGroup struct {
	name      string
	faces     int
	normals   bool
	texcoords bool
}

// LoadOBJ loads a Wavefront OBJ file as a single triangle mesh
func LoadOBJ(filename string, logger core.Logger) (*geometry.TriangleMeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	mesh, err := ParseOBJ(file, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ geometry. Polygons are fan-triangulated and negative
// indices count back from the latest element. Normals and texture
// coordinates are kept only when every group has them; otherwise they are
// dropped with a warning.
func ParseOBJ(r io.Reader, logger core.Logger) (*geometry.TriangleMeshData, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	var positions, normals []core.Vec3
	var texcoords []core.Vec2
	var corners []objCorner // Three per triangle
	groups := []*objGroup{{name: "default", normals: true, texcoords: true}}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseOBJFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			positions = append(positions, core.NewVec3(p[0], p[1], p[2]))
		case "vn":
			n, err := parseOBJFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			normals = append(normals, core.NewVec3(n[0], n[1], n[2]))
		case "vt":
			uv, err := parseOBJFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			texcoords = append(texcoords, core.NewVec2(uv[0], uv[1]))
		case "g", "o":
			name := strings.Join(fields[1:], " ")
			current := groups[len(groups)-1]
			if current.faces == 0 {
				current.name = name
			} else {
				groups = append(groups, &objGroup{name: name, normals: true, texcoords: true})
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJ, lineNum)
			}
			face := make([]objCorner, len(fields)-1)
			for i, ref := range fields[1:] {
				c, err := parseOBJCorner(ref, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				face[i] = c
			}

			group := groups[len(groups)-1]
			group.faces++
			for _, c := range face {
				group.normals = group.normals && c.vn >= 0
				group.texcoords = group.texcoords && c.vt >= 0
			}

			// Fan triangulation around the first corner
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	if len(corners) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidOBJ)
	}

	useNormals, useTexcoords := true, true
	anyNormals, anyTexcoords := false, false
	for _, g := range groups {
		if g.faces == 0 {
			continue
		}
		useNormals = useNormals && g.normals
		useTexcoords = useTexcoords && g.texcoords
		anyNormals = anyNormals || g.normals
		anyTexcoords = anyTexcoords || g.texcoords
	}
	if anyNormals && !useNormals {
		logger.Printf("OBJ mesh has normals for some groups but not all, ignoring all normals")
	}
	if anyTexcoords && !useTexcoords {
		logger.Printf("OBJ mesh has texcoords for some groups but not all, ignoring all texcoords")
	}

	return buildOBJMesh(corners, positions, texcoords, normals, useNormals, useTexcoords), nil
}

// buildOBJMesh turns face corners into an indexed mesh, sharing a vertex
// between corners with identical attributes
func buildOBJMesh(corners []objCorner, positions []core.Vec3, texcoords []core.Vec2, normals []core.Vec3, useNormals, useTexcoords bool) *geometry.TriangleMeshData {
	mesh := &geometry.TriangleMeshData{Indices: make([]int, 0, len(corners))}
	seen := make(map[objCorner]int)

	for _, c := range corners {
		if !useNormals {
			c.vn = -1
		}
		if !useTexcoords {
			c.vt = -1
		}
		idx, ok := seen[c]
		if !ok {
			idx = len(mesh.Vertices)
			seen[c] = idx
			mesh.Vertices = append(mesh.Vertices, positions[c.v])
			if useNormals {
				mesh.Normals = append(mesh.Normals, normals[c.vn])
			}
			if useTexcoords {
				mesh.UVs = append(mesh.UVs, texcoords[c.vt])
			}
		}
		mesh.Indices = append(mesh.Indices, idx)
	}
	return mesh
}

// parseOBJCorner parses "v", "v/vt", "v//vn" or "v/vt/vn"
func parseOBJCorner(ref string, numV, numVT, numVN int) (objCorner, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("%w: bad vertex reference %q", ErrInvalidOBJ, ref)
	}

	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveOBJIndex(parts[0], numV); err != nil {
		return objCorner{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveOBJIndex(parts[1], numVT); err != nil {
			return objCorner{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveOBJIndex(parts[2], numVN); err != nil {
			return objCorner{}, err
		}
	}
	return c, nil
}

// resolveOBJIndex converts a 1-based or negative relative index into a
// 0-based one
func resolveOBJIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrInvalidOBJ, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i = count + i
	default:
		return 0, fmt.Errorf("%w: index 0", ErrInvalidOBJ)
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("%w: index %s out of range (%d elements)", ErrInvalidOBJ, s, count)
	}
	return i, nil
}

func parseOBJFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidOBJ, n, len(fields))
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrInvalidOBJ, fields[i])
		}
		values[i] = v
	}
	return values, nil
}
