package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
)

// createTestPLY writes a unit square as one quad face in the given binary byte order
func createTestPLY(t *testing.T, order binary.ByteOrder, withNormals, withUVs bool) []byte {
	t.Helper()
	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ply\nformat %s 1.0\ncomment test square\nelement vertex 4\n", format)
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	if withNormals {
		buf.WriteString("property float nx\nproperty float ny\nproperty float nz\n")
	}
	if withUVs {
		buf.WriteString("property float s\nproperty float t\n")
	}
	buf.WriteString("element face 1\nproperty list uchar int vertex_indices\nend_header\n")

	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	uvs := [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, p := range positions {
		binary.Write(&buf, order, p)
		if withNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
		}
		if withUVs {
			binary.Write(&buf, order, uvs[i])
		}
	}
	buf.WriteByte(4)
	binary.Write(&buf, order, [4]int32{0, 1, 2, 3})
	return buf.Bytes()
}

func TestParsePLYBinary(t *testing.T) {
	tests := []struct {
		name        string
		order       binary.ByteOrder
		withNormals bool
		withUVs     bool
	}{
		{"little endian positions", binary.LittleEndian, false, false},
		{"little endian normals", binary.LittleEndian, true, false},
		{"big endian full", binary.BigEndian, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := ParsePLY(bytes.NewReader(createTestPLY(t, tt.order, tt.withNormals, tt.withUVs)))
			if err != nil {
				t.Fatalf("ParsePLY failed: %v", err)
			}
			if len(mesh.Vertices) != 4 {
				t.Errorf("Expected 4 vertices, got %d", len(mesh.Vertices))
			}
			if mesh.Vertices[2] != core.NewVec3(1, 1, 0) {
				t.Errorf("Expected vertex 2 at (1,1,0), got %v", mesh.Vertices[2])
			}

			expected := []int{0, 1, 2, 0, 2, 3}
			if len(mesh.Indices) != len(expected) {
				t.Fatalf("Expected %d indices, got %d", len(expected), len(mesh.Indices))
			}
			for i, idx := range expected {
				if mesh.Indices[i] != idx {
					t.Errorf("Index %d: expected %d, got %d", i, idx, mesh.Indices[i])
				}
			}

			if tt.withNormals != (len(mesh.Normals) == 4) {
				t.Errorf("Normals present=%v, got %d", tt.withNormals, len(mesh.Normals))
			}
			if tt.withUVs {
				if len(mesh.UVs) != 4 || mesh.UVs[1] != core.NewVec2(1, 0) {
					t.Errorf("Unexpected uvs %v", mesh.UVs)
				}
			} else if mesh.UVs != nil {
				t.Errorf("Expected no uvs, got %v", mesh.UVs)
			}
		})
	}
}

func TestParsePLYASCII(t *testing.T) {
	input := `ply
format ascii 1.0
element vertex 5
property double x
property double y
property double z
property uchar red
element face 1
property uchar flags
property list uchar uint vertex_index
element edge 1
property int vertex1
property int vertex2
end_header
0 0 0 255
1 0 0 255
1 1 0 255
0 1 0 255
0.5 1.5 0 255
7 5 0 1 2 3 4
0 1
`
	mesh, err := ParsePLY(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if len(mesh.Vertices) != 5 {
		t.Errorf("Expected 5 vertices, got %d", len(mesh.Vertices))
	}
	// Pentagon fans into three triangles
	if len(mesh.Indices) != 9 {
		t.Fatalf("Expected 9 indices, got %d", len(mesh.Indices))
	}
	if mesh.Indices[6] != 0 || mesh.Indices[7] != 3 || mesh.Indices[8] != 4 {
		t.Errorf("Unexpected last triangle %v", mesh.Indices[6:])
	}
}

func TestParsePLYErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"truncated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"no positions", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float w\nend_header\n1\n"},
		{"truncated data", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n"},
		{"no faces", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePLY(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidPLY) {
				t.Errorf("Expected ErrInvalidPLY, got %v", err)
			}
		})
	}
}

func TestLoadPLYFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, createTestPLY(t, binary.LittleEndian, true, false), 0o644); err != nil {
		t.Fatalf("Failed to write PLY: %v", err)
	}
	mesh, err := LoadPLY(path)
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}
	if len(mesh.Indices) != 6 {
		t.Errorf("Expected 6 indices, got %d", len(mesh.Indices))
	}

	if _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
}
