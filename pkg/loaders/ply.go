package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
)

// ErrInvalidPLY is returned for malformed or unsupported PLY input
var ErrInvalidPLY = errors.New("loaders: invalid PLY data")

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string // Scalar type, or the item type of a list
	IsList   bool
	ListType string // For list properties, the type of the count
}

// PLYElement is one element declaration with its properties
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYHeader represents the parsed header of a PLY file
type PLYHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []PLYElement
}

// LoadPLY loads a PLY file as a triangle mesh
func LoadPLY(filename string) (*geometry.TriangleMeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ParsePLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ParsePLY reads vertex positions, optional normals (nx ny nz) and texture
// coordinates (u v, s t or texture_u texture_v) and face index lists.
// Polygons are fan-triangulated; other elements are skipped.
func ParsePLY(r io.Reader) (*geometry.TriangleMeshData, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, err
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &plyASCIIReader{r: reader}
	case "binary_little_endian":
		values = &plyBinaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPLY, header.Format)
	}

	mesh := &geometry.TriangleMeshData{}
	for _, element := range header.Elements {
		var err error
		switch element.Name {
		case "vertex":
			err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", element.Name, err)
		}
	}

	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrInvalidPLY)
	}
	for _, idx := range mesh.Indices {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("%w: vertex index %d out of range", ErrInvalidPLY, idx)
		}
	}
	return mesh, nil
}

// parsePLYHeader parses the header up to and including end_header
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	first := true
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidPLY)
		}
		parts := strings.Fields(line)
		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: bad format line", ErrInvalidPLY)
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: bad element line", ErrInvalidPLY)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrInvalidPLY, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrInvalidPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Properties = append(el.Properties, prop)
		case "end_header":
			return header, nil
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		if plyTypeSize(parts[1]) == 0 || plyTypeSize(parts[2]) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: unknown list types %s %s", ErrInvalidPLY, parts[1], parts[2])
		}
		return PLYProperty{Name: parts[3], Type: parts[2], IsList: true, ListType: parts[1]}, nil
	}
	if len(parts) != 2 || plyTypeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("%w: invalid property definition %v", ErrInvalidPLY, parts)
	}
	return PLYProperty{Name: parts[1], Type: parts[0]}, nil
}

func readPLYVertices(values plyValueReader, element PLYElement, mesh *geometry.TriangleMeshData) error {
	slot := map[string]int{}
	for i, prop := range element.Properties {
		slot[prop.Name] = i
	}
	has := func(names ...string) bool {
		for _, n := range names {
			if _, ok := slot[n]; !ok {
				return false
			}
		}
		return true
	}
	if !has("x", "y", "z") {
		return fmt.Errorf("%w: vertex element without x y z", ErrInvalidPLY)
	}
	hasNormals := has("nx", "ny", "nz")
	uName, vName := "", ""
	for _, pair := range [][2]string{{"u", "v"}, {"s", "t"}, {"texture_u", "texture_v"}} {
		if has(pair[0], pair[1]) {
			uName, vName = pair[0], pair[1]
			break
		}
	}

	row := make([]float64, len(element.Properties))
	for i := 0; i < element.Count; i++ {
		for j, prop := range element.Properties {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return err
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return err
			}
			row[j] = v
		}
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(row[slot["x"]], row[slot["y"]], row[slot["z"]]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(row[slot["nx"]], row[slot["ny"]], row[slot["nz"]]))
		}
		if uName != "" {
			mesh.UVs = append(mesh.UVs, core.NewVec2(row[slot[uName]], row[slot[vName]]))
		}
	}
	return nil
}

func readPLYFaces(values plyValueReader, element PLYElement, mesh *geometry.TriangleMeshData) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			n, err := values.read(prop.ListType)
			if err != nil {
				return err
			}
			face := make([]int, int(n))
			for k := range face {
				idx, err := values.read(prop.Type)
				if err != nil {
					return err
				}
				face[k] = int(idx)
			}
			// Fan triangulation around the first corner
			for k := 1; k+1 < len(face); k++ {
				mesh.Indices = append(mesh.Indices, face[0], face[k], face[k+1])
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipPLYProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop PLYProperty) error {
	n, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(n); k++ {
		if _, err := values.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyTypeSize returns the byte size of a PLY scalar type, 0 if unknown
func plyTypeSize(t string) int {
	switch t {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValueReader reads one scalar of the given PLY type as float64
type plyValueReader interface {
	read(plyType string) (float64, error)
}

type plyASCIIReader struct {
	r      *bufio.Reader
	tokens []string
}

func (a *plyASCIIReader) read(plyType string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.r.ReadString('\n')
		a.tokens = strings.Fields(line)
		if err != nil && len(a.tokens) == 0 {
			return 0, fmt.Errorf("%w: unexpected end of data", ErrInvalidPLY)
		}
	}
	tok := a.tokens[0]
	a.tokens = a.tokens[1:]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad value %q", ErrInvalidPLY, tok)
	}
	return v, nil
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinaryReader) read(plyType string) (float64, error) {
	size := plyTypeSize(plyType)
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrInvalidPLY)
	}
	data := b.buf[:size]
	switch plyType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
