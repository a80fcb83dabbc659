package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-principled-shading/pkg/core"
)

var (
	// ErrInvalidPBRT is returned for statements the parser cannot make sense of
	ErrInvalidPBRT = errors.New("loaders: invalid PBRT input")
	// ErrUnbalancedBlock is returned for mismatched Attribute/Transform Begin and End
	ErrUnbalancedBlock = errors.New("loaders: unbalanced PBRT block")
	// ErrUnknownMaterial is returned when NamedMaterial references an undefined name
	ErrUnknownMaterial = errors.New("loaders: unknown named material")
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type          string               // Statement type (Camera, Material, Shape, etc.)
	Subtype       string               // Subtype (perspective, disneysimple, sphere, etc.)
	Name          string               // Texture and named material name
	ValueType     string               // Texture value type: "color" or "float"
	Parameters    map[string]PBRTParam // Named parameters
	MaterialIndex int                  // For shapes: index of material to use (-1 = no material)
	Transform     mgl64.Mat4           // Object-to-world transform for shapes and lights
	AreaLight     *PBRTStatement       // For shapes: the active AreaLightSource, if any
	Reverse       bool                 // ReverseOrientation was active
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, texture, etc.)
	Values []string // Parameter values as strings, quotes removed
}

// PBRTScene contains all parsed PBRT scene data
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera     *PBRTStatement
	LookAt     *core.Vec3 // Eye position
	LookAtTo   *core.Vec3 // Look at target
	LookAtUp   *core.Vec3 // Up vector
	Film       *PBRTStatement
	Sampler    *PBRTStatement
	Integrator *PBRTStatement

	// World content, in file order. Attribute blocks are flattened; each
	// shape and light carries the state that was active for it.
	Textures     []PBRTStatement
	Materials    []PBRTStatement
	Shapes       []PBRTStatement
	LightSources []PBRTStatement
}

// GraphicsState is the per-block state saved by AttributeBegin
type GraphicsState struct {
	CTM             mgl64.Mat4
	MaterialIndex   int
	AreaLightSource *PBRTStatement
	Reverse         bool
}

type stateFrame struct {
	state         GraphicsState
	transformOnly bool
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          GraphicsState
	stack          []stateFrame
	namedMaterials map[string]int
	inWorld        bool
	statementLines []string
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	return ParsePBRT(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene:          &PBRTScene{},
		state:          GraphicsState{CTM: mgl64.Ident4(), MaterialIndex: -1},
		namedMaterials: make(map[string]int),
	}
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("statement %q: %w", fullStatement, err)
	}
	return p.routeStatement(stmt)
}

func (p *PBRTParser) push(transformOnly bool) {
	p.stack = append(p.stack, stateFrame{state: p.state, transformOnly: transformOnly})
}

func (p *PBRTParser) pop(transformOnly bool) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("%w: End without Begin", ErrUnbalancedBlock)
	}
	frame := p.stack[len(p.stack)-1]
	if frame.transformOnly != transformOnly {
		return fmt.Errorf("%w: mismatched Attribute and Transform blocks", ErrUnbalancedBlock)
	}
	p.stack = p.stack[:len(p.stack)-1]
	if transformOnly {
		p.state.CTM = frame.state.CTM
	} else {
		p.state = frame.state
	}
	return nil
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	// Block directives stand on their own line
	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd", "TransformBegin", "TransformEnd":
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		return p.processBlock(line)
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("%w: unexpected continuation line: %s", ErrInvalidPBRT, line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

func (p *PBRTParser) processBlock(directive string) error {
	switch directive {
	case "WorldBegin":
		p.inWorld = true
		p.state.CTM = mgl64.Ident4()
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.push(false)
	case "AttributeEnd":
		return p.pop(false)
	case "TransformBegin":
		p.push(true)
	case "TransformEnd":
		return p.pop(true)
	}
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return err
	}
	if len(p.stack) > 0 {
		return fmt.Errorf("%w: %d blocks left open", ErrUnbalancedBlock, len(p.stack))
	}
	return nil
}

// routeStatement applies a parsed statement to the graphics state or the scene
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		if err := parseLookAt(stmt, p.scene); err != nil {
			return fmt.Errorf("LookAt: %w", err)
		}
		return nil
	case "Translate", "Scale", "Rotate", "Transform", "ConcatTransform", "Identity":
		return p.applyTransform(stmt)
	case "ReverseOrientation":
		p.state.Reverse = !p.state.Reverse
		return nil
	}

	if !p.inWorld {
		switch stmt.Type {
		case "Camera":
			p.scene.Camera = stmt
		case "Film":
			p.scene.Film = stmt
		case "Sampler":
			p.scene.Sampler = stmt
		case "Integrator":
			p.scene.Integrator = stmt
		}
		return nil
	}

	switch stmt.Type {
	case "Texture":
		p.scene.Textures = append(p.scene.Textures, *stmt)
	case "Material":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.state.MaterialIndex = len(p.scene.Materials) - 1
	case "MakeNamedMaterial":
		materialType, ok := stmt.GetStringParam("type")
		if !ok {
			return fmt.Errorf("%w: named material %q has no type", ErrInvalidPBRT, stmt.Name)
		}
		stmt.Subtype = materialType
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.namedMaterials[stmt.Name] = len(p.scene.Materials) - 1
	case "NamedMaterial":
		idx, ok := p.namedMaterials[stmt.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMaterial, stmt.Name)
		}
		p.state.MaterialIndex = idx
	case "AreaLightSource":
		p.state.AreaLightSource = stmt
	case "Shape":
		stmt.MaterialIndex = p.state.MaterialIndex
		stmt.Transform = p.state.CTM
		stmt.AreaLight = p.state.AreaLightSource
		stmt.Reverse = p.state.Reverse
		p.scene.Shapes = append(p.scene.Shapes, *stmt)
	case "LightSource":
		stmt.Transform = p.state.CTM
		p.scene.LightSources = append(p.scene.LightSources, *stmt)
	}
	return nil
}

// applyTransform post-multiplies the current transform matrix
func (p *PBRTParser) applyTransform(stmt *PBRTStatement) error {
	values, err := stmt.GetFloatsParam("values")
	if err != nil {
		return fmt.Errorf("%s: %w", stmt.Type, err)
	}

	need := map[string]int{"Translate": 3, "Scale": 3, "Rotate": 4, "Transform": 16, "ConcatTransform": 16, "Identity": 0}[stmt.Type]
	if len(values) != need {
		return fmt.Errorf("%w: %s needs %d values, got %d", ErrInvalidPBRT, stmt.Type, need, len(values))
	}

	switch stmt.Type {
	case "Identity":
		p.state.CTM = mgl64.Ident4()
	case "Translate":
		p.state.CTM = p.state.CTM.Mul4(mgl64.Translate3D(values[0], values[1], values[2]))
	case "Scale":
		p.state.CTM = p.state.CTM.Mul4(mgl64.Scale3D(values[0], values[1], values[2]))
	case "Rotate":
		axis := mgl64.Vec3{values[1], values[2], values[3]}
		if axis.Len() == 0 {
			return fmt.Errorf("%w: Rotate around a zero axis", ErrInvalidPBRT)
		}
		p.state.CTM = p.state.CTM.Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(values[0]), axis.Normalize()))
	case "Transform", "ConcatTransform":
		var m mgl64.Mat4
		copy(m[:], values) // Column-major, as written in the file
		if stmt.Type == "Transform" {
			p.state.CTM = m
		} else {
			p.state.CTM = p.state.CTM.Mul4(m)
		}
	}
	return nil
}

// validateFilePath rejects empty, non-.pbrt and malformed paths
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidPBRT)
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("%w: null bytes not allowed in path", ErrInvalidPBRT)
	}
	cleanPath := filepath.Clean(filename)
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("%w: only .pbrt files are allowed", ErrInvalidPBRT)
	}
	return nil
}

// parseLookAt parses a LookAt statement into scene camera vectors
func parseLookAt(stmt *PBRTStatement, scene *PBRTScene) error {
	values, err := stmt.GetFloatsParam("values")
	if err != nil {
		return err
	}
	if len(values) != 9 {
		return fmt.Errorf("%w: LookAt requires 9 values, got %d", ErrInvalidPBRT, len(values))
	}
	scene.LookAt = &core.Vec3{X: values[0], Y: values[1], Z: values[2]}
	scene.LookAtTo = &core.Vec3{X: values[3], Y: values[4], Z: values[5]}
	scene.LookAtUp = &core.Vec3{X: values[6], Y: values[7], Z: values[8]}
	return nil
}

// stripComment drops a trailing # comment outside quoted strings
func stripComment(line string) string {
	inQuotes := false
	for i, char := range line {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			flush()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			flush()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// numericStatements take bare numbers instead of a quoted subtype
var numericStatements = []string{"LookAt", "Translate", "Scale", "Rotate", "ConcatTransform", "Transform", "Identity", "ReverseOrientation"}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty statement", ErrInvalidPBRT)
	}

	for _, keyword := range numericStatements {
		if parts[0] == keyword {
			return &PBRTStatement{
				Type: keyword,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: splitValues(parts[1:])},
				},
			}, nil
		}
	}

	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: statement %s has no arguments", ErrInvalidPBRT, parts[0])
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	parts = parts[1:]

	// Leading quoted single words: Texture "name" "type" "class",
	// MakeNamedMaterial "name", NamedMaterial "name", everything else "subtype"
	var heads []string
	for len(parts) > 0 && isQuoted(parts[0]) && !strings.Contains(unquote(parts[0]), " ") {
		heads = append(heads, unquote(parts[0]))
		parts = parts[1:]
	}
	switch stmt.Type {
	case "Texture":
		if len(heads) != 3 {
			return nil, fmt.Errorf("%w: Texture needs name, type and class", ErrInvalidPBRT)
		}
		stmt.Name, stmt.ValueType, stmt.Subtype = heads[0], heads[1], heads[2]
	case "MakeNamedMaterial", "NamedMaterial":
		if len(heads) != 1 {
			return nil, fmt.Errorf("%w: %s needs a name", ErrInvalidPBRT, stmt.Type)
		}
		stmt.Name = heads[0]
	default:
		if len(heads) > 1 {
			return nil, fmt.Errorf("%w: unexpected %q after %s", ErrInvalidPBRT, heads[1], stmt.Type)
		}
		if len(heads) == 1 {
			stmt.Subtype = heads[0]
		}
	}

	for i := 0; i < len(parts); i++ {
		paramParts := strings.Fields(unquote(parts[i]))
		if !isQuoted(parts[i]) || len(paramParts) != 2 {
			return nil, fmt.Errorf("%w: expected \"type name\", got %s", ErrInvalidPBRT, parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("%w: parameter %q has no value", ErrInvalidPBRT, paramParts[1])
		}
		i++
		stmt.Parameters[paramParts[1]] = PBRTParam{
			Type:   paramParts[0],
			Values: splitValues(parts[i : i+1]),
		}
	}

	return stmt, nil
}

// splitValues expands bracketed arrays and removes quotes
func splitValues(tokens []string) []string {
	var values []string
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "[") {
			inner := strings.TrimSuffix(strings.TrimPrefix(tok, "["), "]")
			for _, v := range tokenizePBRT(inner) {
				values = append(values, unquote(v))
			}
			continue
		}
		values = append(values, unquote(tok))
	}
	return values
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetFloatsParam parses every value of a numeric parameter. A missing
// parameter returns nil without error.
func (stmt *PBRTStatement) GetFloatsParam(name string) ([]float64, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, nil
	}
	values := make([]float64, len(param.Values))
	for i, s := range param.Values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s value %q is not a number", ErrInvalidPBRT, name, s)
		}
		values[i] = v
	}
	return values, nil
}

// GetIntsParam parses every value of an integer parameter
func (stmt *PBRTStatement) GetIntsParam(name string) ([]int, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, nil
	}
	values := make([]int, len(param.Values))
	for i, s := range param.Values {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not an integer", ErrInvalidPBRT, name, s)
		}
		values[i] = v
	}
	return values, nil
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || param.Type == "texture" {
		return nil, false
	}
	if len(param.Values) == 1 {
		// A single float is a gray color
		v, err := strconv.ParseFloat(param.Values[0], 64)
		if err != nil {
			return nil, false
		}
		return &core.Vec3{X: v, Y: v, Z: v}, true
	}
	return stmt.GetPoint3Param(name)
}

// GetPoint3Param extracts a point3 parameter from a PBRT statement
func (stmt *PBRTStatement) GetPoint3Param(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) != 3 {
		return nil, false
	}
	x, err1 := strconv.ParseFloat(param.Values[0], 64)
	y, err2 := strconv.ParseFloat(param.Values[1], 64)
	z, err3 := strconv.ParseFloat(param.Values[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, false
	}
	return &core.Vec3{X: x, Y: y, Z: z}, true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetBoolParam extracts a bool parameter from a PBRT statement
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	s, ok := stmt.GetStringParam(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

// GetTextureParam returns the texture name a parameter refers to
func (stmt *PBRTStatement) GetTextureParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || param.Type != "texture" || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// IsAreaLight checks if a shape statement was declared under an AreaLightSource
func (stmt *PBRTStatement) IsAreaLight() bool {
	return stmt.AreaLight != nil
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Texture", "Material", "MakeNamedMaterial", "NamedMaterial",
		"Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform", "ConcatTransform", "Identity",
		"ReverseOrientation",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || strings.HasPrefix(line, stmt+"\t") || line == stmt {
			return true
		}
	}
	return false
}
