package loaders

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
)

func parsePBRTString(t *testing.T, content string) *PBRTScene {
	t.Helper()
	scene, err := ParsePBRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}
	return scene
}

func vec3Near(a, b core.Vec3) bool {
	const tolerance = 1e-9
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}

// TestGraphicsStateStack tests that the graphics state stack properly handles material state
func TestGraphicsStateStack(t *testing.T) {
	scene := parsePBRTString(t, `Camera "perspective" "float fov" 40
WorldBegin

# Global material 1 (red)
Material "disneysimple" "rgb diffuse" [1.0 0.0 0.0]
Shape "sphere" "float radius" 0.5

# Global material 2 (green)
Material "disneysimple" "rgb diffuse" [0.0 1.0 0.0]

AttributeBegin
    # Local material within attribute block (blue)
    Material "disneysimple" "rgb diffuse" [0.0 0.0 1.0]
    Shape "sphere" "float radius" 0.3
    AttributeBegin
        Shape "sphere" "float radius" 0.2
    AttributeEnd
AttributeEnd

# This sphere should use the global green material
Shape "sphere" "float radius" 0.7
WorldEnd`)

	if len(scene.Materials) != 3 {
		t.Fatalf("Expected 3 materials, got %d", len(scene.Materials))
	}

	expected := []int{0, 2, 2, 1}
	if len(scene.Shapes) != len(expected) {
		t.Fatalf("Expected %d shapes, got %d", len(expected), len(scene.Shapes))
	}
	for i, want := range expected {
		if scene.Shapes[i].MaterialIndex != want {
			t.Errorf("Shape %d: material index %d, want %d", i, scene.Shapes[i].MaterialIndex, want)
		}
	}
}

func TestShapeWithoutMaterial(t *testing.T) {
	scene := parsePBRTString(t, "WorldBegin\nShape \"sphere\"\nWorldEnd\n")
	if scene.Shapes[0].MaterialIndex != -1 {
		t.Errorf("Expected material index -1, got %d", scene.Shapes[0].MaterialIndex)
	}
}

func TestTransformState(t *testing.T) {
	scene := parsePBRTString(t, `Translate 100 0 0
WorldBegin
AttributeBegin
    Translate 1 0 0
    Scale 2 2 2
    Shape "sphere"
AttributeEnd
AttributeBegin
    Rotate 90 0 0 1
    LightSource "point" "point3 from" [1 0 0]
AttributeEnd
Transform [1 0 0 0  0 1 0 0  0 0 1 0  5 6 7 1]
Shape "sphere"
Identity
Shape "sphere"
WorldEnd`)

	if len(scene.Shapes) != 3 || len(scene.LightSources) != 1 {
		t.Fatalf("Got %d shapes and %d lights", len(scene.Shapes), len(scene.LightSources))
	}

	tests := []struct {
		name     string
		got      core.Vec3
		expected core.Vec3
	}{
		// Translate then Scale: the scale applies first to object points
		{"translate scale", TransformPoint(scene.Shapes[0].Transform, core.NewVec3(1, 0, 0)), core.NewVec3(3, 0, 0)},
		{"rotate about z", TransformPoint(scene.LightSources[0].Transform, core.NewVec3(1, 0, 0)), core.NewVec3(0, 1, 0)},
		{"column-major transform", TransformPoint(scene.Shapes[1].Transform, core.Vec3{}), core.NewVec3(5, 6, 7)},
		// The pre-world translation is dropped at WorldBegin
		{"identity", TransformPoint(scene.Shapes[2].Transform, core.NewVec3(1, 2, 3)), core.NewVec3(1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vec3Near(tt.got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestTransformBlockKeepsMaterial(t *testing.T) {
	scene := parsePBRTString(t, `WorldBegin
TransformBegin
    Translate 0 1 0
    Material "matte" "rgb Kd" [0.5 0.5 0.5]
TransformEnd
Shape "sphere"
WorldEnd`)

	shape := scene.Shapes[0]
	if shape.MaterialIndex != 0 {
		t.Errorf("Material set inside TransformBegin should persist, got index %d", shape.MaterialIndex)
	}
	if p := TransformPoint(shape.Transform, core.Vec3{}); !vec3Near(p, core.Vec3{}) {
		t.Errorf("Transform should be restored, origin maps to %v", p)
	}
}

func TestAreaLightState(t *testing.T) {
	scene := parsePBRTString(t, `WorldBegin
Shape "sphere" "float radius" 5
AttributeBegin
    AreaLightSource "diffuse" "rgb L" [4 4 4]
    Shape "sphere" "float radius" 0.5
    AttributeBegin
        Shape "sphere" "float radius" 0.25
    AttributeEnd
AttributeEnd
Shape "sphere" "float radius" 1
WorldEnd`)

	expected := []bool{false, true, true, false}
	for i, want := range expected {
		if got := scene.Shapes[i].IsAreaLight(); got != want {
			t.Errorf("Shape %d: IsAreaLight() = %v, want %v", i, got, want)
		}
	}
	if L, ok := scene.Shapes[1].AreaLight.GetRGBParam("L"); !ok || *L != core.NewGray(4) {
		t.Errorf("Expected area light L (4,4,4), got %v", L)
	}
	if len(scene.LightSources) != 0 {
		t.Errorf("Area lights should not be listed as light sources, got %d", len(scene.LightSources))
	}
}

func TestNamedMaterials(t *testing.T) {
	scene := parsePBRTString(t, `WorldBegin
MakeNamedMaterial "gold" "string type" "disneysimple" "rgb specular" [1 0.8 0.3]
MakeNamedMaterial "chalk" "string type" "matte"
Material "disneysimple"
Shape "sphere"
NamedMaterial "gold"
Shape "sphere"
WorldEnd`)

	if len(scene.Materials) != 3 {
		t.Fatalf("Expected 3 materials, got %d", len(scene.Materials))
	}
	if scene.Materials[0].Name != "gold" || scene.Materials[0].Subtype != "disneysimple" {
		t.Errorf("Named material parsed as %q/%q", scene.Materials[0].Name, scene.Materials[0].Subtype)
	}
	if scene.Shapes[0].MaterialIndex != 2 || scene.Shapes[1].MaterialIndex != 0 {
		t.Errorf("Material indices %d, %d; want 2, 0", scene.Shapes[0].MaterialIndex, scene.Shapes[1].MaterialIndex)
	}
}

func TestTexturesParsed(t *testing.T) {
	scene := parsePBRTString(t, `WorldBegin
Texture "grid" "color" "checkerboard"
    "float uscale" 4 "float vscale" 4
    "rgb tex1" [1 1 1] "rgb tex2" [0.1 0.1 0.1]
Material "disneysimple" "texture diffuse" "grid"
Shape "sphere"
WorldEnd`)

	if len(scene.Textures) != 1 || scene.Textures[0].Name != "grid" {
		t.Fatalf("Expected texture grid, got %+v", scene.Textures)
	}
	if v, ok := scene.Textures[0].GetFloatParam("vscale"); !ok || v != 4 {
		t.Errorf("Expected vscale from a continuation line, got %v", v)
	}
	if name, ok := scene.Materials[0].GetTextureParam("diffuse"); !ok || name != "grid" {
		t.Errorf("Expected diffuse texture reference, got %q", name)
	}
}

func TestMultiLineTriangleMesh(t *testing.T) {
	scene := parsePBRTString(t, `WorldBegin
Shape "trianglemesh"
    "integer indices" [ 0 1 2
                        0 2 3 ]
    "point3 P" [ 0 0 0   1 0 0
                 1 1 0   0 1 0 ]
WorldEnd`)

	indices, err := scene.Shapes[0].GetIntsParam("indices")
	if err != nil || len(indices) != 6 {
		t.Errorf("Expected 6 indices, got %v (%v)", indices, err)
	}
	points, err := scene.Shapes[0].GetFloatsParam("P")
	if err != nil || len(points) != 12 {
		t.Errorf("Expected 12 coordinates, got %v (%v)", points, err)
	}
}

func TestParsePBRTErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"extra AttributeEnd", "WorldBegin\nAttributeEnd\n", ErrUnbalancedBlock},
		{"unclosed block", "WorldBegin\nAttributeBegin\nShape \"sphere\"\n", ErrUnbalancedBlock},
		{"mismatched block", "WorldBegin\nTransformBegin\nAttributeEnd\n", ErrUnbalancedBlock},
		{"unknown named material", "WorldBegin\nNamedMaterial \"missing\"\n", ErrUnknownMaterial},
		{"named material without type", "WorldBegin\nMakeNamedMaterial \"m\"\n", ErrInvalidPBRT},
		{"continuation without statement", "\"float radius\" 1\n", ErrInvalidPBRT},
		{"short translate", "Translate 1 2\n", ErrInvalidPBRT},
		{"zero rotation axis", "Rotate 45 0 0 0\n", ErrInvalidPBRT},
		{"bad number", "Scale 1 two 3\n", ErrInvalidPBRT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePBRT(strings.NewReader(tt.content))
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}
