package integrator

import (
	"fmt"
	"math"
	"testing"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// recordingLogger keeps every formatted message
type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func createFieldScene(t *testing.T) *scene.Scene {
	t.Helper()
	mat := material.NewDisneySimple(core.NewGray(0.5), core.Vec3{}, 0.5, 1.0)
	sc := &scene.Scene{
		Shapes: []geometry.Shape{scene.NewGroundQuad(core.Vec3{}, 4, mat)},
		CameraConfig: geometry.CameraConfig{
			Center:      core.NewVec3(0, 2, 0),
			LookAt:      core.NewVec3(0, 0, 0),
			Up:          core.NewVec3(0, 0, -1),
			Width:       16,
			AspectRatio: 1,
			VFov:        45,
		},
	}
	if err := sc.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return sc
}

func TestFieldIntegratorFields(t *testing.T) {
	sc := createFieldScene(t)
	down := core.NewRay(core.NewVec3(0.5, 2, 0.5), core.NewVec3(0, -1, 0))

	tests := []struct {
		field    string
		expected core.Vec3
	}{
		{"position", core.NewVec3(0.5, 0, 0.5)},
		{"distance", core.NewGray(2)},
		{"geoNormal", core.NewVec3(0.5, 1, 0.5)},
		{"shNormal", core.NewVec3(0.5, 1, 0.5)},
		{"uv", core.NewVec3(0.625, 0.625, 0)},
		{"mask", core.NewGray(1)},
		{"relPosition", core.NewVec3(0.5, -0.5, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fi := NewFieldIntegrator(tt.field, core.Vec3{}, nil)
			got := fi.RayColor(down, sc, newTestSampler(), bxdf.NewArena())
			if !vecNear(got, tt.expected, 1e-6) {
				t.Errorf("Field %s: expected %v, got %v", tt.field, tt.expected, got)
			}
		})
	}
}

func TestFieldIntegratorMissReturnsUndefined(t *testing.T) {
	sc := createFieldScene(t)
	undefined := core.NewVec3(1, 0, 1)
	fi := NewFieldIntegrator("position", undefined, nil)

	up := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))
	if got := fi.RayColor(up, sc, newTestSampler(), bxdf.NewArena()); got != undefined {
		t.Errorf("Expected undefined color %v on miss, got %v", undefined, got)
	}
}

func TestFieldIntegratorUnknownFieldFallsBackToMask(t *testing.T) {
	logger := &recordingLogger{}
	fi := NewFieldIntegrator("curvature", core.Vec3{}, logger)
	if fi.Field() != FieldMask {
		t.Errorf("Expected mask field, got %v", fi.Field())
	}
	if len(logger.messages) != 1 {
		t.Errorf("Expected one warning, got %v", logger.messages)
	}
}

func TestFieldIntegratorAlbedo(t *testing.T) {
	sc := createFieldScene(t)
	fi := NewFieldIntegrator("albedo", core.Vec3{}, nil)
	down := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0))

	got := fi.RayColor(down, sc, newTestSampler(), bxdf.NewArena())
	if !got.IsFinite() || got.X <= 0 {
		t.Fatalf("Expected positive albedo, got %v", got)
	}
	// Diffuse and retro lobes each report R, the specular lobe adds nothing at eta 1
	if math.Abs(got.X-1.0) > 1e-6 {
		t.Errorf("Expected albedo 1.0, got %v", got)
	}
}

func TestParseField(t *testing.T) {
	for name, field := range fieldNames {
		got, ok := ParseField(name)
		if !ok || got != field {
			t.Errorf("ParseField(%q) = %v, %v", name, got, ok)
		}
		if field.String() != name {
			t.Errorf("Field %d String() = %q, want %q", field, field.String(), name)
		}
	}
	if _, ok := ParseField("bogus"); ok {
		t.Error("Expected unknown field to fail parsing")
	}
}
