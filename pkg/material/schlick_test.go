package material

import (
	"math"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
)

func floatEquals(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vecEquals(a, b core.Vec3, tolerance float64) bool {
	return floatEquals(a.X, b.X, tolerance) &&
		floatEquals(a.Y, b.Y, tolerance) &&
		floatEquals(a.Z, b.Z, tolerance)
}

func TestSchlickWeight(t *testing.T) {
	tests := []struct {
		name     string
		cosTheta float64
		want     float64
	}{
		{"normal incidence", 1, 0},
		{"grazing", 0, 1},
		{"half", 0.5, 1.0 / 32},
		{"below horizon clamps", -0.5, 1},
		{"above one clamps", 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SchlickWeight(tt.cosTheta); !floatEquals(got, tt.want, 1e-12) {
				t.Errorf("SchlickWeight(%v) = %v, want %v", tt.cosTheta, got, tt.want)
			}
		})
	}
}

func TestFrSchlickEndpoints(t *testing.T) {
	for _, r0 := range []float64{0, 0.04, 0.5, 1} {
		if got := FrSchlick(r0, 1); !floatEquals(got, r0, 1e-12) {
			t.Errorf("FrSchlick(%v, 1) = %v, want %v", r0, got, r0)
		}
		if got := FrSchlick(r0, 0); !floatEquals(got, 1, 1e-12) {
			t.Errorf("FrSchlick(%v, 0) = %v, want 1", r0, got)
		}
	}

	r0 := core.NewVec3(0.9, 0.6, 0.3)
	if got := FrSchlickColor(r0, 1); !vecEquals(got, r0, 1e-12) {
		t.Errorf("FrSchlickColor at normal incidence = %v, want %v", got, r0)
	}
	if got := FrSchlickColor(r0, 0); !vecEquals(got, core.NewGray(1), 1e-12) {
		t.Errorf("FrSchlickColor at grazing = %v, want white", got)
	}
}

func TestFrSchlickMonotonic(t *testing.T) {
	// Reflectance grows towards grazing incidence
	prev := FrSchlick(0.04, 1)
	for cos := 0.95; cos >= 0; cos -= 0.05 {
		cur := FrSchlick(0.04, cos)
		if cur < prev {
			t.Fatalf("FrSchlick decreased from %v to %v at cos=%v", prev, cur, cos)
		}
		prev = cur
	}
}

func TestSchlickR0FromEta(t *testing.T) {
	if got := SchlickR0FromEta(1); got != 0 {
		t.Errorf("SchlickR0FromEta(1) = %v, want 0", got)
	}
	if got := SchlickR0FromEta(1.5); !floatEquals(got, 0.04, 1e-12) {
		t.Errorf("SchlickR0FromEta(1.5) = %v, want 0.04", got)
	}

	prev := 0.0
	for eta := 1.1; eta < 4; eta += 0.1 {
		cur := SchlickR0FromEta(eta)
		if cur <= prev || cur >= 1 {
			t.Fatalf("SchlickR0FromEta(%v) = %v, previous %v", eta, cur, prev)
		}
		prev = cur
	}
}
