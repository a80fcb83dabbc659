package bxdf

import (
	"math"
	"testing"
)

func TestFrDielectric(t *testing.T) {
	tests := []struct {
		name       string
		cosI       float64
		etaI, etaT float64
		want       float64
	}{
		{"normal incidence glass", 1, 1, 1.5, 0.04},
		{"matched indices", 0.6, 1.3, 1.3, 0},
		{"grazing", 0, 1, 1.5, 1},
		{"inside at normal incidence", -1, 1, 1.5, 0.04},
		{"total internal reflection", -0.3, 1, 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FrDielectric(tt.cosI, tt.etaI, tt.etaT)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FrDielectric(%v, %v, %v) = %v, want %v", tt.cosI, tt.etaI, tt.etaT, got, tt.want)
			}
		})
	}
}

func TestFrDielectricIncreasesTowardsGrazing(t *testing.T) {
	prev := FrDielectric(1, 1, 1.5)
	for cos := 0.9; cos > 0; cos -= 0.1 {
		cur := FrDielectric(cos, 1, 1.5)
		if cur < prev-1e-12 {
			t.Fatalf("FrDielectric decreased from %v to %v at cos=%v", prev, cur, cos)
		}
		prev = cur
	}
}
