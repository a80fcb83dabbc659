package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// direction builds a unit local-frame vector from spherical angles
func direction(theta, phi float64) core.Vec3 {
	return core.NewVec3(math.Sin(theta)*math.Cos(phi), math.Sin(theta)*math.Sin(phi), math.Cos(theta))
}

func TestDisneyDiffuseValues(t *testing.T) {
	r := core.NewVec3(0.8, 0.5, 0.2)
	d := NewDisneyDiffuse(r)
	up := core.NewVec3(0, 0, 1)

	// Both Schlick weights vanish at normal incidence
	if got := d.F(up, up); !vecEquals(got, r.Multiply(1/math.Pi), 1e-12) {
		t.Errorf("F(normal, normal) = %v, want %v", got, r.Multiply(1/math.Pi))
	}

	// A grazing direction halves the lobe
	grazing := core.NewVec3(1, 0, 0)
	if got := d.F(grazing, up); !vecEquals(got, r.Multiply(0.5/math.Pi), 1e-12) {
		t.Errorf("F(grazing, normal) = %v, want %v", got, r.Multiply(0.5/math.Pi))
	}

	if got := d.Rho(up, nil); !got.Equals(r) {
		t.Errorf("Rho = %v, want %v", got, r)
	}
	if d.Type() != bxdf.Reflection|bxdf.Diffuse {
		t.Errorf("Type = %v", d.Type())
	}
}

func TestDisneyDiffuseNeverExceedsLambert(t *testing.T) {
	d := NewDisneyDiffuse(core.NewGray(1))
	for i := 0; i <= 10; i++ {
		for j := 0; j <= 10; j++ {
			wo := direction(float64(i)*math.Pi/20, 0)
			wi := direction(float64(j)*math.Pi/20, 1)
			f := d.F(wo, wi)
			if f.X < 0 || f.X > 1/math.Pi+1e-12 {
				t.Fatalf("F(%v, %v) = %v out of [0, 1/pi]", wo, wi, f)
			}
		}
	}
}

func TestDisneyRetroValues(t *testing.T) {
	r := core.NewGray(1)

	tests := []struct {
		name      string
		roughness float64
		wo, wi    core.Vec3
		want      float64
	}{
		{"opposed directions", 0.5, direction(0.3, 0), direction(0.3, 0).Negate(), 0},
		{"zero roughness", 0, direction(1, 0), direction(0.5, 2), 0},
		{"normal incidence", 1, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), 0},
		// cosθ = 0.5 gives a Schlick weight of 1/32; Rr = 2·0.5·1 = 1
		{"sixty degrees mirrored", 0.5, direction(math.Pi/3, 0), direction(math.Pi/3, 0), 1 / (16 * math.Pi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDisneyRetro(r, tt.roughness).F(tt.wo, tt.wi)
			if !vecEquals(got, core.NewGray(tt.want), 1e-12) {
				t.Errorf("F = %v, want gray %v", got, tt.want)
			}
		})
	}
}

func TestDisneyLobesReciprocal(t *testing.T) {
	lobes := []bxdf.BxDF{
		NewDisneyDiffuse(core.NewVec3(0.7, 0.4, 0.1)),
		NewDisneyRetro(core.NewVec3(0.7, 0.4, 0.1), 0.8),
	}
	rng := rand.New(rand.NewSource(7))

	for _, lobe := range lobes {
		for i := 0; i < 50; i++ {
			wo := core.CosineSampleHemisphere(core.NewVec2(rng.Float64(), rng.Float64()))
			wi := core.CosineSampleHemisphere(core.NewVec2(rng.Float64(), rng.Float64()))
			a := lobe.F(wo, wi)
			b := lobe.F(wi, wo)
			if !vecEquals(a, b, 1e-12) {
				t.Fatalf("%T not reciprocal: F(wo,wi)=%v F(wi,wo)=%v", lobe, a, b)
			}
		}
	}
}

func TestDisneyLobeSamplingMatchesPDF(t *testing.T) {
	lobe := NewDisneyRetro(core.NewGray(0.5), 0.7)
	rng := rand.New(rand.NewSource(3))
	wo := direction(0.8, 0.2)

	for i := 0; i < 100; i++ {
		s, ok := lobe.SampleF(wo, core.NewVec2(rng.Float64(), rng.Float64()))
		if !ok {
			continue
		}
		if !bxdf.SameHemisphere(wo, s.Wi) {
			t.Fatalf("sample %v not in the hemisphere of %v", s.Wi, wo)
		}
		if pdf := lobe.PDF(wo, s.Wi); !floatEquals(pdf, s.PDF, 1e-12) {
			t.Fatalf("PDF(%v) = %v, sample reported %v", s.Wi, pdf, s.PDF)
		}
		if f := lobe.F(wo, s.Wi); !vecEquals(f, s.F, 1e-12) {
			t.Fatalf("F(%v) = %v, sample reported %v", s.Wi, f, s.F)
		}
	}
}
