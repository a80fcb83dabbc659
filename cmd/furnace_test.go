package cmd

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/urfave/cli"
)

func furnaceCommand() cli.Command {
	return cli.Command{
		Name: "furnace",
		Flags: append(append([]cli.Flag{}, MaterialFlags...),
			cli.Float64Flag{Name: "theta-o", Value: 30},
			cli.IntFlag{Name: "steps", Value: 5},
			cli.IntFlag{Name: "samples", Value: 256},
			cli.Int64Flag{Name: "seed", Value: 42},
		),
		Action: Furnace,
	}
}

func newTestSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func TestDirectionalAlbedo(t *testing.T) {
	wo := sphericalDirection(30, 0)

	// Black with eta 1 has no reflectance at all
	black := material.NewDisneySimple(core.Vec3{}, core.Vec3{}, 0.5, 1.0)
	albedo, err := directionalAlbedo(black, wo, 1024, newTestSampler(1))
	if err != nil {
		t.Fatalf("directionalAlbedo() error: %v", err)
	}
	if albedo.MaxComponent() > 1e-6 {
		t.Errorf("Expected zero albedo, got %v", albedo)
	}

	white := material.NewDisneySimple(core.NewGray(1), core.Vec3{}, 1.0, 1.0)
	albedo, err = directionalAlbedo(white, wo, 4096, newTestSampler(1))
	if err != nil {
		t.Fatalf("directionalAlbedo() error: %v", err)
	}
	if lum := albedo.Luminance(); lum < 0.5 || lum > 1.5 {
		t.Errorf("Expected white diffuse albedo near 1, got %f", lum)
	}

	again, _ := directionalAlbedo(white, wo, 4096, newTestSampler(1))
	if again != albedo {
		t.Errorf("Same seed gave %v and %v", albedo, again)
	}
}

func TestFurnaceCommand(t *testing.T) {
	out, err := runApp(t, furnaceCommand(), "--steps", "3", "--samples", "64")
	if err != nil {
		t.Fatalf("furnace error: %v", err)
	}
	for _, want := range []string{"Roughness", "0.000", "0.500", "1.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	if _, err := runApp(t, furnaceCommand(), "--steps", "1"); err == nil {
		t.Error("Expected error for a single roughness step")
	}
	if _, err := runApp(t, furnaceCommand(), "--samples", "0"); err == nil {
		t.Error("Expected error for zero samples")
	}
}
