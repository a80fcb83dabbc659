package cmd

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// furnaceResult is the directional albedo of a material at one roughness
type furnaceResult struct {
	Roughness float64
	Albedo    core.Vec3
}

// Furnace estimates the directional albedo of a material for a sweep of
// roughness values by sampling its BSDF.
func Furnace(ctx *cli.Context) error {
	setupLogging(ctx)

	steps := ctx.Int("steps")
	if steps < 2 {
		return fmt.Errorf("furnace needs at least 2 roughness steps, got %d", steps)
	}
	samples := ctx.Int("samples")
	if samples <= 0 {
		return fmt.Errorf("furnace needs a positive sample count, got %d", samples)
	}

	mat, err := materialFromFlags(ctx)
	if err != nil {
		return err
	}

	wo := sphericalDirection(ctx.Float64("theta-o"), 0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(ctx.Int64("seed"))))

	results := make([]furnaceResult, 0, steps)
	for i := 0; i < steps; i++ {
		roughness := float64(i) / float64(steps-1)
		mat.Roughness = material.NewConstantFloat(math.Max(roughness, 0.001))
		albedo, err := directionalAlbedo(mat, wo, samples, sampler)
		if err != nil {
			return err
		}
		logger.Debugf("roughness %.3f: albedo %v", roughness, albedo)
		results = append(results, furnaceResult{Roughness: roughness, Albedo: albedo})
	}

	displayFurnace(ctx.App.Writer, results)
	return nil
}

// directionalAlbedo estimates the fraction of light arriving along wo that
// mat scatters back into the upper hemisphere
func directionalAlbedo(mat material.Material, wo core.Vec3, samples int, sampler core.Sampler) (core.Vec3, error) {
	arena := bxdf.NewArena()
	si := flatInteraction()
	if err := mat.ComputeScatteringFunctions(si, arena, material.Radiance, true); err != nil {
		return core.Vec3{}, fmt.Errorf("failed to build BSDF: %w", err)
	}

	var sum core.Vec3
	for i := 0; i < samples; i++ {
		s, ok := si.BSDF.SampleF(wo, sampler.Get2D(), bxdf.All)
		if !ok || s.PDF <= 0 || s.Wi.Z <= 0 {
			continue
		}
		sum = sum.Add(s.F.Multiply(s.Wi.Z / s.PDF))
	}
	return sum.Multiply(1 / float64(samples)), nil
}

func displayFurnace(w io.Writer, results []furnaceResult) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Roughness", "Albedo (r,g,b)", "Luminance", "Energy loss"})
	for _, r := range results {
		lum := r.Albedo.Luminance()
		table.Append([]string{
			fmt.Sprintf("%.3f", r.Roughness),
			fmt.Sprintf("%.4f, %.4f, %.4f", r.Albedo.X, r.Albedo.Y, r.Albedo.Z),
			fmt.Sprintf("%.4f", lum),
			fmt.Sprintf("%+.1f %%", (1-lum)*100),
		})
	}
	table.Render()
}
