package cmd

import (
	"fmt"
	"io"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// lobeEval is the value of one lobe, or of the whole BSDF, for a direction
// pair
type lobeEval struct {
	Name string
	Type bxdf.Type
	F    core.Vec3
	PDF  float64
}

// EvalBSDF evaluates a material built from flags for one pair of directions
// and prints a row per lobe plus the total.
func EvalBSDF(ctx *cli.Context) error {
	setupLogging(ctx)

	mat, err := materialFromFlags(ctx)
	if err != nil {
		return err
	}

	wo := sphericalDirection(ctx.Float64("theta-o"), 0)
	wi := sphericalDirection(ctx.Float64("theta-i"), ctx.Float64("phi"))
	logger.Debugf("evaluating wo=%v wi=%v", wo, wi)

	lobes, total, err := evaluateLobes(mat, wo, wi)
	if err != nil {
		return err
	}
	displayLobes(ctx.App.Writer, lobes, total)
	return nil
}

// evaluateLobes builds the BSDF of mat on a flat surface and evaluates each
// lobe and the aggregate for the local directions wo and wi
func evaluateLobes(mat material.Material, wo, wi core.Vec3) ([]lobeEval, lobeEval, error) {
	arena := bxdf.NewArena()
	si := flatInteraction()
	if err := mat.ComputeScatteringFunctions(si, arena, material.Radiance, true); err != nil {
		return nil, lobeEval{}, fmt.Errorf("failed to build BSDF: %w", err)
	}

	var lobes []lobeEval
	for _, lobe := range si.BSDF.Lobes() {
		lobes = append(lobes, lobeEval{
			Name: lobeName(lobe),
			Type: lobe.Type(),
			F:    lobe.F(wo, wi),
			PDF:  lobe.PDF(wo, wi),
		})
	}

	total := lobeEval{
		Name: "total",
		Type: bxdf.All,
		F:    si.BSDF.F(wo, wi, bxdf.All),
		PDF:  si.BSDF.PDF(wo, wi, bxdf.All),
	}
	return lobes, total, nil
}

func lobeName(lobe bxdf.BxDF) string {
	switch lobe.(type) {
	case *material.DisneyDiffuse:
		return "diffuse"
	case *material.DisneyRetro:
		return "retro"
	case *bxdf.MicrofacetReflection:
		return "specular"
	default:
		return lobe.Type().String()
	}
}

func displayLobes(w io.Writer, lobes []lobeEval, total lobeEval) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Lobe", "Type", "f (r,g,b)", "Luminance", "PDF"})
	for _, lobe := range lobes {
		table.Append(lobeRow(lobe))
	}
	table.SetFooter(lobeRow(total))
	table.Render()
}

func lobeRow(l lobeEval) []string {
	typ := l.Type.String()
	if l.Type == bxdf.All {
		typ = ""
	}
	return []string{
		l.Name,
		typ,
		fmt.Sprintf("%.5f, %.5f, %.5f", l.F.X, l.F.Y, l.F.Z),
		fmt.Sprintf("%.5f", l.F.Luminance()),
		fmt.Sprintf("%.5f", l.PDF),
	}
}
