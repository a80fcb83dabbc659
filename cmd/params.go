package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/urfave/cli"
)

// MaterialFlags are shared by the commands that build a material from the
// command line
var MaterialFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "diffuse",
		Value: "0.5,0.5,0.5",
		Usage: "diffuse color as r,g,b or a single gray value",
	},
	cli.StringFlag{
		Name:  "specular",
		Value: "0.04",
		Usage: "specular color as r,g,b or a single gray value",
	},
	cli.Float64Flag{
		Name:  "roughness",
		Value: 0.5,
		Usage: "perceptual roughness in [0,1]",
	},
	cli.Float64Flag{
		Name:  "eta",
		Value: 1.5,
		Usage: "index of refraction of the dielectric part",
	},
}

// parseColor parses "r,g,b" or a single gray value
func parseColor(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		values[i] = v
	}

	switch len(values) {
	case 1:
		return core.NewGray(values[0]), nil
	case 3:
		return core.NewVec3(values[0], values[1], values[2]), nil
	default:
		return core.Vec3{}, fmt.Errorf("invalid color %q: expected 1 or 3 components", s)
	}
}

// materialFromFlags builds a Disney-simple material through the same
// parameter set the scene loader uses
func materialFromFlags(ctx *cli.Context) (*material.DisneySimple, error) {
	diffuse, err := parseColor(ctx.String("diffuse"))
	if err != nil {
		return nil, fmt.Errorf("diffuse: %w", err)
	}
	specular, err := parseColor(ctx.String("specular"))
	if err != nil {
		return nil, fmt.Errorf("specular: %w", err)
	}

	params := material.NewParamSet()
	params.AddColor("diffuse", diffuse)
	params.AddColor("specular", specular)
	params.AddFloat("roughness", ctx.Float64("roughness"))
	params.AddFloat("eta", ctx.Float64("eta"))
	return material.CreateDisneySimpleMaterial(params)
}

// flatInteraction returns a hit on the z=0 plane seen from above, so the
// world axes coincide with the local shading frame
func flatInteraction() *material.SurfaceInteraction {
	si := &material.SurfaceInteraction{
		UV:   core.NewVec2(0.5, 0.5),
		Dpdu: core.NewVec3(1, 0, 0),
		Dpdv: core.NewVec3(0, 1, 0),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	si.SetFaceNormal(ray, core.NewVec3(0, 0, 1))
	return si
}

// sphericalDirection returns the unit vector with polar angle theta and
// azimuth phi, both in degrees, around +z
func sphericalDirection(theta, phi float64) core.Vec3 {
	t := theta * math.Pi / 180
	p := phi * math.Pi / 180
	return core.NewVec3(math.Sin(t)*math.Cos(p), math.Sin(t)*math.Sin(p), math.Cos(t))
}
