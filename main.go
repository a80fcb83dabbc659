package main

import (
	"fmt"
	"os"

	"github.com/df07/go-principled-shading/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "principled"
	app.Usage = "render and inspect a simplified Disney principled BRDF"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	directionFlags := []cli.Flag{
		cli.Float64Flag{
			Name:  "theta-o",
			Value: 30,
			Usage: "polar angle of the outgoing direction in degrees",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to PNG",
			Description: `
Render a built-in scene (see the scenes command) or a PBRT-style .pbrt file.

Resolution and sampling settings come from the scene file when it specifies
them; flags given on the command line take precedence.`,
			ArgsUsage: "scene",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 400,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 400,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: 8,
					Usage: "maximum path length",
				},
				cli.IntFlag{
					Name:  "rr-bounces",
					Value: 3,
					Usage: "bounces before russian roulette may end a path",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 32,
					Usage: "edge length of render tiles",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of render workers (0 = CPU count)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "base random seed",
				},
				cli.StringFlag{
					Name:  "integrator",
					Value: "path",
					Usage: "light transport: path or field",
				},
				cli.StringFlag{
					Name:  "field",
					Value: "shNormal",
					Usage: "quantity shown by the field integrator: position, relPosition, distance, geoNormal, shNormal, uv, albedo or mask",
				},
				cli.StringFlag{
					Name:  "undefined",
					Value: "0",
					Usage: "field integrator color for rays that miss, as r,g,b or a single gray value",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: 2.2,
					Usage: "display gamma of the written image",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename for the rendered frame (default output/<scene>/render_<time>.png)",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:  "eval",
			Usage: "evaluate the BSDF lobes of a material for one direction pair",
			Description: `
Build a Disney-simple material on a flat surface and print the value and
sampling density of each lobe and of the whole BSDF.`,
			Flags: append(materialAndDirection(directionFlags),
				cli.Float64Flag{
					Name:  "theta-i",
					Value: 30,
					Usage: "polar angle of the incident direction in degrees",
				},
				cli.Float64Flag{
					Name:  "phi",
					Value: 180,
					Usage: "azimuth of the incident direction in degrees",
				},
			),
			Action: cmd.EvalBSDF,
		},
		{
			Name:  "furnace",
			Usage: "estimate directional albedo over a roughness sweep",
			Flags: append(materialAndDirection(directionFlags),
				cli.IntFlag{
					Name:  "steps",
					Value: 5,
					Usage: "number of roughness values between 0 and 1",
				},
				cli.IntFlag{
					Name:  "samples",
					Value: 65536,
					Usage: "BSDF samples per roughness value",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "random seed",
				},
			),
			Action: cmd.Furnace,
		},
		{
			Name:  "scenes",
			Usage: "list available scenes",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "dir",
					Value: "scenes",
					Usage: "directory searched for .pbrt files",
				},
			},
			Action: cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func materialAndDirection(direction []cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, cmd.MaterialFlags...), direction...)
}
