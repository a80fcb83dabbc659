package scene

import (
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
	"github.com/df07/go-principled-shading/pkg/loaders"
	"github.com/df07/go-principled-shading/pkg/material"
)

// Material grid layout: roughness varies along x, metallic along z
var (
	gridRoughness = []float64{0.05, 0.25, 0.5, 0.75, 1.0}
	gridMetallic  = []float64{0, 1.0 / 3, 2.0 / 3, 1}
	gridBaseColor = core.NewVec3(0.9, 0.6, 0.2)
)

const (
	gridSpacing = 1.0
	gridRadius  = 0.4
)

// NewMaterialGridScene creates a grid of spheres sweeping roughness from
// left to right and metallic-ness from back to front, on a checkered floor
func NewMaterialGridScene() *Scene {
	s := &Scene{
		Name: "material-grid",
		CameraConfig: geometry.CameraConfig{
			Center:      core.NewVec3(0, 3.5, 6),
			LookAt:      core.NewVec3(0, 0.2, 0),
			Up:          core.NewVec3(0, 1, 0),
			Width:       640,
			AspectRatio: 16.0 / 9.0,
			VFov:        35,
		},
		SamplingConfig: SamplingConfig{
			Width:                     640,
			Height:                    360,
			SamplesPerPixel:           64,
			MaxDepth:                  8,
			RussianRouletteMinBounces: 3,
		},
	}

	cols, rows := len(gridRoughness), len(gridMetallic)
	x0 := -gridSpacing * float64(cols-1) / 2
	z0 := -gridSpacing * float64(rows-1) / 2
	for row, metallic := range gridMetallic {
		for col, roughness := range gridRoughness {
			gm := loaders.GLTFMaterial{BaseColor: gridBaseColor, Metallic: metallic, Roughness: roughness}
			diffuse, specular, rough := gm.DisneyParams()
			center := core.NewVec3(x0+float64(col)*gridSpacing, gridRadius, z0+float64(row)*gridSpacing)
			s.Shapes = append(s.Shapes, geometry.NewSphere(center, gridRadius, material.NewDisneySimple(diffuse, specular, rough, 1.5)))
		}
	}

	s.Shapes = append(s.Shapes, NewGroundQuad(core.Vec3{}, 20, checkerFloor()))
	s.AddPointLight(core.NewVec3(2, 6, 4), core.NewGray(40))
	s.AddUniformInfiniteLight(core.NewVec3(0.25, 0.3, 0.4))
	return s
}

// checkerFloor is a rough gray checkerboard built through the parameter set
func checkerFloor() material.Material {
	params := material.NewParamSet()
	params.AddColorSource("diffuse", material.NewCheckerTexture(10, 10,
		material.NewSolidColor(core.NewGray(0.6)),
		material.NewSolidColor(core.NewGray(0.2))))
	params.AddColor("specular", core.NewGray(0.02))
	params.AddFloat("roughness", 0.8)
	mat, err := material.CreateDisneySimpleMaterial(params)
	if err != nil {
		// Constant parameters above are always valid
		panic(err)
	}
	return mat
}

// NewWhiteFurnaceScene places a white diffuse sphere under a uniform unit
// environment; a lossless material renders close to the background
func NewWhiteFurnaceScene() *Scene {
	s := &Scene{
		Name: "white-furnace",
		CameraConfig: geometry.CameraConfig{
			Center:      core.NewVec3(0, 0, 4),
			LookAt:      core.NewVec3(0, 0, 0),
			Up:          core.NewVec3(0, 1, 0),
			Width:       256,
			AspectRatio: 1,
			VFov:        40,
		},
		SamplingConfig: SamplingConfig{
			Width:                     256,
			Height:                    256,
			SamplesPerPixel:           64,
			MaxDepth:                  16,
			RussianRouletteMinBounces: 4,
		},
	}
	s.Shapes = append(s.Shapes, geometry.NewSphere(core.Vec3{}, 1, material.NewDisneySimple(core.NewGray(1), core.Vec3{}, 0.5, 1.0)))
	s.AddUniformInfiniteLight(core.NewGray(1))
	return s
}
