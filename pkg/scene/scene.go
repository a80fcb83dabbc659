package scene

import (
	"errors"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
	"github.com/df07/go-principled-shading/pkg/lights"
	"github.com/df07/go-principled-shading/pkg/material"
)

// ErrEmptyScene is returned by Preprocess for a scene with nothing to render
var ErrEmptyScene = errors.New("scene: no shapes and no lights")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	Shapes         []geometry.Shape    // Objects in the scene
	Lights         []lights.Light      // Lights in the scene
	LightSampler   lights.LightSampler // Light sampler
	SamplingConfig SamplingConfig
	Integrator     IntegratorSettings
	CameraConfig   geometry.CameraConfig
	BVH            *geometry.BVH // Acceleration structure for ray-object intersection
}

// SamplingConfig holds the rendering settings a scene can carry. Zero
// values mean "not specified".
type SamplingConfig struct {
	Width                     int // Image width
	Height                    int // Image height
	SamplesPerPixel           int // Number of rays per pixel
	MaxDepth                  int // Maximum ray bounce depth
	RussianRouletteMinBounces int // Minimum bounces before Russian Roulette can activate
}

// IntegratorSettings is the light transport a scene file asks for. An empty
// Name means the file did not choose one.
type IntegratorSettings struct {
	Name      string    // "path" or "field"
	Field     string    // Field shown by the field integrator
	Undefined core.Vec3 // Field integrator color for rays that miss
}

// NewGroundQuad creates a large horizontal quad centered at center with its
// normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, material material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (size,0,0) × (0,0,size) points down, so walk v first
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, material)
}

// Preprocess prepares the scene for rendering: builds the camera and the BVH
// and creates a uniform light sampler unless one was set
func (s *Scene) Preprocess() error {
	if len(s.Shapes) == 0 && len(s.Lights) == 0 {
		return ErrEmptyScene
	}

	if s.CameraConfig.Width == 0 && s.SamplingConfig.Width > 0 {
		s.CameraConfig.Width = s.SamplingConfig.Width
		if s.SamplingConfig.Height > 0 {
			s.CameraConfig.AspectRatio = float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
		}
	}
	s.Camera = geometry.NewCamera(s.CameraConfig)

	s.BVH = geometry.NewBVH(s.Shapes)

	if s.LightSampler == nil {
		s.LightSampler = lights.NewUniformLightSampler(s.Lights)
	}
	return nil
}

// Hit intersects ray with the scene geometry
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	if s.BVH == nil {
		return nil, false
	}
	return s.BVH.Hit(ray, tMin, tMax)
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		count += s.countPrimitivesInShape(shape)
	}
	return count
}

// countPrimitivesInShape counts primitives in a single shape, handling complex objects
func (s *Scene) countPrimitivesInShape(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.TriangleMesh:
		return obj.GetTriangleCount()
	default:
		return 1
	}
}

// AddPointLight adds a point light to the scene
func (s *Scene) AddPointLight(position, intensity core.Vec3) {
	s.Lights = append(s.Lights, lights.NewPointLight(position, intensity))
}

// AddUniformInfiniteLight adds a uniform infinite light to the scene
func (s *Scene) AddUniformInfiniteLight(emission core.Vec3) {
	s.Lights = append(s.Lights, lights.NewUniformInfiniteLight(emission))
}
