package renderer

import (
	"image"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/geometry"
	"github.com/df07/go-principled-shading/pkg/material"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// constantIntegrator returns the same color for every ray
type constantIntegrator struct {
	color core.Vec3
	calls atomic.Int64
}

func (c *constantIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler, arena *bxdf.Arena) core.Vec3 {
	c.calls.Add(1)
	return c.color
}

// createTestScene creates a single sphere under a uniform sky
func createTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := &scene.Scene{
		Name: "test",
		CameraConfig: geometry.CameraConfig{
			Center: core.NewVec3(0, 0, 3),
			LookAt: core.NewVec3(0, 0, 0),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   40,
		},
	}
	s.Shapes = append(s.Shapes, geometry.NewSphere(core.Vec3{}, 1,
		material.NewDisneySimple(core.NewVec3(0.7, 0.3, 0.3), core.NewGray(0.04), 0.5, 1.5)))
	s.AddUniformInfiniteLight(core.NewVec3(0.5, 0.7, 1.0))
	return s
}

func preparedScene(t *testing.T, width, height int) *scene.Scene {
	t.Helper()
	s := createTestScene(t)
	s.CameraConfig.Width = width
	s.CameraConfig.AspectRatio = float64(width) / float64(height)
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return s
}

func TestNewTileGrid(t *testing.T) {
	// 400x225 with 64x64 tiles: 7 x 4 tiles
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize)

	if len(tiles) != 28 {
		t.Errorf("Expected 28 tiles, got %d", len(tiles))
	}

	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for idx, tile := range tiles {
		if tile.ID != idx {
			t.Errorf("Tile %d has ID %d", idx, tile.ID)
		}
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Fatalf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}
}

func TestRenderTileBounds(t *testing.T) {
	s := preparedScene(t, 8, 8)
	integ := &constantIntegrator{color: core.NewVec3(0.2, 0.4, 0.6)}
	tr := NewTileRenderer(s, integ, 3)
	fb := NewFramebuffer(8, 8)
	arena := bxdf.NewArena()

	bounds := image.Rect(2, 2, 6, 5)
	stats := tr.RenderTileBounds(bounds, fb, core.NewRandomSampler(rand.New(rand.NewSource(1))), arena)

	if stats.TotalPixels != 12 || stats.TotalSamples != 36 || stats.TilesRendered != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if integ.calls.Load() != 36 {
		t.Errorf("Expected 36 integrator calls, got %d", integ.calls.Load())
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			ps := fb.At(x, y)
			inside := image.Pt(x, y).In(bounds)
			switch {
			case inside && (ps.SampleCount != 3 || !ps.GetColor().Equals(integ.color)):
				t.Errorf("Pixel (%d,%d) = %v with %d samples", x, y, ps.GetColor(), ps.SampleCount)
			case !inside && ps.SampleCount != 0:
				t.Errorf("Pixel (%d,%d) outside bounds was sampled", x, y)
			}
		}
	}
	if arena.Len() != 0 {
		t.Errorf("Expected arena reset after tile, has %d allocations", arena.Len())
	}
}

func TestRenderTileBoundsDropsNonFinite(t *testing.T) {
	s := preparedScene(t, 4, 4)
	integ := &constantIntegrator{color: core.NewVec3(math.NaN(), 0, 0)}
	tr := NewTileRenderer(s, integ, 2)
	fb := NewFramebuffer(4, 4)

	stats := tr.RenderTileBounds(image.Rect(0, 0, 4, 4), fb, core.NewRandomSampler(rand.New(rand.NewSource(1))), bxdf.NewArena())
	if stats.TotalSamples != 0 || stats.DroppedSamples != 32 {
		t.Errorf("Expected 32 dropped samples, got %+v", stats)
	}
	if c := fb.At(1, 1).GetColor(); c != (core.Vec3{}) {
		t.Errorf("Expected black pixel, got %v", c)
	}
}
