package renderer

import (
	"image"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/integrator"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier, also offsets the sampling seed
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of non-overlapping tiles covering the image
func NewTileGrid(width, height, tileSize int) []Tile {
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]Tile, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return tiles
}

// TileRenderer renders individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	samples    int
}

// NewTileRenderer creates a tile renderer taking samples rays per pixel
func NewTileRenderer(s *scene.Scene, integ integrator.Integrator, samples int) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integ,
		samples:    samples,
	}
}

// RenderTileBounds renders the pixels within bounds into fb. Callers must
// not render overlapping bounds concurrently.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer, sampler core.Sampler, arena *bxdf.Arena) RenderStats {
	camera := tr.scene.Camera
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), TilesRendered: 1}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := fb.At(i, j)
			for s := 0; s < tr.samples; s++ {
				ray := camera.GetRay(i, j, sampler)
				ps.AddSample(tr.integrator.RayColor(ray, tr.scene, sampler, arena))
			}
			stats.TotalSamples += ps.SampleCount
			stats.DroppedSamples += ps.Dropped
		}
	}
	arena.Reset()
	return stats
}
