package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/integrator"
	"github.com/df07/go-principled-shading/pkg/scene"
)

// Renderer renders a scene tile by tile on a worker pool
type Renderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	config     RenderConfig
	logger     core.Logger
}

// NewRenderer validates config and prepares s for rendering at the
// configured resolution
func NewRenderer(s *scene.Scene, integ integrator.Integrator, config RenderConfig, logger core.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	s.CameraConfig.Width = config.Width
	s.CameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)
	if err := s.Preprocess(); err != nil {
		return nil, fmt.Errorf("failed to prepare scene %q: %w", s.Name, err)
	}

	return &Renderer{
		scene:      s,
		integrator: integ,
		config:     config,
		logger:     logger,
	}, nil
}

// Config returns the render configuration
func (r *Renderer) Config() RenderConfig {
	return r.config
}

// Render renders every tile and returns the framebuffer. When ctx ends
// early no further tiles are handed out; the partially rendered framebuffer
// is returned with an error wrapping ErrCanceled.
func (r *Renderer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	fb := NewFramebuffer(r.config.Width, r.config.Height)
	tiles := NewTileGrid(r.config.Width, r.config.Height, r.config.TileSize)

	tr := NewTileRenderer(r.scene, r.integrator, r.config.SamplesPerPixel)
	pool := NewWorkerPool(tr, r.config.NumWorkers, len(tiles), r.config.Seed)
	pool.Start()

	r.logger.Printf("Rendering %s: %dx%d, %d spp, %d tiles on %d workers\n",
		r.scene.Name, r.config.Width, r.config.Height, r.config.SamplesPerPixel, len(tiles), pool.GetNumWorkers())

	go func() {
		defer pool.Stop()
		for _, tile := range tiles {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case pool.Tasks() <- TileTask{Tile: tile, Framebuffer: fb}:
			}
		}
	}()

	stats := RenderStats{TilesTotal: len(tiles)}
	for result := range pool.Results() {
		stats.Merge(result.Stats)
	}
	stats.finalize(fb)
	stats.Duration = time.Since(start)

	if stats.TilesRendered < stats.TilesTotal {
		r.logger.Printf("Render canceled after %d of %d tiles\n", stats.TilesRendered, stats.TilesTotal)
		return fb, stats, fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
	}
	if stats.DroppedSamples > 0 {
		r.logger.Printf("Dropped %d non-finite samples\n", stats.DroppedSamples)
	}
	return fb, stats, nil
}
