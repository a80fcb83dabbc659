package renderer

import (
	"fmt"

	"github.com/df07/go-principled-shading/pkg/scene"
)

// RenderConfig contains the settings for a single render
type RenderConfig struct {
	Width                     int   // Image width in pixels
	Height                    int   // Image height in pixels
	SamplesPerPixel           int   // Number of camera rays per pixel
	MaxDepth                  int   // Maximum path length
	RussianRouletteMinBounces int   // Bounces before Russian roulette may terminate a path
	TileSize                  int   // Edge length of square tiles
	NumWorkers                int   // Number of parallel workers (0 = use CPU count)
	Seed                      int64 // Base seed; tile n is sampled with Seed+n
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:                     400,
		Height:                    400,
		SamplesPerPixel:           16,
		MaxDepth:                  8,
		RussianRouletteMinBounces: 3,
		TileSize:                  32,
		NumWorkers:                0,
		Seed:                      42,
	}
}

// WithScene returns c with every value the scene specifies (non-zero)
// taking precedence
func (c RenderConfig) WithScene(s scene.SamplingConfig) RenderConfig {
	if s.Width > 0 {
		c.Width = s.Width
	}
	if s.Height > 0 {
		c.Height = s.Height
	}
	if s.SamplesPerPixel > 0 {
		c.SamplesPerPixel = s.SamplesPerPixel
	}
	if s.MaxDepth > 0 {
		c.MaxDepth = s.MaxDepth
	}
	if s.RussianRouletteMinBounces > 0 {
		c.RussianRouletteMinBounces = s.RussianRouletteMinBounces
	}
	return c
}

// SamplingConfig returns the part of c the integrators consume
func (c RenderConfig) SamplingConfig() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:                     c.Width,
		Height:                    c.Height,
		SamplesPerPixel:           c.SamplesPerPixel,
		MaxDepth:                  c.MaxDepth,
		RussianRouletteMinBounces: c.RussianRouletteMinBounces,
	}
}

// Validate reports the first setting that cannot be rendered
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: %d samples per pixel", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: %d workers", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}
