package renderer

import (
	"time"

	"github.com/df07/go-principled-shading/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Pixels rendered
	TotalSamples     int           // Samples accumulated
	AverageSamples   float64       // Average samples per pixel
	DroppedSamples   int           // NaN or infinite samples discarded
	TilesRendered    int           // Tiles completed
	TilesTotal       int           // Tiles in the image
	AverageLuminance float64       // Mean linear luminance of the image
	Duration         time.Duration // Wall-clock render time
}

// Merge adds the counts of a tile's statistics into s
func (s *RenderStats) Merge(tile RenderStats) {
	s.TotalPixels += tile.TotalPixels
	s.TotalSamples += tile.TotalSamples
	s.DroppedSamples += tile.DroppedSamples
	s.TilesRendered += tile.TilesRendered
}

// finalize computes the averages once every tile has been merged
func (s *RenderStats) finalize(fb *Framebuffer) {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
	s.AverageLuminance = fb.AverageLuminance()
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum     core.Vec3 // RGB accumulator for final result
	LuminanceAccum float64   // Luminance accumulator
	SampleCount    int       // Number of samples taken
	Dropped        int       // Non-finite samples discarded
}

// AddSample adds a new color sample to the pixel statistics. Samples with a
// NaN or infinite component are counted but not accumulated.
func (ps *PixelStats) AddSample(color core.Vec3) {
	if !color.IsFinite() {
		ps.Dropped++
		return
	}
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.LuminanceAccum += color.Luminance()
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// GetLuminance returns the average luminance for this pixel
func (ps *PixelStats) GetLuminance() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	return ps.LuminanceAccum / float64(ps.SampleCount)
}
