package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-principled-shading/pkg/core"
)

// DefaultGamma is the display gamma applied when converting to 8-bit
const DefaultGamma = 2.2

// Framebuffer holds the accumulated samples of every pixel, row-major with
// y growing downwards
type Framebuffer struct {
	Width, Height int
	Pixels        []PixelStats
}

// NewFramebuffer creates an empty framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]PixelStats, width*height),
	}
}

// At returns the statistics of pixel (x, y)
func (fb *Framebuffer) At(x, y int) *PixelStats {
	return &fb.Pixels[y*fb.Width+x]
}

// AverageLuminance returns the mean linear luminance over all pixels
func (fb *Framebuffer) AverageLuminance() float64 {
	if len(fb.Pixels) == 0 {
		return 0
	}
	sum := 0.0
	for i := range fb.Pixels {
		sum += fb.Pixels[i].GetLuminance()
	}
	return sum / float64(len(fb.Pixels))
}

// ToRGBA converts the linear framebuffer to 8-bit sRGB-ish color with the
// given display gamma
func (fb *Framebuffer) ToRGBA(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(fb.At(x, y).GetColor(), gamma))
		}
	}
	return img
}

// vec3ToColor converts a linear color to RGBA with clamping and gamma correction
func vec3ToColor(c core.Vec3, gamma float64) color.RGBA {
	c = c.Clamp(0, 1).GammaCorrect(gamma)
	return color.RGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}

// EncodePNG writes img to w as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// WritePNG writes img to path, creating parent directories as needed
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := EncodePNG(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
