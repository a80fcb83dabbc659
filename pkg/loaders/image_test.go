package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// quadrantImage is 2x2: white, red / green, blue
func quadrantImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{G: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestDecodeImageFormats(t *testing.T) {
	testCases := []struct {
		format string
		encode func(io.Writer, image.Image) error
	}{
		{"png", png.Encode},
		{"bmp", bmp.Encode},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
	}

	expected := []core.Vec3{
		core.NewGray(1), core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1),
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.encode(&buf, quadrantImage()); err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			data, err := DecodeImage(&buf)
			if err != nil {
				t.Fatalf("DecodeImage() error: %v", err)
			}
			if data.Format != tc.format {
				t.Errorf("Format = %q, want %q", data.Format, tc.format)
			}
			if data.Width != 2 || data.Height != 2 || len(data.Pixels) != 4 {
				t.Fatalf("Expected 2x2 image, got %dx%d with %d pixels", data.Width, data.Height, len(data.Pixels))
			}
			for i, want := range expected {
				if !vecNear(data.Pixels[i], want, 1e-9) {
					t.Errorf("Pixel %d = %v, want %v", i, data.Pixels[i], want)
				}
			}
		})
	}
}

func TestDecodeImageKeepsStraightAlphaColor(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 51, A: 128})
	nrgba64 := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	nrgba64.SetNRGBA64(0, 0, color.NRGBA64{R: 0xffff, G: 0x3333, A: 0x8000})

	testCases := []struct {
		name string
		img  image.Image
	}{
		{"8-bit", nrgba},
		{"16-bit", nrgba64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := png.Encode(&buf, tc.img); err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			data, err := DecodeImage(&buf)
			if err != nil {
				t.Fatalf("DecodeImage() error: %v", err)
			}
			if !vecNear(data.Pixels[0], core.NewVec3(1, 0.2, 0), 1e-9) {
				t.Errorf("Expected straight color (1,0.2,0), got %v", data.Pixels[0])
			}
		})
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := png.Encode(f, quadrantImage()); err != nil {
		f.Close()
		t.Fatalf("Failed to encode: %v", err)
	}
	f.Close()

	data, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	if data.Width != 2 || !vecNear(data.Pixels[3], core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Unexpected image %dx%d %v", data.Width, data.Height, data.Pixels)
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for a missing file")
	}
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Expected error for garbage input")
	}
}

func TestImageDataLinearize(t *testing.T) {
	data := &ImageData{
		Width:  2,
		Height: 1,
		Pixels: []core.Vec3{core.NewGray(0.5), core.NewGray(1)},
	}
	data.Linearize(2.0)
	if !vecNear(data.Pixels[0], core.NewGray(0.25), 1e-12) || !vecNear(data.Pixels[1], core.NewGray(1), 1e-12) {
		t.Errorf("Unexpected linearized pixels %v", data.Pixels)
	}

	tex := data.Texture(material.FilterNearest)
	if got := tex.Evaluate(core.NewVec2(0.75, 0.5), core.Vec3{}); !vecNear(got, core.NewGray(1), 1e-12) {
		t.Errorf("Expected right texel, got %v", got)
	}
}
