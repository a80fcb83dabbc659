package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, top row first
	Format string      // Decoder that read the image
}

// LoadImage loads a PNG, JPEG, BMP or TIFF image
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// DecodeImage decodes an image in any registered format into [0,1] colors.
// Alpha is divided out, so translucent texels keep their color.
func DecodeImage(r io.Reader) (*ImageData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	data := &ImageData{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: make([]core.Vec3, 0, b.Dx()*b.Dy()),
		Format: format,
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			data.Pixels = append(data.Pixels, straightColor(img, x, y))
		}
	}
	return data, nil
}

// straightColor reads non-premultiplied images as stored. Other images go
// through NRGBA64, which divides alpha back out.
func straightColor(img image.Image, x, y int) core.Vec3 {
	switch m := img.(type) {
	case *image.NRGBA:
		c := m.NRGBAAt(x, y)
		return core.NewVec3(float64(c.R)/math.MaxUint8, float64(c.G)/math.MaxUint8, float64(c.B)/math.MaxUint8)
	case *image.NRGBA64:
		c := m.NRGBA64At(x, y)
		return core.NewVec3(float64(c.R)/math.MaxUint16, float64(c.G)/math.MaxUint16, float64(c.B)/math.MaxUint16)
	}
	c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
	return core.NewVec3(float64(c.R)/math.MaxUint16, float64(c.G)/math.MaxUint16, float64(c.B)/math.MaxUint16)
}

// Linearize converts gamma-encoded pixels to linear values in place
func (d *ImageData) Linearize(gamma float64) {
	for i, p := range d.Pixels {
		d.Pixels[i] = core.NewVec3(math.Pow(p.X, gamma), math.Pow(p.Y, gamma), math.Pow(p.Z, gamma))
	}
}

// Texture wraps the pixels in an image texture with the given filter
func (d *ImageData) Texture(filter material.FilterMode) *material.ImageTexture {
	tex := material.NewImageTexture(d.Width, d.Height, d.Pixels)
	tex.Filter = filter
	return tex
}
