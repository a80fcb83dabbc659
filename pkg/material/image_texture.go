package material

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// FilterMode selects how an image texture reconstructs values between texels
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
	Filter FilterMode
}

// NewImageTexture creates a new image texture with nearest-neighbor filtering
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Evaluate samples the texture at given UV coordinates. UVs wrap; V=0 is the
// bottom row of the image.
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	u := wrapUnit(uv.X)
	v := wrapUnit(uv.Y)

	if t.Filter == FilterBilinear {
		return t.bilinear(u, v)
	}

	// Flip V for image coordinates where origin is top-left
	x := int(u * float64(t.Width))
	y := int((1.0 - v) * float64(t.Height))
	return t.texel(x, y)
}

func (t *ImageTexture) bilinear(u, v float64) core.Vec3 {
	// Texel centers sit at half-integer coordinates
	x := u*float64(t.Width) - 0.5
	y := (1.0-v)*float64(t.Height) - 0.5
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	dx := x - float64(x0)
	dy := y - float64(y0)

	top := core.Lerp(dx, t.texelWrapped(x0, y0), t.texelWrapped(x0+1, y0))
	bottom := core.Lerp(dx, t.texelWrapped(x0, y0+1), t.texelWrapped(x0+1, y0+1))
	return core.Lerp(dy, top, bottom)
}

// texel clamps to the image bounds
func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = max(0, min(t.Width-1, x))
	y = max(0, min(t.Height-1, y))
	return t.Pixels[y*t.Width+x]
}

// texelWrapped repeats the image in both directions
func (t *ImageTexture) texelWrapped(x, y int) core.Vec3 {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	return t.Pixels[y*t.Width+x]
}

func wrapUnit(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}
