package material

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// CheckerTexture alternates between two colors on a UV grid
type CheckerTexture struct {
	UScale, VScale float64
	Even, Odd      ColorSource
}

// NewCheckerTexture creates a checkerboard with the given repeat counts
func NewCheckerTexture(uScale, vScale float64, even, odd ColorSource) *CheckerTexture {
	return &CheckerTexture{UScale: uScale, VScale: vScale, Even: even, Odd: odd}
}

// Evaluate picks the color of the check containing uv
func (c *CheckerTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	cu := int(math.Floor(uv.X * c.UScale))
	cv := int(math.Floor(uv.Y * c.VScale))
	if (cu+cv)%2 == 0 {
		return c.Even.Evaluate(uv, point)
	}
	return c.Odd.Evaluate(uv, point)
}

// UVTexture shows UV coordinates as colors: U maps to red, V to green
type UVTexture struct{}

// Evaluate returns (u, v, 0) wrapped to [0, 1)
func (UVTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return core.NewVec3(wrapUnit(uv.X), wrapUnit(uv.Y), 0)
}
