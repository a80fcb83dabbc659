package material

import (
	"github.com/df07/go-principled-shading/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	// UV is used for image textures, point for procedural textures
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// FloatSource provides spatially-varying scalars (roughness, eta)
type FloatSource interface {
	Evaluate(uv core.Vec2, point core.Vec3) float64
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// ConstantFloat provides a uniform scalar
type ConstantFloat struct {
	Value float64
}

// NewConstantFloat creates a new constant scalar source
func NewConstantFloat(value float64) *ConstantFloat {
	return &ConstantFloat{Value: value}
}

// Evaluate returns the constant regardless of UV or position
func (c *ConstantFloat) Evaluate(uv core.Vec2, point core.Vec3) float64 {
	return c.Value
}

// ScaledColor multiplies two color sources channel by channel
type ScaledColor struct {
	Tex   ColorSource
	Scale ColorSource
}

// NewScaledColor creates a product of two color sources
func NewScaledColor(tex, scale ColorSource) *ScaledColor {
	return &ScaledColor{Tex: tex, Scale: scale}
}

// Evaluate returns the product of both sources
func (s *ScaledColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Tex.Evaluate(uv, point).MultiplyVec(s.Scale.Evaluate(uv, point))
}

// LuminanceFloat reads a color source as a scalar through its luminance,
// so image maps can drive roughness
type LuminanceFloat struct {
	Source ColorSource
}

// Evaluate returns the luminance of the wrapped source
func (l *LuminanceFloat) Evaluate(uv core.Vec2, point core.Vec3) float64 {
	return l.Source.Evaluate(uv, point).Luminance()
}
