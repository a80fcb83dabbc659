package lights

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// UniformInfiniteLight surrounds the scene with constant radiance
type UniformInfiniteLight struct {
	radiance core.Vec3
}

func NewUniformInfiniteLight(radiance core.Vec3) *UniformInfiniteLight {
	return &UniformInfiniteLight{radiance: radiance}
}

func (l *UniformInfiniteLight) Type() LightType { return LightTypeInfinite }

// Sample draws a cosine-distributed direction around normal
func (l *UniformInfiniteLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	wi := core.SampleCosineHemisphere(normal, sample)
	return LightSample{
		Point:     point.Add(wi.Multiply(1e10)),
		Direction: wi,
		Distance:  math.Inf(1),
		Emission:  l.radiance,
		PDF:       l.PDF(point, normal, wi),
	}
}

func (l *UniformInfiniteLight) PDF(point, normal, direction core.Vec3) float64 {
	return math.Max(0, direction.Dot(normal)) / math.Pi
}

func (l *UniformInfiniteLight) Emit(core.Ray) core.Vec3 { return l.radiance }
