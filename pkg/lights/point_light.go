package lights

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// PointLight emits uniformly in all directions from a single position
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Radiant intensity
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Sample returns the single direction towards the light
func (pl *PointLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	toLight := pl.Position.Subtract(point)
	distSq := toLight.LengthSquared()
	if distSq == 0 {
		return LightSample{}
	}
	distance := math.Sqrt(distSq)

	return LightSample{
		Point:     pl.Position,
		Direction: toLight.Multiply(1 / distance),
		Distance:  distance,
		Emission:  pl.Intensity.Multiply(1 / distSq),
		PDF:       1,
		IsDelta:   true,
	}
}

// PDF is zero: a BSDF sample never hits a point light
func (pl *PointLight) PDF(point, normal, direction core.Vec3) float64 {
	return 0
}

// Emit returns zero, point lights are invisible to camera rays
func (pl *PointLight) Emit(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}
