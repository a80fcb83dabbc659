package lights

import "github.com/df07/go-principled-shading/pkg/core"

// LightType distinguishes lights a camera ray can hit from lights it cannot
type LightType string

const (
	LightTypePoint    LightType = "point"
	LightTypeInfinite LightType = "infinite"
)

// Light is anything the integrator can sample for next event estimation.
// Directions always point away from the shading point.
type Light interface {
	Type() LightType

	// Sample picks an incident direction at point. Infinite lights only
	// sample the hemisphere around normal.
	Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample

	// PDF is the solid angle density Sample would assign to direction; 0 for delta lights
	PDF(point core.Vec3, normal core.Vec3, direction core.Vec3) float64

	// Emit is the radiance carried by a ray that escapes the scene
	Emit(ray core.Ray) core.Vec3
}

// LightSample is one incident direction chosen by Light.Sample
type LightSample struct {
	Point     core.Vec3
	Direction core.Vec3
	Distance  float64
	Emission  core.Vec3 // radiance, or intensity/d² when IsDelta
	PDF       float64
	IsDelta   bool
}

// LightSampler chooses which light to sample at a shading point
type LightSampler interface {
	SampleLight(point core.Vec3, normal core.Vec3, u float64) (Light, float64, int)
	GetLightProbability(lightIndex int, point core.Vec3, normal core.Vec3) float64
	GetLightCount() int
}
