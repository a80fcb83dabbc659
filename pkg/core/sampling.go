package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// ConcentricSampleDisk maps a uniform sample on [0,1)² to the unit disk
// using Shirley's concentric mapping. The result lies in the XY plane.
func ConcentricSampleDisk(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math.Pi/2 - math.Pi/4*(uOffset.X/uOffset.Y)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// CosineSampleHemisphere returns a cosine-weighted direction in the local
// hemisphere around +Z
func CosineSampleHemisphere(sample Vec2) Vec3 {
	d := ConcentricSampleDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return NewVec3(d.X, d.Y, z)
}

// SampleCosineHemisphere generates a cosine-weighted direction in the world
// space hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	local := CosineSampleHemisphere(sample)
	tangent, bitangent := CoordinateSystem(normal)
	return tangent.Multiply(local.X).Add(bitangent.Multiply(local.Y)).Add(normal.Multiply(local.Z))
}

// UniformSampleSphere generates a uniform random direction on the unit sphere
func UniformSampleSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePDF is the solid angle density of UniformSampleSphere
func UniformSpherePDF() float64 {
	return 1.0 / (4.0 * math.Pi)
}

// CoordinateSystem builds two unit vectors that together with v (assumed
// normalized) form an orthonormal basis
func CoordinateSystem(v Vec3) (Vec3, Vec3) {
	var v2 Vec3
	if math.Abs(v.X) > math.Abs(v.Y) {
		v2 = NewVec3(-v.Z, 0, v.X).Divide(math.Sqrt(v.X*v.X + v.Z*v.Z))
	} else {
		v2 = NewVec3(0, v.Z, -v.Y).Divide(math.Sqrt(v.Y*v.Y + v.Z*v.Z))
	}
	return v2, v.Cross(v2)
}

// PowerHeuristic computes the MIS weight of strategy f using the power
// heuristic with beta = 2
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	if math.IsInf(f*f, 1) {
		return 1
	}
	return (f * f) / (f*f + g*g)
}
