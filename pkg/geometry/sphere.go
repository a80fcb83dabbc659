package geometry

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
	"github.com/df07/go-principled-shading/pkg/material"
)

// Sphere is parameterized by longitude u and latitude v with poles on z;
// v runs from 0 at the south pole to 1 at the north pole.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: material}
}

func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	t, ok := s.nearestRoot(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	return s.interaction(ray, t), true
}

// nearestRoot solves |o + t·d - c|² = r² for the smallest t in [tMin, tMax]
func (s *Sphere) nearestRoot(ray core.Ray, tMin, tMax float64) (float64, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.LengthSquared()
	h := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	disc := h*h - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{(-h - sq) / a, (-h + sq) / a} {
		if t >= tMin && t <= tMax {
			return t, true
		}
	}
	return 0, false
}

func (s *Sphere) interaction(ray core.Ray, t float64) *material.SurfaceInteraction {
	p := ray.At(t)
	d := p.Subtract(s.Center)

	phi := math.Atan2(d.Y, d.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(math.Max(-1, math.Min(1, d.Z/s.Radius)))

	// ∂p/∂u and ∂p/∂v for u = φ/2π, v = 1 - θ/π
	dpdu := core.NewVec3(-d.Y, d.X, 0).Multiply(2 * math.Pi)
	var dpdv core.Vec3
	if rxy := math.Hypot(d.X, d.Y); rxy > 0 {
		dpdv = core.NewVec3(d.Z*d.X/rxy, d.Z*d.Y/rxy, -s.Radius*math.Sin(theta)).Multiply(-math.Pi)
	}

	si := &material.SurfaceInteraction{
		T:        t,
		Point:    p,
		UV:       core.NewVec2(phi/(2*math.Pi), 1-theta/math.Pi),
		Dpdu:     dpdu,
		Dpdv:     dpdv,
		Material: s.Material,
	}
	si.SetFaceNormal(ray, d.Divide(s.Radius))
	return si
}

func (s *Sphere) BoundingBox() core.AABB {
	r := core.NewGray(s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}
