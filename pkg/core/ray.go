package core

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// OffsetRayOrigin nudges a ray origin off a surface along the normal, on the
// side the outgoing direction points to, to avoid self-intersection.
func OffsetRayOrigin(p, n, dir Vec3) Vec3 {
	const epsilon = 1e-4
	offset := n.Multiply(epsilon)
	if dir.Dot(n) < 0 {
		offset = offset.Negate()
	}
	return p.Add(offset)
}
