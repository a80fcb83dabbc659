package core

import "math"

// AABB is an axis-aligned box used by the BVH
type AABB struct {
	Min Vec3
	Max Vec3
}

func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints returns the tightest box around points, or the zero box
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = minVec(box.Min, p)
		box.Max = maxVec(box.Max, p)
	}
	return box
}

// Hit clips [tMin, tMax] against each slab in turn
func (b AABB) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		o := ray.Origin.Component(axis)
		d := ray.Direction.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)

		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return false
			}
			continue
		}

		t0, t1 := (lo-o)/d, (hi-o)/d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin, tMax = math.Max(tMin, t0), math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

func (b AABB) Union(other AABB) AABB {
	return AABB{Min: minVec(b.Min, other.Min), Max: maxVec(b.Max, other.Max)}
}

func (b AABB) Center() Vec3 {
	return Lerp(0.5, b.Min, b.Max)
}

func (b AABB) Size() Vec3 {
	return b.Max.Subtract(b.Min)
}

// LongestAxis returns 0, 1 or 2 for x, y or z; ties go to the later axis
func (b AABB) LongestAxis() int {
	s := b.Size()
	axis := 2
	if s.Y > s.Z {
		axis = 1
	}
	if s.X > s.Component(axis) {
		axis = 0
	}
	return axis
}

func minVec(a, b Vec3) Vec3 {
	return Vec3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxVec(a, b Vec3) Vec3 {
	return Vec3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
