package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
)

func TestSphereHit(t *testing.T) {
	unit := NewSphere(core.Vec3{}, 1.0, nil)

	testCases := []struct {
		name       string
		ray        core.Ray
		tMin, tMax float64
		hit        bool
		t          float64
		front      bool
		normal     core.Vec3
	}{
		{"miss", core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0)), 0.001, 1000, false, 0, false, core.Vec3{}},
		{"outside", core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), 0.001, 1000, true, 1, true, core.NewVec3(0, 0, 1)},
		{"inside", core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 0.001, 1000, true, 1, false, core.NewVec3(0, 0, -1)},
		{"far root only", core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), 1.5, 1000, true, 3, false, core.NewVec3(0, 0, 1)},
		{"before tMin", core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), 3.5, 1000, false, 0, false, core.Vec3{}},
		{"beyond tMax", core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), 0.001, 0.5, false, 0, false, core.Vec3{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			si, ok := unit.Hit(tc.ray, tc.tMin, tc.tMax)
			if ok != tc.hit {
				t.Fatalf("Hit = %t, want %t", ok, tc.hit)
			}
			if !ok {
				return
			}
			if math.Abs(si.T-tc.t) > 1e-9 {
				t.Errorf("t = %f, want %f", si.T, tc.t)
			}
			if si.FrontFace != tc.front {
				t.Errorf("FrontFace = %t, want %t", si.FrontFace, tc.front)
			}
			if si.Normal.Subtract(tc.normal).Length() > 1e-9 {
				t.Errorf("Normal = %v, want %v", si.Normal, tc.normal)
			}
			if si.Shading.N != si.Normal {
				t.Errorf("Shading normal %v differs from geometric %v", si.Shading.N, si.Normal)
			}
		})
	}
}

func TestSphereParameterization(t *testing.T) {
	s := NewSphere(core.Vec3{}, 2.0, nil)
	si, ok := s.Hit(core.NewRay(core.NewVec3(5, 0, 0), core.NewVec3(-1, 0, 0)), 0.001, 1000)
	if !ok {
		t.Fatal("Expected equator hit")
	}

	if math.Abs(si.UV.X) > 1e-9 || math.Abs(si.UV.Y-0.5) > 1e-9 {
		t.Errorf("UV = %v, want (0, 0.5)", si.UV)
	}
	if si.Dpdu.Normalize().Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-9 {
		t.Errorf("dpdu = %v, want +Y", si.Dpdu)
	}
	if si.Dpdv.Normalize().Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("dpdv = %v, want +Z", si.Dpdv)
	}

	box := NewSphere(core.NewVec3(1, 2, 3), 0.5, nil).BoundingBox()
	if !box.Min.Equals(core.NewVec3(0.5, 1.5, 2.5)) || !box.Max.Equals(core.NewVec3(1.5, 2.5, 3.5)) {
		t.Errorf("Unexpected bounding box %v", box)
	}
}
