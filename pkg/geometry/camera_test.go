package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-principled-shading/pkg/core"
)

func defaultTestCamera() *Camera {
	return NewCamera(CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 2.0,
		VFov:        90.0,
	})
}

// centerSampler always returns the pixel center
type centerSampler struct{}

func (centerSampler) Get1D() float64 { return 0.5 }
func (centerSampler) Get2D() core.Vec2 {
	return core.NewVec2(0.5, 0.5)
}

func TestCameraForward(t *testing.T) {
	camera := defaultTestCamera()
	forward := camera.GetCameraForward()
	if !forward.Equals(core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected forward (0,0,-1), got %v", forward)
	}
	if camera.Height() != 200 {
		t.Errorf("Expected height 200, got %d", camera.Height())
	}
}

func TestCameraCenterRay(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       2,
		AspectRatio: 1.0,
		VFov:        90.0,
	})

	// Pixel (0,0) is the top-left one: direction points left and up
	ray := camera.GetRay(0, 0, centerSampler{})
	if ray.Direction.X >= 0 || ray.Direction.Y <= 0 || ray.Direction.Z >= 0 {
		t.Errorf("Top-left pixel ray should point left, up and forward, got %v", ray.Direction)
	}
	if math.Abs(ray.Direction.Length()-1) > 1e-9 {
		t.Errorf("Ray direction should be normalized, got length %f", ray.Direction.Length())
	}

	// With a 90 degree fov and 2x2 pixels, the pixel center sits at (-0.5, 0.5, -1)
	expected := core.NewVec3(-0.5, 0.5, -1).Normalize()
	if !ray.Direction.Equals(expected) {
		t.Errorf("Expected direction %v, got %v", expected, ray.Direction)
	}
}

func TestCameraRaysStayInsideFrustum(t *testing.T) {
	camera := defaultTestCamera()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	halfTan := math.Tan(math.Pi / 4)

	for i := 0; i < 100; i++ {
		ray := camera.GetRay(rand.Intn(400), rand.Intn(200), sampler)
		local := camera.WorldToCamera(ray.At(1))
		if local.Z <= 0 {
			t.Fatalf("Ray should point forward, got camera-space %v", local)
		}
		if math.Abs(local.Y/local.Z) > halfTan+1e-9 {
			t.Errorf("Ray outside vertical fov: %v", local)
		}
		if math.Abs(local.X/local.Z) > 2*halfTan+1e-9 {
			t.Errorf("Ray outside horizontal fov: %v", local)
		}
	}
}

func TestCameraWorldToCamera(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center:      core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       100,
		AspectRatio: 1,
		VFov:        40,
	})

	tests := []struct {
		name     string
		world    core.Vec3
		expected core.Vec3
	}{
		{"look at point", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 5)},
		{"right", core.NewVec3(1, 0, 5), core.NewVec3(1, 0, 0)},
		{"up", core.NewVec3(0, 2, 5), core.NewVec3(0, 2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := camera.WorldToCamera(tt.world)
			if !got.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCameraDegenerateConfig(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Center: core.NewVec3(0, 5, 0),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 1, 0),
	})
	if camera.Width() <= 0 || camera.Height() <= 0 {
		t.Fatalf("Expected fallback resolution, got %dx%d", camera.Width(), camera.Height())
	}
	ray := camera.GetRay(camera.Width()/2, camera.Height()/2, centerSampler{})
	if !ray.Direction.IsFinite() {
		t.Errorf("Ray direction should be finite, got %v", ray.Direction)
	}
}
