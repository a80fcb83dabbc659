package geometry

import (
	"math"

	"github.com/df07/go-principled-shading/pkg/core"
)

// CameraConfig describes a pinhole perspective camera
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Up direction
	Width       int       // Image width in pixels
	AspectRatio float64   // Width / height
	VFov        float64   // Vertical field of view in degrees
}

// Camera generates primary rays for pixel coordinates
type Camera struct {
	config CameraConfig
	height int

	origin      core.Vec3
	pixel00     core.Vec3 // Center of the top-left pixel
	pixelDeltaU core.Vec3 // Step to the next pixel to the right
	pixelDeltaV core.Vec3 // Step to the next pixel down
	u, v, w     core.Vec3 // Camera basis, w points backwards
	focalLength float64
}

// NewCamera creates a camera from config. A degenerate config (zero width,
// zero aspect ratio, or up parallel to the view direction) falls back to
// sensible values.
func NewCamera(config CameraConfig) *Camera {
	if config.Width <= 0 {
		config.Width = 400
	}
	if config.AspectRatio <= 0 {
		config.AspectRatio = 1
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		config.VFov = 45
	}
	if config.Up.IsZero() {
		config.Up = core.NewVec3(0, 1, 0)
	}

	height := max(1, int(math.Round(float64(config.Width)/config.AspectRatio)))

	w := config.Center.Subtract(config.LookAt)
	focalLength := w.Length()
	if focalLength == 0 {
		w = core.NewVec3(0, 0, 1)
		focalLength = 1
	}
	w = w.Normalize()
	u := config.Up.Cross(w)
	if u.LengthSquared() < 1e-16 {
		u, _ = core.CoordinateSystem(w)
	}
	u = u.Normalize()
	v := w.Cross(u)

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2) * focalLength
	viewportWidth := viewportHeight * float64(config.Width) / float64(height)

	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Multiply(-viewportHeight)
	pixelDeltaU := viewportU.Multiply(1 / float64(config.Width))
	pixelDeltaV := viewportV.Multiply(1 / float64(height))

	upperLeft := config.Center.
		Subtract(w.Multiply(focalLength)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))

	return &Camera{
		config:      config,
		height:      height,
		origin:      config.Center,
		pixel00:     upperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5)),
		pixelDeltaU: pixelDeltaU,
		pixelDeltaV: pixelDeltaV,
		u:           u,
		v:           v,
		w:           w,
		focalLength: focalLength,
	}
}

// GetRay returns a ray through a random point of pixel (i, j). j grows
// downwards.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()
	pixel := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + jitter.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + jitter.Y - 0.5))
	return core.NewRay(c.origin, pixel.Subtract(c.origin).Normalize())
}

// GetCameraForward returns the viewing direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// WorldToCamera expresses p in camera space: x right, y up, z forward
func (c *Camera) WorldToCamera(p core.Vec3) core.Vec3 {
	d := p.Subtract(c.origin)
	return core.NewVec3(d.Dot(c.u), d.Dot(c.v), -d.Dot(c.w))
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.Width
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.height
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
