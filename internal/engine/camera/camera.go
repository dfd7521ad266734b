// Package camera provides the look-around camera used inside a panorama sphere.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/panorama/pkg/math"
)

var worldUp = math.Vec3{X: 0, Y: 1, Z: 0}

// PanoramaCamera sits at the center of the panorama sphere and rotates in
// place. Yaw 0 / pitch 0 looks down +X.
type PanoramaCamera struct {
	// Orientation (radians)
	Yaw   float32
	Pitch float32

	// Projection
	FOV    float32 // Vertical field of view, degrees
	Near   float32
	Far    float32
	Aspect float32

	// Constraints
	MinFOV   float32
	MaxFOV   float32
	MaxPitch float32

	// Sensitivity
	RotateSpeed float32
	ZoomSpeed   float32
}

// Config holds the tunable camera values.
type Config struct {
	FOV         float32
	Near        float32
	Far         float32
	MinFOV      float32
	MaxFOV      float32
	RotateSpeed float32
	ZoomSpeed   float32
}

// New creates a camera looking down +X with the given settings.
func New(cfg Config, width, height int) *PanoramaCamera {
	c := &PanoramaCamera{
		FOV:         cfg.FOV,
		Near:        cfg.Near,
		Far:         cfg.Far,
		MinFOV:      cfg.MinFOV,
		MaxFOV:      cfg.MaxFOV,
		MaxPitch:    math32.Pi/2 - 0.01,
		RotateSpeed: cfg.RotateSpeed,
		ZoomSpeed:   cfg.ZoomSpeed,
		Aspect:      1,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes are ignored.
func (c *PanoramaCamera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Forward returns the unit view direction.
func (c *PanoramaCamera) Forward() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	return math.Vec3{
		X: cp * math32.Cos(c.Yaw),
		Y: math32.Sin(c.Pitch),
		Z: cp * math32.Sin(c.Yaw),
	}
}

// Right returns the camera's right vector, used to orient billboards.
func (c *PanoramaCamera) Right() math.Vec3 {
	return c.Forward().Cross(worldUp).Normalize()
}

// Up returns the camera's up vector, used to orient billboards.
func (c *PanoramaCamera) Up() math.Vec3 {
	return c.Right().Cross(c.Forward()).Normalize()
}

// LookAt turns the camera toward dir.
func (c *PanoramaCamera) LookAt(dir math.Vec3) {
	d := dir.Normalize()
	if d == (math.Vec3{}) {
		return
	}
	c.Yaw = math32.Atan2(d.Z, d.X)
	c.Pitch = c.clampPitch(math32.Asin(d.Y))
}

// ViewMatrix returns the view matrix for this camera.
func (c *PanoramaCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(math.Vec3{}, c.Forward(), worldUp)
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *PanoramaCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOV*math32.Pi/180, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *PanoramaCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// InverseViewProjection returns the inverse of ViewProjection, used for picking.
func (c *PanoramaCamera) InverseViewProjection() math.Mat4 {
	return c.ViewProjection().Inverse()
}

// HandleDrag rotates the view by a mouse drag of (deltaX, deltaY) pixels in a
// viewport of the given height. Dragging moves the image with the pointer.
func (c *PanoramaCamera) HandleDrag(deltaX, deltaY float32, viewportH int) {
	if viewportH <= 0 {
		return
	}
	// One viewport height of drag turns the view by a full turn at speed 1.
	perPixel := 2 * math32.Pi / float32(viewportH) * c.RotateSpeed
	c.Yaw -= deltaX * perPixel
	c.Pitch = c.clampPitch(c.Pitch + deltaY*perPixel)
}

// HandleZoom narrows (delta > 0) or widens the field of view.
func (c *PanoramaCamera) HandleZoom(delta float32) {
	c.FOV -= delta * c.FOV * c.ZoomSpeed
	if c.FOV < c.MinFOV {
		c.FOV = c.MinFOV
	}
	if c.FOV > c.MaxFOV {
		c.FOV = c.MaxFOV
	}
}

func (c *PanoramaCamera) clampPitch(p float32) float32 {
	if p > c.MaxPitch {
		return c.MaxPitch
	}
	if p < -c.MaxPitch {
		return -c.MaxPitch
	}
	return p
}
