// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"github.com/Faultbox/orbitview/internal/engine/picking"
	"github.com/Faultbox/orbitview/pkg/math"
)

// Defaults applied by callers that do not supply their own input scaling.
const (
	DefaultSensitivity = 0.005 // radians per pointer unit
	DefaultZoomSpeed   = 0.5   // distance units per scroll step
)

// Camera limits.
const (
	// MinDistance keeps the eye from collapsing onto the target.
	MinDistance = 0.1
	// MaxPitchDegrees keeps the view direction off the world up axis, where
	// LookAt degenerates.
	MaxPitchDegrees = 89.0
)

// MaxPitch is MaxPitchDegrees in radians.
var MaxPitch = math.Radians(MaxPitchDegrees)

// OrbitCamera orbits a target point in spherical coordinates.
// Limits are enforced by Rotate and Zoom, not at construction.
// It is not safe for concurrent mutation.
type OrbitCamera struct {
	Target   math.Vec3
	Distance float32
	Yaw      float32 // radians
	Pitch    float32 // radians

	FOV  float32 // vertical field of view, radians
	Near float32
	Far  float32
}

// NewOrbitCamera returns a camera five units in front of the origin with a
// 60 degree vertical field of view.
func NewOrbitCamera() OrbitCamera {
	return OrbitCamera{
		Distance: 5.0,
		FOV:      math.Radians(60),
		Near:     0.1,
		Far:      100.0,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := math.Cos(c.Pitch)
	offset := math.Vec3{
		X: math.Sin(c.Yaw) * cosPitch,
		Y: math.Sin(c.Pitch),
		Z: math.Cos(c.Yaw) * cosPitch,
	}
	return c.Target.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns a right-handed look-at matrix from Position toward Target.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Up)
}

// ProjectionMatrix returns the perspective projection for the given
// width/height ratio. aspect must be positive; callers guard zero-height
// viewports.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// AspectRatio returns width/height, or 1 for a zero-height viewport such as
// a minimized window.
func AspectRatio(width, height int) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// ScreenRay returns the world-space ray through pixel (x, y) of a
// width×height viewport.
func (c *OrbitCamera) ScreenRay(x, y float32, width, height int) picking.Ray {
	return picking.ScreenToRay(x, y, float32(width), float32(height),
		c.Position(), c.Target, c.FOV, AspectRatio(width, height))
}

// Rotate orbits by pointer deltas. Positive deltaX turns the view right,
// positive deltaY tilts the eye downward. Pitch is clamped to ±89°.
func (c *OrbitCamera) Rotate(deltaX, deltaY, sensitivity float32) {
	c.Yaw -= deltaX * sensitivity
	c.Pitch -= deltaY * sensitivity
	c.Pitch = math.Clamp(c.Pitch, -MaxPitch, MaxPitch)
}

// Zoom moves the eye toward the target for positive scrollDelta.
// Distance never drops below MinDistance.
func (c *OrbitCamera) Zoom(scrollDelta, zoomSpeed float32) {
	c.Distance -= scrollDelta * zoomSpeed
	c.Distance = max(c.Distance, MinDistance)
}

// FitBounds centers the target on the box and backs off until its bounding
// sphere fits the vertical field of view.
func (c *OrbitCamera) FitBounds(lo, hi math.Vec3) {
	c.Target = lo.Add(hi).Scale(0.5)

	radius := hi.Sub(lo).Length() / 2
	half := math.Sin(c.FOV / 2)
	if half <= 0 {
		half = 1
	}
	c.Distance = max(radius/half, MinDistance)
}
