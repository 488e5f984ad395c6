package camera

import (
	"github.com/charmbracelet/harmonica"

	"github.com/Faultbox/orbitview/pkg/math"
)

// Spring tuning: moderate speed, critically damped so angles never overshoot.
const (
	springFrequency = 6.0
	springDamping   = 1.0
)

// Smoother eases a camera toward a goal driven by input. Input goes to the
// goal through Rotate and Zoom, so the goal always satisfies the camera
// limits; Update then springs the live camera toward it.
type Smoother struct {
	Goal OrbitCamera

	spring                    harmonica.Spring
	yawVel, pitchVel, distVel float64
}

// NewSmoother creates a smoother for a loop running at fps frames per second,
// starting at rest on cam.
func NewSmoother(cam OrbitCamera, fps int) *Smoother {
	if fps <= 0 {
		fps = 60
	}
	return &Smoother{
		Goal:   cam,
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
	}
}

// Rotate applies pointer deltas to the goal.
func (s *Smoother) Rotate(deltaX, deltaY, sensitivity float32) {
	s.Goal.Rotate(deltaX, deltaY, sensitivity)
}

// Zoom applies a scroll delta to the goal.
func (s *Smoother) Zoom(scrollDelta, zoomSpeed float32) {
	s.Goal.Zoom(scrollDelta, zoomSpeed)
}

// Snap moves the goal to cam and stops any motion in progress.
func (s *Smoother) Snap(cam OrbitCamera) {
	s.Goal = cam
	s.yawVel, s.pitchVel, s.distVel = 0, 0, 0
}

// Update advances cam one frame toward the goal. Non-animated fields (target,
// projection) are copied from the goal directly.
func (s *Smoother) Update(cam *OrbitCamera) {
	cam.Yaw = s.step(cam.Yaw, &s.yawVel, s.Goal.Yaw)
	cam.Pitch = s.step(cam.Pitch, &s.pitchVel, s.Goal.Pitch)
	cam.Distance = s.step(cam.Distance, &s.distVel, s.Goal.Distance)

	cam.Pitch = math.Clamp(cam.Pitch, -MaxPitch, MaxPitch)
	cam.Distance = max(cam.Distance, MinDistance)

	cam.Target = s.Goal.Target
	cam.FOV, cam.Near, cam.Far = s.Goal.FOV, s.Goal.Near, s.Goal.Far
}

func (s *Smoother) step(pos float32, vel *float64, goal float32) float32 {
	p, v := s.spring.Update(float64(pos), *vel, float64(goal))
	*vel = v
	return float32(p)
}
