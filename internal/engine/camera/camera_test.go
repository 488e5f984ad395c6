package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/orbitview/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func nearVec(a, b math.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestNewOrbitCameraDefaults(t *testing.T) {
	c := NewOrbitCamera()

	if c.Target != (math.Vec3{}) {
		t.Errorf("Target = %v, want origin", c.Target)
	}
	if c.Distance != 5 || c.Yaw != 0 || c.Pitch != 0 {
		t.Errorf("Distance/Yaw/Pitch = %v/%v/%v, want 5/0/0", c.Distance, c.Yaw, c.Pitch)
	}
	if !near(c.FOV, math.Radians(60)) {
		t.Errorf("FOV = %v, want 60 degrees", c.FOV)
	}
	if c.Near != 0.1 || c.Far != 100 {
		t.Errorf("clip = [%v, %v], want [0.1, 100]", c.Near, c.Far)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name       string
		target     math.Vec3
		yaw, pitch float32
		want       math.Vec3
	}{
		{"default", math.Vec3{}, 0, 0, math.Vec3{Z: 5}},
		{"offset target", math.Vec3{X: 1, Y: 2, Z: 3}, 0, 0, math.Vec3{X: 1, Y: 2, Z: 8}},
		{"yaw 90", math.Vec3{}, gomath.Pi / 2, 0, math.Vec3{X: 5}},
		{"yaw 180", math.Vec3{}, gomath.Pi, 0, math.Vec3{Z: -5}},
		{"pitch 30", math.Vec3{}, 0, gomath.Pi / 6, math.Vec3{Y: 2.5, Z: 5 * float32(gomath.Sqrt(3)/2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Target = tt.target
			c.Yaw, c.Pitch = tt.yaw, tt.pitch

			if got := c.Position(); !nearVec(got, tt.want) {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionKeepsDistance(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = math.Vec3{X: -3, Y: 1, Z: 7}
	c.Rotate(123, -45, 0.01)
	c.Zoom(2, 1)

	if d := c.Position().Distance(c.Target); !near(d, c.Distance) {
		t.Errorf("eye-target distance = %v, want %v", d, c.Distance)
	}
}

func TestViewMatrixLooksAtTarget(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = math.Vec3{X: 1, Y: 1, Z: 1}
	c.Rotate(100, 50, DefaultSensitivity)

	view := c.ViewMatrix()
	if got := view.TransformPoint(c.Position()); !nearVec(got, math.Vec3{}) {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	want := math.Vec3{Z: -c.Distance}
	if got := view.TransformPoint(c.Target); !nearVec(got, want) {
		t.Errorf("target in view space = %v, want %v", got, want)
	}
}

func TestViewMatrixAtPitchLimitIsFinite(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(0, -1e6, DefaultSensitivity)

	for i, v := range c.ViewMatrix() {
		if gomath.IsNaN(float64(v)) || gomath.IsInf(float64(v), 0) {
			t.Fatalf("view[%d] = %v at pitch limit", i, v)
		}
	}
}

func TestProjectionMatrix(t *testing.T) {
	c := NewOrbitCamera()
	p := c.ProjectionMatrix(2)

	want := math.Perspective(c.FOV, 2, c.Near, c.Far)
	if p != want {
		t.Errorf("ProjectionMatrix(2) = %v, want %v", p, want)
	}
	if !near(p[5], p[0]*2) {
		t.Errorf("aspect not applied: m[0]=%v m[5]=%v", p[0], p[5])
	}
}

func TestRotateSigns(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(10, 20, 0.01)

	if !near(c.Yaw, -0.1) {
		t.Errorf("Yaw = %v, want -0.1", c.Yaw)
	}
	if !near(c.Pitch, -0.2) {
		t.Errorf("Pitch = %v, want -0.2", c.Pitch)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	deltas := []float32{1e3, -1e3, 1e9, -1e9, 17, -17}

	c := NewOrbitCamera()
	for _, dy := range deltas {
		for range 50 {
			c.Rotate(0, dy, DefaultSensitivity)
			if c.Pitch < -MaxPitch || c.Pitch > MaxPitch {
				t.Fatalf("Pitch = %v outside ±%v after deltaY %v", c.Pitch, MaxPitch, dy)
			}
		}
	}

	c.Rotate(0, 1e9, DefaultSensitivity)
	if c.Pitch != -MaxPitch {
		t.Errorf("Pitch = %v, want -%v", c.Pitch, MaxPitch)
	}
}

func TestRotateDoesNotWrapYaw(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(-10000, 0, 0.01)
	if !near(c.Yaw, 100) {
		t.Errorf("Yaw = %v, want 100", c.Yaw)
	}
}

func TestZoom(t *testing.T) {
	c := NewOrbitCamera()
	c.Zoom(2, DefaultZoomSpeed)
	if !near(c.Distance, 4) {
		t.Errorf("Distance = %v, want 4", c.Distance)
	}
	c.Zoom(-4, DefaultZoomSpeed)
	if !near(c.Distance, 6) {
		t.Errorf("Distance = %v, want 6", c.Distance)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	for range 100 {
		c.Zoom(1e6, DefaultZoomSpeed)
		if c.Distance < MinDistance {
			t.Fatalf("Distance = %v below %v", c.Distance, float32(MinDistance))
		}
	}
	if c.Distance != MinDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, float32(MinDistance))
	}
}

func TestConstructionDoesNotClamp(t *testing.T) {
	c := OrbitCamera{Distance: 0, Pitch: 3}
	if c.Distance != 0 || c.Pitch != 3 {
		t.Error("literal construction should not enforce limits")
	}
	c.Zoom(0, DefaultZoomSpeed)
	if c.Distance != MinDistance {
		t.Errorf("Distance after Zoom = %v, want %v", c.Distance, float32(MinDistance))
	}
}

func TestFitBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitBounds(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 3, Y: 1, Z: 1})

	if c.Target != (math.Vec3{X: 1}) {
		t.Errorf("Target = %v, want (1,0,0)", c.Target)
	}
	radius := float32(gomath.Sqrt(24)) / 2
	if want := radius / math.Sin(c.FOV/2); !near(c.Distance, want) {
		t.Errorf("Distance = %v, want %v", c.Distance, want)
	}

	c.FitBounds(math.Vec3{}, math.Vec3{})
	if c.Distance != MinDistance {
		t.Errorf("Distance for point bounds = %v, want %v", c.Distance, float32(MinDistance))
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		w, h int
		want float32
	}{
		{1280, 720, 1280.0 / 720.0},
		{800, 800, 1},
		{800, 0, 1},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := AspectRatio(tt.w, tt.h); got != tt.want {
			t.Errorf("AspectRatio(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestScreenRayHitsTarget(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = math.Vec3{X: 1, Y: 2, Z: 3}
	c.Yaw = 0.7
	c.Pitch = -0.3

	r := c.ScreenRay(320, 240, 640, 480)
	if !nearVec(r.Origin, c.Position()) {
		t.Errorf("Origin = %v, want %v", r.Origin, c.Position())
	}
	if got := r.At(c.Distance); !nearVec(got, c.Target) {
		t.Errorf("center ray at distance reaches %v, want %v", got, c.Target)
	}
}
