package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/orbitview/internal/config"
	"github.com/Faultbox/orbitview/internal/engine/input"
)

// Action is a viewer command triggered by input.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionResize
	ActionReset
	ActionFrame
	ActionOpen
	ActionScreenshot
	ActionToggleBounds
	ActionDrop
	ActionPick
)

// ClickSlop is how far, in pointer units, the mouse may travel between press
// and release and still count as a click rather than a drag.
const ClickSlop = 3

// Orbiter is what controls drive: the camera directly, or its smoother.
type Orbiter interface {
	Rotate(deltaX, deltaY, sensitivity float32)
	Zoom(scrollDelta, zoomSpeed float32)
}

// Controls maps input events to camera motion and viewer actions.
type Controls struct {
	Sensitivity float32
	ZoomSpeed   float32
	KeyStep     float32 // radians per arrow press
	// DragButton is the mouse button that orbits while held. A click with it
	// picks instead.
	DragButton uint8

	travel int // pointer travel since DragButton went down
}

// NewControls builds controls from camera settings.
func NewControls(cfg config.CameraConfig) *Controls {
	return &Controls{
		Sensitivity: cfg.Sensitivity,
		ZoomSpeed:   cfg.ZoomSpeed,
		KeyStep:     cfg.KeyStep,
		DragButton:  sdl.BUTTON_LEFT,
	}
}

// Handle applies e to cam and returns the resulting action. dragging reports
// whether DragButton is currently held.
func (c *Controls) Handle(cam Orbiter, e input.Event, dragging bool) Action {
	switch e.Type {
	case input.EventQuit:
		return ActionQuit

	case input.EventWindowResize:
		return ActionResize

	case input.EventFileDrop:
		return ActionDrop

	case input.EventMouseDown:
		if e.Button == c.DragButton {
			c.travel = 0
		}

	case input.EventMouseUp:
		if e.Button == c.DragButton && c.travel <= ClickSlop {
			return ActionPick
		}

	case input.EventMouseMove:
		if dragging {
			c.travel += abs(e.DX) + abs(e.DY)
			cam.Rotate(float32(e.DX), float32(e.DY), c.Sensitivity)
		}

	case input.EventMouseWheel:
		cam.Zoom(e.WheelY, c.ZoomSpeed)

	case input.EventKeyDown:
		return c.key(cam, e)
	}
	return ActionNone
}

func (c *Controls) key(cam Orbiter, e input.Event) Action {
	// Rotate expects pointer units; convert the step so one press turns by KeyStep radians.
	step := c.KeyStep
	if c.Sensitivity != 0 {
		step /= c.Sensitivity
	}

	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		return ActionQuit
	case sdl.SCANCODE_LEFT:
		cam.Rotate(-step, 0, c.Sensitivity)
	case sdl.SCANCODE_RIGHT:
		cam.Rotate(step, 0, c.Sensitivity)
	case sdl.SCANCODE_UP:
		cam.Rotate(0, -step, c.Sensitivity)
	case sdl.SCANCODE_DOWN:
		cam.Rotate(0, step, c.Sensitivity)
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		cam.Zoom(1, c.ZoomSpeed)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		cam.Zoom(-1, c.ZoomSpeed)
	}

	if e.Repeat {
		return ActionNone
	}
	switch e.Key {
	case sdl.SCANCODE_R:
		return ActionReset
	case sdl.SCANCODE_F:
		return ActionFrame
	case sdl.SCANCODE_O:
		return ActionOpen
	case sdl.SCANCODE_B:
		return ActionToggleBounds
	case sdl.SCANCODE_F12:
		return ActionScreenshot
	}
	return ActionNone
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
