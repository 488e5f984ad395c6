// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Camera     CameraConfig     `yaml:"camera"`
	Light      LightConfig      `yaml:"light"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	Background [3]float32 `yaml:"background"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Distance    float32 `yaml:"distance"`
	FOV         float32 `yaml:"fov"` // degrees
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Sensitivity float32 `yaml:"sensitivity"`
	ZoomSpeed   float32 `yaml:"zoom_speed"`
	KeyStep     float32 `yaml:"key_step"` // radians per arrow-key press
	Smooth      bool    `yaml:"smooth"`
}

// LightConfig holds the point light settings.
type LightConfig struct {
	Position    [3]float32 `yaml:"position"`
	Color       [3]float32 `yaml:"color"`
	OrbitRadius float32    `yaml:"orbit_radius"`
}

// SceneConfig lists the objects loaded at startup.
type SceneConfig struct {
	Objects []ObjectConfig `yaml:"objects"`
	Watch   bool           `yaml:"watch"` // reload meshes when files change
}

// ObjectConfig places one mesh in the scene.
type ObjectConfig struct {
	Path     string     `yaml:"path"`
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"` // degrees
	Scale    float32    `yaml:"scale"`
	Color    [3]float32 `yaml:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ScreenshotConfig holds screenshot capture settings.
type ScreenshotConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultScale is the object scale used when none is configured.
const DefaultScale = 0.2

// Default returns a Config with the stock three-object scene.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Models",
			Width:      1280,
			Height:     720,
			VSync:      true,
			Background: [3]float32{0.08, 0.08, 0.1},
		},
		Camera: CameraConfig{
			Distance:    5,
			FOV:         60,
			Near:        0.1,
			Far:         100,
			Sensitivity: 0.005,
			ZoomSpeed:   0.5,
			KeyStep:     0.05,
			Smooth:      true,
		},
		Light: LightConfig{
			Position:    [3]float32{1.2, 1.5, 1.0},
			Color:       [3]float32{1, 1, 1},
			OrbitRadius: 0.4,
		},
		Scene: SceneConfig{
			Objects: []ObjectConfig{
				{
					Path:     "assets/models/Planet.obj",
					Position: [3]float32{-1, 0, 0},
					Scale:    DefaultScale,
					Color:    [3]float32{0.9, 0.55, 0.2},
				},
				{
					Path:     "assets/models/funnything.obj",
					Position: [3]float32{1, 0, 0},
					Scale:    DefaultScale,
					Color:    [3]float32{0.2, 0.55, 0.9},
				},
				{
					Path:     "assets/models/buildings.obj",
					Position: [3]float32{0, -0.6, 0},
					Scale:    DefaultScale,
					Color:    [3]float32{0.2, 0.9, 0.2},
				},
			},
			Watch: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Screenshot: ScreenshotConfig{
			Dir: "screenshots",
		},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks settings that would make the viewer unusable.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 {
		return fmt.Errorf("%w: camera near plane %v must be positive", ErrInvalid, c.Camera.Near)
	}
	if c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera far plane %v must exceed near plane %v", ErrInvalid, c.Camera.Far, c.Camera.Near)
	}
	for i, obj := range c.Scene.Objects {
		if obj.Path == "" {
			return fmt.Errorf("%w: scene object %d has no path", ErrInvalid, i)
		}
	}
	return nil
}
