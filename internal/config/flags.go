package config

import "github.com/spf13/pflag"

// Overrides holds command-line values that take priority over the config file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	Width      int
	Height     int
	Fullscreen bool
	NoVSync    bool
	NoWatch    bool
	NoSmooth   bool
	// Models replaces the configured scene when non-empty.
	Models []string
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "path to config file")
	fs.BoolVar(&o.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&o.LogFile, "log-file", "", "also write logs to this file")
	fs.IntVar(&o.Width, "width", 0, "window width")
	fs.IntVar(&o.Height, "height", 0, "window height")
	fs.BoolVar(&o.Fullscreen, "fullscreen", false, "run fullscreen")
	fs.BoolVar(&o.NoVSync, "no-vsync", false, "disable vsync")
	fs.BoolVar(&o.NoWatch, "no-watch", false, "do not reload meshes when files change")
	fs.BoolVar(&o.NoSmooth, "no-smooth", false, "disable camera smoothing")
	return o
}

// apply writes the overrides into cfg. Safe on a nil receiver.
func (o *Overrides) apply(cfg *Config) {
	if o == nil {
		return
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Width > 0 {
		cfg.Window.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Window.Height = o.Height
	}
	if o.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if o.NoVSync {
		cfg.Window.VSync = false
	}
	if o.NoWatch {
		cfg.Scene.Watch = false
	}
	if o.NoSmooth {
		cfg.Camera.Smooth = false
	}
	if len(o.Models) > 0 {
		cfg.Scene.Objects = LineUp(o.Models)
	}
}

// palette holds the stock object colors.
var palette = [][3]float32{
	{0.9, 0.55, 0.2},
	{0.2, 0.55, 0.9},
	{0.2, 0.9, 0.2},
	{0.85, 0.3, 0.6},
}

// PaletteColor returns the i-th stock color, cycling.
func PaletteColor(i int) [3]float32 {
	return palette[i%len(palette)]
}

// LineUp places models side by side along X, centered on the origin,
// with default scale and a color cycled from the stock palette.
func LineUp(paths []string) []ObjectConfig {
	objs := make([]ObjectConfig, len(paths))
	offset := float32(len(paths)-1) / 2
	for i, p := range paths {
		objs[i] = ObjectConfig{
			Path:     p,
			Position: [3]float32{float32(i) - offset, 0, 0},
			Scale:    DefaultScale,
			Color:    PaletteColor(i),
		}
	}
	return objs
}
