// Package viewer runs the interactive model viewer: window, input, orbit
// camera, scene and renderer wired into one loop.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/internal/config"
	"github.com/Faultbox/orbitview/internal/engine/camera"
	"github.com/Faultbox/orbitview/internal/engine/debug"
	"github.com/Faultbox/orbitview/internal/engine/framebuffer"
	"github.com/Faultbox/orbitview/internal/engine/input"
	"github.com/Faultbox/orbitview/internal/engine/renderer"
	"github.com/Faultbox/orbitview/internal/engine/scene"
	"github.com/Faultbox/orbitview/internal/engine/window"
	"github.com/Faultbox/orbitview/internal/logger"
	"github.com/Faultbox/orbitview/internal/watch"
	"github.com/Faultbox/orbitview/pkg/formats"
	"github.com/Faultbox/orbitview/pkg/math"
)

// targetFPS drives the camera spring step. The loop itself is paced by vsync.
const targetFPS = 60

var (
	boundsColor   = math.Vec3{X: 1, Y: 1, Z: 0.3}
	selectedColor = math.Vec3{X: 1, Y: 0.3, Z: 0.3}
)

// gpuObject is the uploaded state of one scene object.
type gpuObject struct {
	mesh       *renderer.Mesh
	bounds     *renderer.Lines
	generation int
}

// Viewer is the running application.
type Viewer struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	cam      camera.OrbitCamera
	home     camera.OrbitCamera
	smoother *camera.Smoother
	controls *Controls

	scene    *scene.Scene
	selected *scene.Object
	gpu      map[*scene.Object]*gpuObject
	watcher  *watch.Watcher

	shots      *debug.Screenshotter
	capture    *framebuffer.Framebuffer
	showBounds bool

	// opened receives paths chosen in the file dialog, which runs off the
	// main thread.
	opened     chan string
	dialogOpen bool
	start      time.Time
}

// New opens the window and loads the configured scene.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:      cfg,
		log:      logger.Named("viewer"),
		input:    input.New(),
		controls: NewControls(cfg.Camera),
		gpu:      make(map[*scene.Object]*gpuObject),
		shots:    debug.NewScreenshotter(cfg.Screenshot.Dir, "orbitview"),
		opened:   make(chan string, 1),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		Background: cfg.Window.Background,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	loader := formats.NewLoader(logger.Named("formats"))
	v.scene = scene.FromConfig(cfg, loader, logger.Named("scene"))

	v.home = homeCamera(cfg.Camera)
	v.cam = v.home
	if cfg.Camera.Smooth {
		v.smoother = camera.NewSmoother(v.cam, targetFPS)
	}

	if cfg.Scene.Watch {
		v.startWatcher()
	}

	v.log.Info("viewer ready",
		zap.Int("objects", len(v.scene.Objects)),
		zap.Int("triangles", v.scene.TriangleCount()),
	)
	return v, nil
}

// homeCamera is the camera R resets to.
func homeCamera(cfg config.CameraConfig) camera.OrbitCamera {
	cam := camera.NewOrbitCamera()
	if cfg.Distance > 0 {
		cam.Distance = cfg.Distance
	}
	if cfg.FOV > 0 {
		cam.FOV = math.Radians(cfg.FOV)
	}
	cam.Near = cfg.Near
	cam.Far = cfg.Far
	return cam
}

func (v *Viewer) startWatcher() {
	w, err := watch.New(logger.Named("watch"), watch.DefaultDebounce)
	if err != nil {
		v.log.Warn("hot reload disabled", zap.Error(err))
		return
	}
	v.watcher = w
	for _, p := range v.scene.Paths() {
		v.watch(p)
	}
}

func (v *Viewer) watch(path string) {
	if v.watcher == nil {
		return
	}
	if err := v.watcher.Add(path); err != nil {
		v.log.Warn("cannot watch model", zap.String("path", path), zap.Error(err))
	}
}

// Run drives the loop until the window closes, ESC is pressed or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.start = time.Now()
	lastTime := v.start
	frameCount := 0
	fpsTimer := v.start

	v.log.Debug("starting render loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		v.input.Update()
		if quit := v.handleEvents(); quit {
			return nil
		}

		v.pollOpened()
		v.pollWatcher()

		if v.smoother != nil {
			v.smoother.Update(&v.cam)
		}

		v.draw(float32(now.Sub(v.start).Seconds()))
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// handleEvents dispatches this frame's events. Returns true to quit.
func (v *Viewer) handleEvents() bool {
	var orbiter Orbiter = &v.cam
	if v.smoother != nil {
		orbiter = v.smoother
	}
	dragging := v.input.IsButtonDown(v.controls.DragButton)

	for _, e := range v.input.Events() {
		switch v.controls.Handle(orbiter, e, dragging) {
		case ActionQuit:
			return true
		case ActionResize:
			// Event sizes are in screen coordinates; the viewport wants pixels.
			v.renderer.Resize(v.window.DrawableSize())
		case ActionReset:
			v.setCamera(v.home)
		case ActionFrame:
			v.frameScene()
		case ActionOpen:
			v.openDialog()
		case ActionDrop:
			v.open(e.Path)
		case ActionPick:
			v.pick(e.MouseX, e.MouseY)
		case ActionToggleBounds:
			v.showBounds = !v.showBounds
		case ActionScreenshot:
			v.screenshot()
		}
	}
	return false
}

func (v *Viewer) setCamera(cam camera.OrbitCamera) {
	v.cam = cam
	if v.smoother != nil {
		v.smoother.Snap(v.cam)
	}
	v.log.Debug("camera set",
		zap.Float32("distance", v.cam.Distance),
		zap.Float32("yaw", v.cam.Yaw),
		zap.Float32("pitch", v.cam.Pitch),
	)
}

// frameScene recenters on the selected object, or on the whole scene when
// nothing is selected, keeping the current angles.
func (v *Viewer) frameScene() {
	lo, hi, ok := v.scene.Bounds()
	if v.selected != nil {
		lo, hi, ok = v.selected.WorldBounds()
	}
	if !ok {
		return
	}
	cam := v.cam
	cam.FitBounds(lo, hi)
	v.setCamera(cam)
}

// pick selects the object under window point (x, y). A miss clears the
// selection.
func (v *Viewer) pick(x, y int) {
	w, h := v.window.Size()
	if w == 0 || h == 0 {
		return
	}
	v.selected = v.scene.Pick(v.cam.ScreenRay(float32(x), float32(y), w, h))
	if v.selected == nil {
		v.window.SetTitle(v.cfg.Window.Title)
		return
	}
	v.log.Debug("object selected", zap.String("object", v.selected.String()))
	v.window.SetTitle(fmt.Sprintf("%s - %s", v.cfg.Window.Title, v.selected))
}

// openDialog shows the native file picker. SDL window calls must stay on
// the main thread, so the result is handed back through v.opened.
func (v *Viewer) openDialog() {
	if v.dialogOpen {
		return
	}
	v.dialogOpen = true
	go func() {
		path, err := dialog.File().
			Filter("Meshes", "obj", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			path = ""
		}
		v.opened <- path
	}()
}

func (v *Viewer) pollOpened() {
	select {
	case path := <-v.opened:
		v.dialogOpen = false
		if path != "" {
			v.open(path)
		}
	default:
	}
}

// open adds a model to the right of everything already in the scene.
func (v *Viewer) open(path string) {
	oc := config.ObjectConfig{
		Path:  path,
		Scale: config.DefaultScale,
		Color: config.PaletteColor(len(v.scene.Objects)),
	}
	if _, hi, ok := v.scene.Bounds(); ok {
		oc.Position = [3]float32{hi.X + 1, 0, 0}
	}

	obj, err := v.scene.Add(oc)
	if err != nil {
		return
	}
	v.watch(obj.Path)
	v.selected = obj
	v.window.SetTitle(fmt.Sprintf("%s - %s", v.cfg.Window.Title, obj))
}

func (v *Viewer) pollWatcher() {
	if v.watcher == nil {
		return
	}
	for _, path := range v.watcher.Changed() {
		v.scene.Reload(path)
	}
}

// sync uploads any object whose geometry changed since the last frame.
func (v *Viewer) sync(obj *scene.Object) *gpuObject {
	g, ok := v.gpu[obj]
	if !ok {
		g = &gpuObject{mesh: renderer.NewMesh(obj.Vertices), generation: obj.Generation}
		v.gpu[obj] = g
	} else if g.generation != obj.Generation {
		g.mesh.Update(obj.Vertices)
		g.generation = obj.Generation
		if g.bounds != nil {
			g.bounds.Delete()
			g.bounds = nil
		}
	}
	if (v.showBounds || obj == v.selected) && g.bounds == nil {
		if lo, hi, ok := obj.LocalBounds(); ok {
			g.bounds = renderer.NewLines(debug.BoundsLines(lo, hi, 0))
		}
	}
	return g
}

func (v *Viewer) frame(t float32) renderer.Frame {
	w, h := v.renderer.Size()
	return renderer.Frame{
		View:       v.cam.ViewMatrix(),
		Proj:       v.cam.ProjectionMatrix(camera.AspectRatio(w, h)),
		Eye:        v.cam.Position(),
		LightPos:   v.scene.Light.PositionAt(t),
		LightColor: v.scene.Light.Color,
	}
}

func (v *Viewer) draw(t float32) {
	v.renderer.Begin(v.frame(t))
	for _, obj := range v.scene.Objects {
		g := v.sync(obj)
		model := obj.Model()
		v.renderer.DrawMesh(g.mesh, model, obj.Color)
		switch {
		case obj == v.selected:
			v.renderer.DrawLines(g.bounds, model, selectedColor)
		case v.showBounds:
			v.renderer.DrawLines(g.bounds, model, boundsColor)
		}
	}
}

// screenshot renders the current frame offscreen and writes it as PNG.
func (v *Viewer) screenshot() {
	w, h := v.renderer.Size()
	if v.capture == nil {
		fb, err := framebuffer.New(w, h)
		if err != nil {
			v.log.Error("screenshot failed", zap.Error(err))
			return
		}
		v.capture = fb
	}
	v.capture.Resize(w, h)

	t := float32(time.Since(v.start).Seconds())
	pixels := v.capture.Capture(func() { v.draw(t) })
	fw, fh := v.capture.Size()

	path, err := v.shots.Save(pixels, fw, fh)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	v.log.Debug("closing viewer")

	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			v.log.Warn("closing watcher", zap.Error(err))
		}
	}
	for _, g := range v.gpu {
		g.mesh.Delete()
		if g.bounds != nil {
			g.bounds.Delete()
		}
	}
	if v.capture != nil {
		v.capture.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
