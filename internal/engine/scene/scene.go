// Package scene holds the objects and light the viewer draws. It owns CPU
// geometry only; GPU buffers are created by the caller from each object's
// vertex stream and refreshed when its Generation changes.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/internal/config"
	"github.com/Faultbox/orbitview/internal/engine/picking"
	"github.com/Faultbox/orbitview/pkg/formats"
	"github.com/Faultbox/orbitview/pkg/math"
)

// MeshLoader reads a mesh file into an interleaved position/normal stream.
type MeshLoader interface {
	Load(path string) ([]float32, error)
}

// Object is one placed mesh.
type Object struct {
	Path     string
	Position math.Vec3
	Yaw      float32 // radians
	Scale    float32
	Color    math.Vec3

	Vertices []float32
	// Generation increases every time Vertices is replaced.
	Generation int
	// Err is the last load error, nil after a clean load.
	Err error
}

// Model returns the object's model matrix.
func (o *Object) Model() math.Mat4 {
	return math.TRS(o.Position, o.Yaw, math.Vec3{X: o.Scale, Y: o.Scale, Z: o.Scale})
}

// LocalBounds returns the bounds of the untransformed mesh.
func (o *Object) LocalBounds() (lo, hi math.Vec3, ok bool) {
	return formats.Bounds(o.Vertices)
}

// WorldBounds returns the axis-aligned bounds of the mesh after the model
// transform.
func (o *Object) WorldBounds() (lo, hi math.Vec3, ok bool) {
	llo, lhi, ok := o.LocalBounds()
	if !ok {
		return lo, hi, false
	}
	m := o.Model()
	for i := range 8 {
		c := llo
		if i&1 != 0 {
			c.X = lhi.X
		}
		if i&2 != 0 {
			c.Y = lhi.Y
		}
		if i&4 != 0 {
			c.Z = lhi.Z
		}
		p := m.TransformPoint(c)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo, hi = lo.Min(p), hi.Max(p)
	}
	return lo, hi, true
}

// Light is a point light that circles its base position.
type Light struct {
	Base        math.Vec3
	Color       math.Vec3
	OrbitRadius float32
}

// PositionAt returns the light position t seconds into the animation.
func (l Light) PositionAt(t float32) math.Vec3 {
	return l.Base.Add(math.Vec3{
		X: math.Cos(t) * l.OrbitRadius,
		Z: math.Sin(t) * l.OrbitRadius,
	})
}

// Scene is the set of objects and the light. Not safe for concurrent use.
type Scene struct {
	Objects []*Object
	Light   Light

	loader MeshLoader
	log    *zap.Logger
}

// New creates an empty scene. A nil logger discards load warnings.
func New(loader MeshLoader, light Light, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{loader: loader, Light: light, log: log}
}

// FromConfig builds a scene from configuration, loading every object.
// Objects that fail to load are kept empty; unsupported formats are skipped.
func FromConfig(cfg *config.Config, loader MeshLoader, log *zap.Logger) *Scene {
	s := New(loader, Light{
		Base:        vec3(cfg.Light.Position),
		Color:       vec3(cfg.Light.Color),
		OrbitRadius: cfg.Light.OrbitRadius,
	}, log)
	for _, oc := range cfg.Scene.Objects {
		// Add logs its own failures.
		_, _ = s.Add(oc)
	}
	return s
}

// Add loads a mesh and places it. An unsupported format is rejected with an
// error wrapping formats.ErrUnsupportedFormat. Any other load failure keeps
// the object with an empty mesh and records the error in Object.Err.
func (s *Scene) Add(oc config.ObjectConfig) (*Object, error) {
	if _, err := formats.DetectFormat(oc.Path); err != nil {
		s.log.Warn("skipping model", zap.String("path", oc.Path), zap.Error(err))
		return nil, err
	}

	scale := oc.Scale
	if scale == 0 {
		scale = config.DefaultScale
	}
	obj := &Object{
		Path:     oc.Path,
		Position: vec3(oc.Position),
		Yaw:      math.Radians(oc.Yaw),
		Scale:    scale,
		Color:    vec3(oc.Color),
	}

	verts, err := s.loader.Load(oc.Path)
	obj.Vertices = verts
	obj.Err = err
	obj.Generation = 1
	s.logLoad(obj)

	s.Objects = append(s.Objects, obj)
	return obj, nil
}

// Reload re-reads every object loaded from path and returns those whose
// geometry was replaced. A failed reload keeps the previous geometry so a
// half-written file does not blank the object.
func (s *Scene) Reload(path string) []*Object {
	var changed []*Object

	var verts []float32
	var err error
	loaded := false
	for _, obj := range s.Objects {
		if obj.Path != path {
			continue
		}
		if !loaded {
			verts, err = s.loader.Load(path)
			loaded = true
		}
		if err != nil {
			s.log.Warn("reload failed, keeping previous mesh", zap.String("path", path), zap.Error(err))
			continue
		}
		obj.Vertices = verts
		obj.Err = nil
		obj.Generation++
		changed = append(changed, obj)
	}
	if len(changed) > 0 {
		s.log.Info("mesh reloaded",
			zap.String("path", path),
			zap.Int("objects", len(changed)),
			zap.Int("triangles", len(verts)/(formats.FloatsPerVertex*formats.VerticesPerTriangle)),
		)
	}
	return changed
}

// Paths returns the distinct mesh paths in object order.
func (s *Scene) Paths() []string {
	seen := make(map[string]bool, len(s.Objects))
	var out []string
	for _, obj := range s.Objects {
		if !seen[obj.Path] {
			seen[obj.Path] = true
			out = append(out, obj.Path)
		}
	}
	return out
}

// Bounds returns the world bounds of every non-empty object.
func (s *Scene) Bounds() (lo, hi math.Vec3, ok bool) {
	for _, obj := range s.Objects {
		olo, ohi, ook := obj.WorldBounds()
		if !ook {
			continue
		}
		if !ok {
			lo, hi, ok = olo, ohi, true
			continue
		}
		lo, hi = lo.Min(olo), hi.Max(ohi)
	}
	return lo, hi, ok
}

// Pick returns the nearest object whose world bounds r passes through, or
// nil. Empty objects cannot be picked.
func (s *Scene) Pick(r picking.Ray) *Object {
	var boxes []picking.AABB
	var objs []*Object
	for _, obj := range s.Objects {
		lo, hi, ok := obj.WorldBounds()
		if !ok {
			continue
		}
		boxes = append(boxes, picking.NewAABB(lo, hi))
		objs = append(objs, obj)
	}
	if i, _ := picking.Nearest(r, boxes); i >= 0 {
		return objs[i]
	}
	return nil
}

// TriangleCount returns the total triangles across all objects.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, obj := range s.Objects {
		n += len(obj.Vertices) / (formats.FloatsPerVertex * formats.VerticesPerTriangle)
	}
	return n
}

func (s *Scene) logLoad(obj *Object) {
	switch {
	case obj.Err == nil:
		s.log.Info("model loaded",
			zap.String("path", obj.Path),
			zap.Int("vertices", len(obj.Vertices)/formats.FloatsPerVertex),
		)
	case errors.Is(obj.Err, formats.ErrNoGeometry):
		s.log.Warn("model has no geometry", zap.String("path", obj.Path))
	default:
		s.log.Warn("model failed to load", zap.String("path", obj.Path), zap.Error(obj.Err))
	}
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// String describes the object for logs and the window title.
func (o *Object) String() string {
	return fmt.Sprintf("%s (%d triangles)", o.Path, len(o.Vertices)/(formats.FloatsPerVertex*formats.VerticesPerTriangle))
}
