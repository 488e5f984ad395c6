// Package renderer draws lit meshes and debug lines with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/internal/engine/shader"
	"github.com/Faultbox/orbitview/internal/logger"
	"github.com/Faultbox/orbitview/pkg/formats"
	"github.com/Faultbox/orbitview/pkg/math"
)

const floatSize = 4

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [3]float32
}

// Frame holds the per-frame camera and light state shared by every draw.
type Frame struct {
	View       math.Mat4
	Proj       math.Mat4
	Eye        math.Vec3
	LightPos   math.Vec3
	LightColor math.Vec3
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	lit    *shader.Program
	line   *shader.Program
	frame  Frame
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)

	var err error
	if r.lit, err = shader.NewLit(); err != nil {
		return nil, err
	}
	if r.line, err = shader.NewLine(); err != nil {
		r.lit.Delete()
		return nil, err
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	logger.Debug("closing renderer")
	r.lit.Delete()
	r.line.Delete()
}

// Resize updates the viewport to the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin clears the target and records the frame state for subsequent draws.
func (r *Renderer) Begin(f Frame) {
	r.frame = f
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.lit.Use()
	r.lit.SetMat4("uView", r.frame.View.Ptr())
	r.lit.SetMat4("uProj", r.frame.Proj.Ptr())
	r.lit.SetVec3("uLightPos", f.LightPos.Array())
	r.lit.SetVec3("uViewPos", f.Eye.Array())
	r.lit.SetVec3("uLightColor", f.LightColor.Array())
}

// DrawMesh draws a mesh lit by the frame's light.
func (r *Renderer) DrawMesh(m *Mesh, model math.Mat4, color math.Vec3) {
	if m == nil || m.count == 0 {
		return
	}
	r.lit.Use()
	r.lit.SetMat4("uModel", model.Ptr())
	r.lit.SetVec3("uObjectColor", color.Array())

	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	gl.BindVertexArray(0)
}

// DrawLines draws a line list in a flat color.
func (r *Renderer) DrawLines(l *Lines, model math.Mat4, color math.Vec3) {
	if l == nil || l.count == 0 {
		return
	}
	r.line.Use()
	r.line.SetMat4("uModel", model.Ptr())
	r.line.SetMat4("uView", r.frame.View.Ptr())
	r.line.SetMat4("uProj", r.frame.Proj.Ptr())
	r.line.SetVec3("uColor", color.Array())

	gl.BindVertexArray(l.vao)
	gl.DrawArrays(gl.LINES, 0, l.count)
	gl.BindVertexArray(0)
}

// Mesh is an uploaded interleaved position/normal vertex buffer.
type Mesh struct {
	vao   uint32
	vbo   uint32
	count int32
}

// NewMesh uploads vertices laid out as formats.FloatsPerVertex floats each.
// An empty slice yields a mesh that draws nothing.
func NewMesh(vertices []float32) *Mesh {
	m := &Mesh{}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)

	stride := int32(formats.FloatsPerVertex * floatSize)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*floatSize)
	gl.EnableVertexAttribArray(1)

	m.upload(vertices)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", m.vao),
		zap.Int32("vertices", m.count),
	)
	return m
}

// Update replaces the mesh contents.
func (m *Mesh) Update(vertices []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	m.upload(vertices)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// upload expects the VBO to be bound.
func (m *Mesh) upload(vertices []float32) {
	m.count = int32(len(vertices) / formats.FloatsPerVertex)
	if len(vertices) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*floatSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
}

// VertexCount returns the number of vertices drawn.
func (m *Mesh) VertexCount() int {
	return int(m.count)
}

// Delete releases the GPU buffers.
func (m *Mesh) Delete() {
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	m.count = 0
}

// Lines is an uploaded position-only line list.
type Lines struct {
	vao   uint32
	vbo   uint32
	count int32
}

// NewLines uploads xyz line endpoints, two vertices per segment.
func NewLines(points []float32) *Lines {
	l := &Lines{count: int32(len(points) / 3)}
	gl.GenVertexArrays(1, &l.vao)
	gl.GenBuffers(1, &l.vbo)

	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	if len(points) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(points)*floatSize, unsafe.Pointer(&points[0]), gl.STATIC_DRAW)
	}
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*floatSize, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return l
}

// Delete releases the GPU buffers.
func (l *Lines) Delete() {
	if l.vbo != 0 {
		gl.DeleteBuffers(1, &l.vbo)
		l.vbo = 0
	}
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
		l.vao = 0
	}
	l.count = 0
}
