package formats

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/pkg/math"
)

// GLTFStats summarizes a glTF conversion.
type GLTFStats struct {
	Nodes             int // nodes visited with a mesh
	Primitives        int // triangle primitives converted
	SkippedPrimitives int // non-triangle or unreadable primitives
	Triangles         int
}

// GLTFResult is a glTF scene flattened into the same interleaved
// position/normal stream the OBJ loader produces.
type GLTFResult struct {
	Name     string
	Vertices []float32
	Stats    GLTFStats
}

// VertexCount returns the number of emitted vertices.
func (r *GLTFResult) VertexCount() int {
	return len(r.Vertices) / FloatsPerVertex
}

// Bounds returns the axis-aligned bounds of all emitted vertices.
func (r *GLTFResult) Bounds() (lo, hi math.Vec3, ok bool) {
	return Bounds(r.Vertices)
}

// GLTFLoader converts .gltf and .glb files. Node transforms are baked into
// the vertex stream.
type GLTFLoader struct {
	log *zap.Logger
}

// NewGLTFLoader creates a loader that reports skipped primitives to log.
// A nil logger discards them.
func NewGLTFLoader(log *zap.Logger) *GLTFLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &GLTFLoader{log: log}
}

// LoadGLTF loads a glTF file without logging.
func LoadGLTF(path string) (*GLTFResult, error) {
	return NewGLTFLoader(nil).LoadFile(path)
}

// LoadFile opens and converts a glTF or GLB file.
func (l *GLTFLoader) LoadFile(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	res := l.Convert(doc)
	res.Name = path
	return res, nil
}

// Convert flattens the default scene of doc, or every root node when the
// document names no scene.
func (l *GLTFLoader) Convert(doc *gltf.Document) *GLTFResult {
	res := &GLTFResult{}
	for _, root := range rootNodes(doc) {
		l.walk(doc, root, math.Identity(), res, 0)
	}
	res.Stats.Triangles = res.VertexCount() / VerticesPerTriangle
	return res
}

// maxNodeDepth guards against cyclic node graphs in malformed files.
const maxNodeDepth = 64

func (l *GLTFLoader) walk(doc *gltf.Document, idx int, parent math.Mat4, res *GLTFResult, depth int) {
	if idx < 0 || idx >= len(doc.Nodes) || depth > maxNodeDepth {
		return
	}
	node := doc.Nodes[idx]
	world := parent.Mul(localTransform(node))

	if node.Mesh != nil && *node.Mesh < len(doc.Meshes) {
		res.Stats.Nodes++
		mesh := doc.Meshes[*node.Mesh]
		for i, prim := range mesh.Primitives {
			if err := appendPrimitive(doc, prim, world, res); err != nil {
				res.Stats.SkippedPrimitives++
				l.log.Debug("skipping glTF primitive",
					zap.String("mesh", mesh.Name),
					zap.Int("primitive", i),
					zap.Error(err),
				)
				continue
			}
			res.Stats.Primitives++
		}
	}

	for _, child := range node.Children {
		l.walk(doc, child, world, res, depth+1)
	}
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func localTransform(n *gltf.Node) math.Mat4 {
	if m := n.MatrixOrDefault(); m != identityMatrix {
		return math.FromFloat64(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.Translate(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}).
		Mul(math.FromQuat(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3]))).
		Mul(math.Scale(math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}))
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, world math.Mat4, res *GLTFResult) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || posIdx >= len(doc.Accessors) {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok && idx < len(doc.Accessors) {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices >= len(doc.Accessors) {
			return fmt.Errorf("indices accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions)-len(positions)%VerticesPerTriangle)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	for _, ix := range indices {
		if int(ix) >= len(positions) {
			return fmt.Errorf("index %d out of range (%d positions)", ix, len(positions))
		}
	}

	// A trailing partial triangle is dropped.
	normalMat := world.NormalMatrix()
	n := len(indices) - len(indices)%VerticesPerTriangle
	out := make([]float32, 0, n*FloatsPerVertex)
	for _, ix := range indices[:n] {
		p := positions[ix]
		wp := world.TransformPoint(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		var wn math.Vec3
		if int(ix) < len(normals) {
			nv := normals[ix]
			wn = normalMat.TransformVector(math.Vec3{X: nv[0], Y: nv[1], Z: nv[2]}).Normalize()
		}
		out = append(out, wp.X, wp.Y, wp.Z, wn.X, wn.Y, wn.Z)
	}
	res.Vertices = append(res.Vertices, out...)
	return nil
}
