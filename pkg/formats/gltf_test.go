package formats

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/orbitview/pkg/math"
)

// triangleDoc builds a one-node document holding a single indexed triangle.
func triangleDoc(t *testing.T, node *gltf.Node) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.NORMAL: nrm},
		}},
	}}
	node.Mesh = gltf.Index(0)
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func TestGLTFConvertTriangle(t *testing.T) {
	res := NewGLTFLoader(nil).Convert(triangleDoc(t, &gltf.Node{}))

	if res.VertexCount() != 3 {
		t.Fatalf("VertexCount() = %d, want 3", res.VertexCount())
	}
	if res.Stats.Triangles != 1 || res.Stats.Primitives != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	want := []float32{
		0, 0, 0, 0, 0, 1,
		1, 0, 0, 0, 0, 1,
		0, 1, 0, 0, 0, 1,
	}
	for i := range want {
		if res.Vertices[i] != want[i] {
			t.Fatalf("Vertices = %v, want %v", res.Vertices, want)
		}
	}
}

func TestGLTFConvertBakesNodeTransform(t *testing.T) {
	node := &gltf.Node{Translation: [3]float64{10, 0, 0}}
	res := NewGLTFLoader(nil).Convert(triangleDoc(t, node))

	lo, hi, ok := res.Bounds()
	if !ok {
		t.Fatal("Bounds() not ok")
	}
	if lo != (math.Vec3{X: 10}) || hi != (math.Vec3{X: 11, Y: 1}) {
		t.Errorf("Bounds() = %v..%v, want (10,0,0)..(11,1,0)", lo, hi)
	}
}

func TestGLTFConvertNormalsUnderNonUniformScale(t *testing.T) {
	doc := triangleDoc(t, &gltf.Node{Scale: [3]float64{2, 1, 1}})
	h := float32(0.70710677)
	doc.Meshes[0].Primitives[0].Attributes[gltf.NORMAL] = modeler.WriteNormal(doc,
		[][3]float32{{h, h, 0}, {h, h, 0}, {h, h, 0}})

	res := NewGLTFLoader(nil).Convert(doc)
	if res.VertexCount() != 3 {
		t.Fatalf("VertexCount() = %d, want 3", res.VertexCount())
	}

	// Stretching X flattens the surface toward the X axis, so the normal
	// leans toward +Y: (0.5, 1, 0) normalized.
	want := math.Vec3{X: 0.5, Y: 1}.Normalize()
	got := math.Vec3{X: res.Vertices[3], Y: res.Vertices[4], Z: res.Vertices[5]}
	if d := got.Sub(want).Length(); d > 1e-4 {
		t.Errorf("normal = %v, want %v", got, want)
	}
}

func TestGLTFConvertSkipsNonTriangles(t *testing.T) {
	doc := triangleDoc(t, &gltf.Node{})
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	res := NewGLTFLoader(nil).Convert(doc)
	if res.VertexCount() != 0 {
		t.Errorf("VertexCount() = %d, want 0", res.VertexCount())
	}
	if res.Stats.SkippedPrimitives != 1 {
		t.Errorf("SkippedPrimitives = %d, want 1", res.Stats.SkippedPrimitives)
	}
}

func TestGLTFConvertWithoutScene(t *testing.T) {
	doc := triangleDoc(t, &gltf.Node{})
	doc.Scene = nil
	doc.Scenes = nil

	res := NewGLTFLoader(nil).Convert(doc)
	if res.VertexCount() != 3 {
		t.Errorf("root node not visited: VertexCount() = %d", res.VertexCount())
	}
}

func TestLoadGLTFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDoc(t, &gltf.Node{}), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	res, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if res.Name != path {
		t.Errorf("Name = %q, want %q", res.Name, path)
	}
	if res.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", res.VertexCount())
	}
}

func TestLoadGLTFMissing(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("expected error for missing file")
	}
}
