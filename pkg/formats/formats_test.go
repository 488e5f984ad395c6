package formats

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"models/Planet.obj", FormatOBJ, false},
		{"MODEL.OBJ", FormatOBJ, false},
		{"scene.gltf", FormatGLTF, false},
		{"scene.glb", FormatGLTF, false},
		{"mesh.fbx", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("DetectFormat(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tri := write("tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	empty := write("empty.obj", "# nothing\n")
	unsupported := write("mesh.stl", "solid x\n")

	l := NewLoader(nil)

	verts, err := l.Load(tri)
	if err != nil {
		t.Fatalf("Load(tri) error: %v", err)
	}
	if len(verts) != 18 {
		t.Errorf("Load(tri) = %d floats, want 18", len(verts))
	}

	verts, err = l.Load(empty)
	if !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Load(empty) error = %v, want ErrNoGeometry", err)
	}
	if len(verts) != 0 {
		t.Errorf("Load(empty) = %d floats, want 0", len(verts))
	}

	if _, err := l.Load(unsupported); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(stl) error = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := l.Load(filepath.Join(dir, "missing.obj")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want fs.ErrNotExist", err)
	}
}
