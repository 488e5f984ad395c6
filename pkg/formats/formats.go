// Package formats provides mesh file parsers that produce interleaved
// position/normal triangle streams ready for upload.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	// ErrNoGeometry is returned when a file was read but yielded no triangles.
	ErrNoGeometry = errors.New("no drawable geometry")
)

// Format identifies a mesh file format.
type Format int

const (
	FormatOBJ Format = iota + 1
	FormatGLTF
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatGLTF:
		return "gltf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat picks a format from the file extension, case-insensitively.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ, nil
	case ".gltf", ".glb":
		return FormatGLTF, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Loader dispatches to the OBJ or glTF loader by extension.
type Loader struct {
	obj  *OBJLoader
	gltf *GLTFLoader
}

// NewLoader creates a dispatching loader. A nil logger discards diagnostics.
func NewLoader(log *zap.Logger) *Loader {
	return &Loader{
		obj:  NewOBJLoader(log),
		gltf: NewGLTFLoader(log),
	}
}

// Load reads path into an interleaved vertex stream. When the file is
// readable but empty the (empty) stream is returned along with an error
// wrapping ErrNoGeometry.
func (l *Loader) Load(path string) ([]float32, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var vertices []float32
	switch format {
	case FormatOBJ:
		res := l.obj.LoadFile(path)
		if res.Status == StatusUnreadable {
			return nil, res.Err
		}
		vertices = res.Vertices
	case FormatGLTF:
		res, err := l.gltf.LoadFile(path)
		if err != nil {
			return nil, err
		}
		vertices = res.Vertices
	}

	if len(vertices) == 0 {
		return vertices, fmt.Errorf("%s: %w", path, ErrNoGeometry)
	}
	return vertices, nil
}
