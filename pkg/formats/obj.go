package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/pkg/math"
)

// FloatsPerVertex is the interleaved layout of a mesh vertex: position xyz, normal xyz.
const FloatsPerVertex = 6

// VerticesPerTriangle is the number of vertices emitted per triangle.
const VerticesPerTriangle = 3

// maxLineSize bounds a single OBJ line. Exporters write very long face lines
// for n-gons, so the bufio default of 64KB is not enough. Longer lines are
// skipped and parsing continues.
const maxLineSize = 1 << 20

// Status describes why a parse produced what it did.
type Status int

const (
	// StatusOK means at least one triangle was emitted.
	StatusOK Status = iota
	// StatusEmpty means the source was readable but held no drawable geometry.
	StatusEmpty
	// StatusUnreadable means the source could not be opened.
	StatusUnreadable
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// DiagnosticKind classifies a per-line issue found while parsing.
type DiagnosticKind int

// Diagnostic kinds.
const (
	DiagMalformedPosition DiagnosticKind = iota // "v" with fewer than 3 numbers
	DiagMalformedNormal                         // "vn" with fewer than 3 numbers
	DiagShortFace                               // "f" with fewer than 3 tokens
	DiagBadFaceToken                            // non-numeric index in a face token
	DiagBadPositionRef                          // zero or out-of-range position index
	DiagBadNormalRef                            // out-of-range normal index (face kept)
	DiagLineTooLong                             // line longer than maxLineSize
	DiagReadError                               // I/O error while scanning
)

// String returns a short name for the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagMalformedPosition:
		return "malformed-position"
	case DiagMalformedNormal:
		return "malformed-normal"
	case DiagShortFace:
		return "short-face"
	case DiagBadFaceToken:
		return "bad-face-token"
	case DiagBadPositionRef:
		return "bad-position-ref"
	case DiagBadNormalRef:
		return "bad-normal-ref"
	case DiagLineTooLong:
		return "line-too-long"
	case DiagReadError:
		return "read-error"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// SkipsLine reports whether a diagnostic of this kind caused its line to be dropped.
func (k DiagnosticKind) SkipsLine() bool {
	switch k {
	case DiagMalformedPosition, DiagMalformedNormal, DiagShortFace, DiagBadFaceToken, DiagBadPositionRef, DiagLineTooLong:
		return true
	default:
		return false
	}
}

// Diagnostic is one issue found while parsing. Line is 1-based; 0 means the
// issue is not tied to a line.
type Diagnostic struct {
	Line    int
	Kind    DiagnosticKind
	Message string
}

// String formats the diagnostic as "line N: kind: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}

// OBJStats summarizes what the parser saw and emitted.
type OBJStats struct {
	Positions    int // "v" entries stored
	Normals      int // "vn" entries stored
	Faces        int // faces emitted
	Triangles    int // triangles emitted
	SkippedLines int // lines dropped by a diagnostic
}

// OBJResult is the triangulated output of an OBJ parse.
type OBJResult struct {
	Name        string
	Status      Status
	Vertices    []float32 // FloatsPerVertex floats per vertex, 3 vertices per triangle
	Diagnostics []Diagnostic
	Stats       OBJStats
	// Err is the open or read failure, nil when the source was read to the end.
	Err         error
}

// VertexCount returns the number of emitted vertices.
func (r *OBJResult) VertexCount() int {
	return len(r.Vertices) / FloatsPerVertex
}

// TriangleCount returns the number of emitted triangles.
func (r *OBJResult) TriangleCount() int {
	return r.VertexCount() / VerticesPerTriangle
}

// Vertex returns the position and normal of vertex i.
func (r *OBJResult) Vertex(i int) (pos, normal math.Vec3) {
	v := r.Vertices[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, math.Vec3{X: v[3], Y: v[4], Z: v[5]}
}

// Bounds returns the axis-aligned bounds of all emitted vertices.
// ok is false when nothing was emitted.
func (r *OBJResult) Bounds() (lo, hi math.Vec3, ok bool) {
	return Bounds(r.Vertices)
}

// OBJLoader parses Wavefront OBJ position/normal geometry into a flat,
// fan-triangulated vertex stream. It is stateless between calls.
type OBJLoader struct {
	log *zap.Logger
}

// NewOBJLoader creates a loader that reports diagnostics to log.
// A nil logger discards them.
func NewOBJLoader(log *zap.Logger) *OBJLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &OBJLoader{log: log}
}

// LoadOBJ loads an OBJ file without logging.
func LoadOBJ(path string) *OBJResult {
	return NewOBJLoader(nil).LoadFile(path)
}

// ParseOBJ parses an already-open OBJ source without logging.
func ParseOBJ(r io.Reader) *OBJResult {
	return NewOBJLoader(nil).Parse(r, "")
}

// LoadFile opens and parses an OBJ file. It never fails: an unopenable file
// yields an empty result with StatusUnreadable.
func (l *OBJLoader) LoadFile(path string) *OBJResult {
	f, err := os.Open(path)
	if err != nil {
		l.log.Warn("failed to open OBJ file", zap.String("path", path), zap.Error(err))
		return &OBJResult{
			Name:   path,
			Status: StatusUnreadable,
			Err:    err,
			Diagnostics: []Diagnostic{{
				Kind:    DiagReadError,
				Message: err.Error(),
			}},
		}
	}
	defer f.Close()

	return l.Parse(f, path)
}

// Parse reads OBJ directives from r. Malformed lines are skipped and recorded
// in the result's Diagnostics.
func (l *OBJLoader) Parse(r io.Reader, name string) *OBJResult {
	p := objParser{result: &OBJResult{Name: name}}

	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	tooLong := false
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			if err != io.EOF {
				p.result.Err = err
				p.diag(DiagReadError, "%v", err)
				l.log.Warn("error reading OBJ", zap.String("name", name), zap.Int("line", p.line), zap.Error(err))
			}
			break
		}

		// Past the cap only the prefix is kept, enough to tell a comment apart.
		if !tooLong && len(line)+len(chunk) > maxLineSize {
			tooLong = true
		}
		if !tooLong {
			line = append(line, chunk...)
		}
		if more {
			continue
		}

		p.line++
		if tooLong {
			p.skipLongLine(line)
		} else {
			p.parseLine(string(line))
		}
		line = line[:0]
		tooLong = false
	}

	res := p.result
	res.Stats.Positions = len(p.positions)
	res.Stats.Normals = len(p.normals)
	res.Stats.Triangles = res.TriangleCount()
	for _, d := range res.Diagnostics {
		if d.Kind.SkipsLine() {
			res.Stats.SkippedLines++
		}
	}
	if len(res.Vertices) == 0 {
		res.Status = StatusEmpty
	}

	if len(res.Diagnostics) > 0 {
		l.log.Debug("OBJ parsed with diagnostics",
			zap.String("name", name),
			zap.Int("diagnostics", len(res.Diagnostics)),
			zap.Int("skipped_lines", res.Stats.SkippedLines),
		)
	}
	return res
}

// objParser holds the transient geometry store for one parse.
type objParser struct {
	positions []math.Vec3
	normals   []math.Vec3
	result    *OBJResult
	line      int
}

// faceRef is a resolved face-vertex token. normal < 0 means no normal.
type faceRef struct {
	position int
	normal   int
}

func (p *objParser) diag(kind DiagnosticKind, format string, args ...any) {
	p.result.Diagnostics = append(p.result.Diagnostics, Diagnostic{
		Line:    p.line,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *objParser) parseLine(line string) {
	// Everything after '#' is a comment, whole-line or trailing.
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "v":
		v, ok := parseVec3(fields[1:])
		if !ok {
			p.diag(DiagMalformedPosition, "need x y z, got %q", strings.Join(fields[1:], " "))
			return
		}
		p.positions = append(p.positions, v)

	case "vn":
		v, ok := parseVec3(fields[1:])
		if !ok {
			p.diag(DiagMalformedNormal, "need x y z, got %q", strings.Join(fields[1:], " "))
			return
		}
		p.normals = append(p.normals, v)

	case "f":
		p.parseFace(fields[1:])
	}
}

// skipLongLine drops a line over maxLineSize. prefix is its leading part.
func (p *objParser) skipLongLine(prefix []byte) {
	if fields := strings.Fields(string(prefix)); len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return
	}
	p.diag(DiagLineTooLong, "line exceeds %d bytes", maxLineSize)
}

func (p *objParser) parseFace(tokens []string) {
	if len(tokens) < 3 {
		p.diag(DiagShortFace, "need at least 3 vertices, got %d", len(tokens))
		return
	}

	// Resolve every token before emitting so a bad one drops the whole face.
	refs := make([]faceRef, len(tokens))
	for i, tok := range tokens {
		ref, ok := p.resolveToken(tok)
		if !ok {
			return
		}
		refs[i] = ref
	}

	for i := 1; i+1 < len(refs); i++ {
		p.emit(refs[0])
		p.emit(refs[i])
		p.emit(refs[i+1])
	}
	p.result.Stats.Faces++
}

// resolveToken parses "v", "v/vt", "v//vn" or "v/vt/vn". The vt slot is ignored.
func (p *objParser) resolveToken(tok string) (faceRef, bool) {
	parts := strings.Split(tok, "/")

	raw, err := strconv.Atoi(parts[0])
	if err != nil {
		p.diag(DiagBadFaceToken, "invalid vertex index in %q", tok)
		return faceRef{}, false
	}
	pos, ok := resolveIndex(raw, len(p.positions))
	if !ok {
		p.diag(DiagBadPositionRef, "position index %d out of range (%d defined)", raw, len(p.positions))
		return faceRef{}, false
	}

	ref := faceRef{position: pos, normal: -1}
	if len(parts) > 2 && parts[2] != "" {
		raw, err := strconv.Atoi(parts[2])
		if err != nil {
			p.diag(DiagBadFaceToken, "invalid normal index in %q", tok)
			return faceRef{}, false
		}
		// Zero is treated like an absent normal.
		if raw != 0 {
			if n, ok := resolveIndex(raw, len(p.normals)); ok {
				ref.normal = n
			} else {
				p.diag(DiagBadNormalRef, "normal index %d out of range (%d defined)", raw, len(p.normals))
			}
		}
	}
	return ref, true
}

func (p *objParser) emit(ref faceRef) {
	pos := p.positions[ref.position]
	var n math.Vec3
	if ref.normal >= 0 {
		n = p.normals[ref.normal]
	}
	p.result.Vertices = append(p.result.Vertices, pos.X, pos.Y, pos.Z, n.X, n.Y, n.Z)
}

// resolveIndex converts a 1-based (or negative, end-relative) OBJ index into
// a 0-based index into a store of size count.
func resolveIndex(raw, count int) (int, bool) {
	var idx int
	switch {
	case raw > 0:
		idx = raw - 1
	case raw < 0:
		idx = count + raw
	default:
		return 0, false
	}
	if idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}

// parseVec3 parses the first three fields as floats. Extra fields (such as
// the optional w or vertex colors) are ignored.
func parseVec3(fields []string) (math.Vec3, bool) {
	if len(fields) < 3 {
		return math.Vec3{}, false
	}
	var c [3]float32
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, false
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, true
}

// Bounds computes the axis-aligned bounds of an interleaved position/normal
// stream. ok is false for an empty stream.
func Bounds(vertices []float32) (lo, hi math.Vec3, ok bool) {
	for i := 0; i+FloatsPerVertex <= len(vertices); i += FloatsPerVertex {
		p := math.Vec3{X: vertices[i], Y: vertices[i+1], Z: vertices[i+2]}
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, ok
}
