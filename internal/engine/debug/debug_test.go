package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/orbitview/pkg/math"
)

func TestFlipRGBA(t *testing.T) {
	// 1x2 image: bottom row red, top row blue (GL order).
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRGBA(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FlipRGBA: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); b == 0 || r != 0 {
		t.Errorf("top pixel should be blue, got %v", img.At(0, 0))
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r == 0 || b != 0 {
		t.Errorf("bottom pixel should be red, got %v", img.At(0, 1))
	}
}

func TestFlipRGBAErrors(t *testing.T) {
	tests := []struct {
		name          string
		pixels        []byte
		width, height int
	}{
		{"size mismatch", make([]byte, 7), 1, 2},
		{"zero width", nil, 0, 1},
		{"negative height", nil, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FlipRGBA(tt.pixels, tt.width, tt.height); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestScreenshotterSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshotter(dir, "orbitview")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	pixels := make([]byte, 2*2*4)
	first, err := s.Save(pixels, 2, 2)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "orbitview_2026-01-02_03-04-05.png"); first != want {
		t.Errorf("path = %s, want %s", first, want)
	}

	second, err := s.Save(pixels, 2, 2)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if second == first {
		t.Error("second capture in the same second overwrote the first")
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Errorf("decoded size %dx%d, want 2x2", cfg.Width, cfg.Height)
	}
}

func TestBoundsLines(t *testing.T) {
	lo := math.Vec3{X: -1, Y: -2, Z: -3}
	hi := math.Vec3{X: 1, Y: 2, Z: 3}

	out := BoundsLines(lo, hi, 0)
	if len(out) != 24*3 {
		t.Fatalf("len = %d, want %d", len(out), 24*3)
	}

	// Every edge is axis-aligned with its length equal to one box extent.
	for i := 0; i < len(out); i += 6 {
		a := math.Vec3{X: out[i], Y: out[i+1], Z: out[i+2]}
		b := math.Vec3{X: out[i+3], Y: out[i+4], Z: out[i+5]}
		d := b.Sub(a)
		changed := 0
		for _, c := range [3]float32{d.X, d.Y, d.Z} {
			if c != 0 {
				changed++
			}
		}
		if changed != 1 {
			t.Errorf("edge %v-%v is not axis-aligned", a, b)
		}
	}
}

func TestBoundsLinesPadding(t *testing.T) {
	out := BoundsLines(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, 0.5)
	var minX, maxX float32 = 10, -10
	for i := 0; i < len(out); i += 3 {
		minX = min(minX, out[i])
		maxX = max(maxX, out[i])
	}
	if minX != -0.5 || maxX != 1.5 {
		t.Errorf("padded X range = [%v, %v], want [-0.5, 1.5]", minX, maxX)
	}
}
