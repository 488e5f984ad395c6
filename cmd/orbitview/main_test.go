package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/orbitview/internal/config"
	"github.com/Faultbox/orbitview/pkg/formats"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriteInfoOBJ(t *testing.T) {
	path := writeFile(t, "quad.obj", `# quad
v 0 0 0
v 2 0 0
v 2 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
f 1 2
`)

	var buf bytes.Buffer
	if err := writeInfo(&buf, path, false); err != nil {
		t.Fatalf("writeInfo: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"File:       quad.obj",
		"Format:     OBJ",
		"Status:     ok",
		"Positions:  4",
		"Triangles:  2",
		"Skipped:    1 lines",
		"Vertices:   6",
		"Bounds Max: (2.000, 1.000, 0.000)",
		"Dimensions: 2.000 x 1.000 x 0.000",
		"Diagnostics (1):",
		"line 8: short-face",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteInfoDiagnosticsTruncated(t *testing.T) {
	var src strings.Builder
	for range maxListedDiagnostics + 5 {
		src.WriteString("v 1 2\n")
	}
	path := writeFile(t, "bad.obj", src.String())

	var buf bytes.Buffer
	if err := writeInfo(&buf, path, false); err != nil {
		t.Fatalf("writeInfo: %v", err)
	}
	if !strings.Contains(buf.String(), "... 5 more") {
		t.Errorf("expected truncated diagnostics:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Status:     empty") {
		t.Errorf("expected empty status:\n%s", buf.String())
	}

	buf.Reset()
	if err := writeInfo(&buf, path, true); err != nil {
		t.Fatalf("writeInfo verbose: %v", err)
	}
	if strings.Contains(buf.String(), "more (use --verbose)") {
		t.Error("verbose output should list every diagnostic")
	}
}

func TestWriteInfoErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := writeInfo(&buf, "model.fbx", false); !errors.Is(err, formats.ErrUnsupportedFormat) {
		t.Errorf("fbx error = %v, want ErrUnsupportedFormat", err)
	}
	if err := writeInfo(&buf, filepath.Join(t.TempDir(), "missing.obj"), false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInfoCommand(t *testing.T) {
	a := writeFile(t, "a.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	b := writeFile(t, "b.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"info", a, b})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.Count(out.String(), "Triangles:  1"); got != 2 {
		t.Errorf("expected two reports, got %d:\n%s", got, out.String())
	}
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbitview.yaml")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--output", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), fmt.Sprintf("wrote %s", path)) {
		t.Errorf("unexpected output %q", out.String())
	}

	cfg, err := config.Load(&config.Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if len(cfg.Scene.Objects) != 3 {
		t.Errorf("written config has %d objects, want 3", len(cfg.Scene.Objects))
	}
}
