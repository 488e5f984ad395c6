package shader

import (
	"strings"
	"testing"
)

// The embedded sources must declare every uniform the renderer binds.
func TestEmbeddedSourcesDeclareUniforms(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		uniforms []string
	}{
		{"lit vertex", litVertexSrc, []string{"uModel", "uView", "uProj"}},
		{"lit fragment", litFragmentSrc, []string{"uLightPos", "uViewPos", "uObjectColor", "uLightColor"}},
		{"line vertex", lineVertexSrc, []string{"uModel", "uView", "uProj"}},
		{"line fragment", lineFragmentSrc, []string{"uColor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.src, "#version 410 core") {
				t.Errorf("source does not start with #version 410 core")
			}
			for _, u := range tt.uniforms {
				if !strings.Contains(tt.src, "uniform ") || !strings.Contains(tt.src, u+";") {
					t.Errorf("uniform %s not declared", u)
				}
			}
		})
	}
}

func TestInfoLogEmpty(t *testing.T) {
	if got := infoLog(0, func([]byte) { t.Fatal("read called for empty log") }); got != "(no info log)" {
		t.Errorf("infoLog(0) = %q", got)
	}
}

func TestInfoLogTrimsNull(t *testing.T) {
	msg := "0:1: error\n\x00"
	got := infoLog(int32(len(msg)), func(buf []byte) {
		copy(buf, msg)
	})
	if got != "0:1: error" {
		t.Errorf("infoLog() = %q, want %q", got, "0:1: error")
	}
}
