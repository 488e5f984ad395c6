package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orbitview/pkg/formats"
	"github.com/Faultbox/orbitview/pkg/math"
)

// maxListedDiagnostics caps the per-line issues printed without --verbose.
const maxListedDiagnostics = 10

func newInfoCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "info <model.obj|model.gltf|model.glb> ...",
		Short: "Display model information",
		Long:  "Display vertex and triangle counts, bounds, and any parse diagnostics for each model file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := writeInfo(out, path, verbose); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every diagnostic")
	return cmd
}

// writeInfo prints a summary of one model file.
func writeInfo(w io.Writer, path string, verbose bool) error {
	format, err := formats.DetectFormat(path)
	if err != nil {
		return err
	}
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(format.String()))
	fmt.Fprintf(w, "Size:       %.2f KB\n", float64(st.Size())/1024)
	fmt.Fprintln(w)

	var vertices []float32
	switch format {
	case formats.FormatOBJ:
		res := formats.LoadOBJ(path)
		if res.Status == formats.StatusUnreadable {
			return fmt.Errorf("load model: %w", res.Err)
		}
		vertices = res.Vertices
		fmt.Fprintf(w, "Status:     %s\n", res.Status)
		fmt.Fprintf(w, "Positions:  %d\n", res.Stats.Positions)
		fmt.Fprintf(w, "Normals:    %d\n", res.Stats.Normals)
		fmt.Fprintf(w, "Faces:      %d\n", res.Stats.Faces)
		fmt.Fprintf(w, "Triangles:  %d\n", res.Stats.Triangles)
		fmt.Fprintf(w, "Skipped:    %d lines\n", res.Stats.SkippedLines)
		writeDiagnostics(w, res.Diagnostics, verbose)

	case formats.FormatGLTF:
		res, err := formats.LoadGLTF(path)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		vertices = res.Vertices
		fmt.Fprintf(w, "Nodes:      %d\n", res.Stats.Nodes)
		fmt.Fprintf(w, "Primitives: %d (%d skipped)\n", res.Stats.Primitives, res.Stats.SkippedPrimitives)
		fmt.Fprintf(w, "Triangles:  %d\n", res.Stats.Triangles)
	}

	fmt.Fprintf(w, "Vertices:   %d\n", len(vertices)/formats.FloatsPerVertex)

	lo, hi, ok := formats.Bounds(vertices)
	if !ok {
		return nil
	}
	size := hi.Sub(lo)
	center := lo.Add(hi).Scale(0.5)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: %s\n", fmtVec(lo))
	fmt.Fprintf(w, "Bounds Max: %s\n", fmtVec(hi))
	fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     %s\n", fmtVec(center))
	return nil
}

func writeDiagnostics(w io.Writer, diags []formats.Diagnostic, verbose bool) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Diagnostics (%d):\n", len(diags))
	for i, d := range diags {
		if !verbose && i == maxListedDiagnostics {
			fmt.Fprintf(w, "  ... %d more (use --verbose)\n", len(diags)-i)
			return
		}
		fmt.Fprintf(w, "  %s\n", d)
	}
}

func fmtVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
