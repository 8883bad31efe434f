package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/philipparndt/gostep/pkg/analysis"
	"github.com/philipparndt/gostep/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	meshOut      string
	meshSTL      string
	meshASCII    bool
	meshSegments int
)

var meshCmd = &cobra.Command{
	Use:   "mesh [file]",
	Short: "Tessellate a STEP model",
	Long: `Tessellate every face and discretize every edge. Prints mesh statistics
and optionally writes the mesh buffers as JSON or the triangles as STL.`,
	Args: cobra.ExactArgs(1),
	RunE: runMesh,
}

func init() {
	rootCmd.AddCommand(meshCmd)

	addMeshFlags(meshCmd)
	meshCmd.Flags().StringVarP(&meshOut, "out", "o", "", "Write mesh buffers as JSON to this file")
	meshCmd.Flags().StringVar(&meshSTL, "stl", "", "Write triangles as STL to this file")
	meshCmd.Flags().BoolVar(&meshASCII, "ascii", false, "Write ASCII STL instead of binary")
	meshCmd.Flags().IntVarP(&meshSegments, "segments", "n", 0, "Show the n longest edge segments")
}

func runMesh(cmd *cobra.Command, args []string) error {
	engine, info, err := loadModel(args[0])
	if err != nil {
		return err
	}

	mesh, err := engine.Tessellate(meshOptions())
	if err != nil {
		return err
	}

	if meshOut != "" {
		f, err := os.Create(meshOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", meshOut, err)
		}
		if err := writeJSON(f, mesh); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if meshSTL != "" {
		format := stl.Binary
		if meshASCII {
			format = stl.ASCII
		}
		sess, err := engine.Session("mesh")
		if err != nil {
			return err
		}
		model := stl.FromMesh(sess.Document.Stem(), mesh)
		if err := stl.WriteFile(meshSTL, model, format); err != nil {
			return err
		}
	}

	stats := analysis.AnalyzeMesh(mesh)
	unit := info.LengthUnit

	fmt.Println("Mesh Statistics")
	fmt.Println("===============")
	fmt.Printf("  Vertices: %d\n", stats.VertexCount)
	fmt.Printf("  Triangles: %d\n", stats.TriangleCount)
	fmt.Printf("  Meshed faces: %d of %d\n", stats.MeshedFaces, mesh.NumFaces)
	if len(stats.SkippedFaces) > 0 {
		ids := make([]string, len(stats.SkippedFaces))
		for i, id := range stats.SkippedFaces {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Printf("  Skipped faces: %s\n", strings.Join(ids, ", "))
	}
	fmt.Printf("  Tessellated area: %s\n", analysis.FormatMeasurement(stats.TessellatedArea, unit+"²"))
	if !stats.BoundingBox.IsEmpty() {
		fmt.Printf("  Mesh center: %s\n", analysis.FormatVector(stats.BoundingBox.Center()))
		fmt.Printf("  Mesh diagonal: %s\n", analysis.FormatMeasurement(stats.BoundingBox.Diagonal(), unit))
	}
	fmt.Printf("  Edge segments: %d\n", stats.SegmentCount)
	if stats.SegmentCount > 0 {
		fmt.Printf("  Segment length: min %s, max %s, avg %s\n",
			analysis.FormatMeasurement(stats.MinSegmentLength, unit),
			analysis.FormatMeasurement(stats.MaxSegmentLength, unit),
			analysis.FormatMeasurement(stats.AvgSegmentLength, unit))
	}

	if meshSegments > 0 {
		fmt.Printf("\nLongest %d segments:\n", meshSegments)
		for _, seg := range stats.LongestSegments(meshSegments) {
			fmt.Printf("  #%d %s -> %s  %s\n", seg.Index,
				analysis.FormatVector(seg.Start), analysis.FormatVector(seg.End),
				analysis.FormatMeasurement(seg.Length, unit))
		}
	}
	return nil
}
