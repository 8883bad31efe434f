package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/philipparndt/gostep/pkg/analysis"
	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/spf13/cobra"
)

var (
	facesFormat  string
	facesID      int
	facesType    string
	facesMinArea float64
	facesMaxArea float64
	facesLimit   int
)

var facesCmd = &cobra.Command{
	Use:   "faces [file]",
	Short: "List the faces of a STEP model",
	Long: `List per-face metadata: surface type, area, centroid, normal and, for
cylinders, radius, axis and arc angle. Filter by surface type and area.`,
	Args: cobra.ExactArgs(1),
	RunE: runFaces,
}

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.Flags().StringVarP(&facesFormat, "format", "f", "table", "Output format (table, json)")
	facesCmd.Flags().IntVar(&facesID, "id", -1, "Show a single face")
	facesCmd.Flags().StringVarP(&facesType, "type", "t", "", "Only faces of this surface type (planar, cylindrical, ...)")
	facesCmd.Flags().Float64Var(&facesMinArea, "min-area", 0, "Only faces with at least this area")
	facesCmd.Flags().Float64Var(&facesMaxArea, "max-area", 0, "Only faces with at most this area")
	facesCmd.Flags().IntVarP(&facesLimit, "limit", "n", analysis.DefaultQueryLimit, "Maximum number of faces to show")
}

func runFaces(cmd *cobra.Command, args []string) error {
	engine, _, err := loadModel(args[0])
	if err != nil {
		return err
	}

	if facesID >= 0 {
		face, err := engine.Face(facesID)
		if err != nil {
			return err
		}
		return renderFaces(os.Stdout, []cad.FaceMetadata{face}, facesFormat)
	}

	faces, err := engine.Faces()
	if err != nil {
		return err
	}

	query := analysis.FaceQuery{Limit: facesLimit}
	if facesType != "" {
		st := kernel.ParseSurfaceType(strings.ToLower(facesType))
		query.SurfaceType = &st
	}
	if cmd.Flags().Changed("min-area") {
		query.MinArea = &facesMinArea
	}
	if cmd.Flags().Changed("max-area") {
		query.MaxArea = &facesMaxArea
	}

	result := analysis.QueryFaces(faces, query)
	if facesFormat == "json" {
		return writeJSON(os.Stdout, result)
	}
	if err := renderFaces(os.Stdout, result.Faces, facesFormat); err != nil {
		return err
	}
	if result.Truncated {
		fmt.Printf("showing %d of %d matching faces\n", len(result.Faces), result.TotalMatching)
	}
	return nil
}

func renderFaces(w io.Writer, faces []cad.FaceMetadata, format string) error {
	switch format {
	case "json":
		if len(faces) == 1 {
			return writeJSON(w, faces[0])
		}
		return writeJSON(w, faces)
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if len(faces) == 0 {
		_, _ = fmt.Fprintln(w, "(0 faces)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Type", "Area", "Centroid", "Normal", "Radius", "Arc", "Name"})
	for _, f := range faces {
		t.AppendRow(table.Row{
			f.ID,
			f.SurfaceType,
			fmt.Sprintf("%.4f", f.Area),
			analysis.FormatTriple(f.Centroid),
			analysis.FormatTriple(f.Normal),
			optional(f.Radius),
			optional(f.ArcAngle),
			optionalName(f.StepName),
		})
	}
	t.Render()
	return nil
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

func optionalName(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
