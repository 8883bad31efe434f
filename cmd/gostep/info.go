package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/philipparndt/gostep/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a STEP model",
	Long:  "Show the length unit, face and entity counts, surface type breakdown, bounding box and total area.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	engine, info, err := loadModel(args[0])
	if err != nil {
		return err
	}
	faces, err := engine.Faces()
	if err != nil {
		return err
	}
	summary := analysis.Summarize(faces)

	if infoJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"info": info, "summary": summary})
	}

	fmt.Println("STEP File Information")
	fmt.Println("=====================")
	fmt.Printf("File: %s\n", info.Path)
	fmt.Printf("Session: %s\n\n", info.SessionID)

	fmt.Println("Model Statistics:")
	fmt.Printf("  Length unit: %s (%g m)\n", info.LengthUnit, info.LengthScale)
	fmt.Printf("  Faces: %d\n", info.NumFaces)
	fmt.Printf("  ADVANCED_FACE entities: %d\n", info.NumStepEntities)
	fmt.Printf("  Surface area: %s\n\n", analysis.FormatMeasurement(summary.TotalSurfaceArea, info.LengthUnit+"²"))

	fmt.Println("Surface Types:")
	for _, name := range summary.SurfaceTypeNames() {
		fmt.Printf("  %-12s %d\n", name, summary.SurfaceTypes[name])
	}

	if b := summary.Bounds; b != nil {
		fmt.Println("\nBounding Box:")
		fmt.Printf("  Min: %s\n", analysis.FormatTriple([3]float64{b.XMin, b.YMin, b.ZMin}))
		fmt.Printf("  Max: %s\n", analysis.FormatTriple([3]float64{b.XMax, b.YMax, b.ZMax}))
		fmt.Printf("  Width (X): %s\n", analysis.FormatMeasurement(b.Width, info.LengthUnit))
		fmt.Printf("  Height (Y): %s\n", analysis.FormatMeasurement(b.Height, info.LengthUnit))
		fmt.Printf("  Depth (Z): %s\n", analysis.FormatMeasurement(b.Depth, info.LengthUnit))
	}
	return nil
}
