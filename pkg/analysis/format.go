package analysis

import (
	"fmt"

	"github.com/philipparndt/gostep/pkg/geometry"
)

// FormatMeasurement formats a length with its unit
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.4f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

// FormatTriple formats a rounded metadata triple
func FormatTriple(a [3]float64) string {
	return FormatVector(geometry.NewVector3(a[0], a[1], a[2]))
}
