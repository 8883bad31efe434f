package analysis

import (
	"sort"

	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/geometry"
)

const places = 4

// BoundsSummary is the overall extent of a model with its side lengths
type BoundsSummary struct {
	XMin   float64 `json:"x_min"`
	YMin   float64 `json:"y_min"`
	ZMin   float64 `json:"z_min"`
	XMax   float64 `json:"x_max"`
	YMax   float64 `json:"y_max"`
	ZMax   float64 `json:"z_max"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// ModelSummary gives an overview of a loaded model
type ModelSummary struct {
	NumFaces     int            `json:"num_faces"`
	SurfaceTypes map[string]int `json:"surface_types"`
	// Bounds is nil for a model without faces
	Bounds           *BoundsSummary `json:"bbox"`
	TotalSurfaceArea float64        `json:"total_surface_area"`
}

// Summarize builds a model summary from face metadata
func Summarize(faces []cad.FaceMetadata) ModelSummary {
	summary := ModelSummary{
		NumFaces:     len(faces),
		SurfaceTypes: make(map[string]int),
	}

	bbox := geometry.NewBoundingBox()
	total := 0.0
	for _, face := range faces {
		summary.SurfaceTypes[face.SurfaceType.String()]++
		bbox.Union(geometry.NewBoundingBoxFromArray(face.Bounds))
		total += face.Area
	}
	summary.TotalSurfaceArea = geometry.Round(total, places)

	if !bbox.IsEmpty() {
		size := bbox.Size()
		summary.Bounds = &BoundsSummary{
			XMin:   bbox.Min.X,
			YMin:   bbox.Min.Y,
			ZMin:   bbox.Min.Z,
			XMax:   bbox.Max.X,
			YMax:   bbox.Max.Y,
			ZMax:   bbox.Max.Z,
			Width:  geometry.Round(size.X, places),
			Height: geometry.Round(size.Y, places),
			Depth:  geometry.Round(size.Z, places),
		}
	}

	return summary
}

// SurfaceTypeNames returns the surface types present in the summary, sorted
// by descending count and then by name
func (s ModelSummary) SurfaceTypeNames() []string {
	names := make([]string, 0, len(s.SurfaceTypes))
	for name := range s.SurfaceTypes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := s.SurfaceTypes[names[i]], s.SurfaceTypes[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}
