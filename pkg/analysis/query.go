package analysis

import (
	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/kernel"
)

// DefaultQueryLimit is the number of faces returned when no limit is given
const DefaultQueryLimit = 20

// FaceQuery filters face metadata. Zero values disable a filter; MinArea and
// MaxArea are pointers so that zero can be used as a bound.
type FaceQuery struct {
	SurfaceType *kernel.SurfaceType
	MinArea     *float64
	MaxArea     *float64
	Limit       int
}

// QueryResult holds the first Limit matching faces
type QueryResult struct {
	TotalMatching int                `json:"total_matching"`
	Faces         []cad.FaceMetadata `json:"faces"`
	Truncated     bool               `json:"truncated"`
}

// Matches reports whether a face passes every filter of the query
func (q FaceQuery) Matches(face cad.FaceMetadata) bool {
	if q.SurfaceType != nil && face.SurfaceType != *q.SurfaceType {
		return false
	}
	if q.MinArea != nil && face.Area < *q.MinArea {
		return false
	}
	if q.MaxArea != nil && face.Area > *q.MaxArea {
		return false
	}
	return true
}

// QueryFaces returns the faces matching q in face id order
func QueryFaces(faces []cad.FaceMetadata, q FaceQuery) QueryResult {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	result := QueryResult{Faces: make([]cad.FaceMetadata, 0)}
	for _, face := range faces {
		if !q.Matches(face) {
			continue
		}
		result.TotalMatching++
		if len(result.Faces) < limit {
			result.Faces = append(result.Faces, face)
		}
	}
	result.Truncated = result.TotalMatching > limit
	return result
}
