package analysis

import (
	"math"
	"sort"

	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/geometry"
)

// SegmentInfo is one edge line segment of a mesh
type SegmentInfo struct {
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
	Index  int
}

// MeshStats describes an assembled mesh
type MeshStats struct {
	VertexCount      int                  `json:"vertex_count"`
	TriangleCount    int                  `json:"triangle_count"`
	SegmentCount     int                  `json:"segment_count"`
	TrianglesPerFace map[int]int          `json:"triangles_per_face"`
	MeshedFaces      int                  `json:"meshed_faces"`
	SkippedFaces     []int                `json:"skipped_faces"`
	BoundingBox      geometry.BoundingBox `json:"-"`
	TessellatedArea  float64              `json:"tessellated_area"`
	MinSegmentLength float64              `json:"min_segment_length"`
	MaxSegmentLength float64              `json:"max_segment_length"`
	AvgSegmentLength float64              `json:"avg_segment_length"`
	Segments         []SegmentInfo        `json:"-"`
}

// AnalyzeMesh computes statistics of an assembled mesh
func AnalyzeMesh(mesh *cad.MeshBuffers) *MeshStats {
	stats := &MeshStats{
		VertexCount:      mesh.VertexCount(),
		TriangleCount:    mesh.TriangleCount(),
		SegmentCount:     mesh.SegmentCount(),
		TrianglesPerFace: make(map[int]int),
		SkippedFaces:     make([]int, 0),
		BoundingBox:      geometry.NewBoundingBox(),
		Segments:         make([]SegmentInfo, 0, mesh.SegmentCount()),
	}

	area := 0.0
	for i := 0; i < mesh.TriangleCount(); i++ {
		stats.TrianglesPerFace[mesh.FaceIDs[i]]++

		a, b, c := mesh.Triangle(i)
		area += geometry.NewTriangle(geometry.Vector3{}, a, b, c).Area()
		stats.BoundingBox.Extend(a)
		stats.BoundingBox.Extend(b)
		stats.BoundingBox.Extend(c)
	}
	stats.TessellatedArea = geometry.Round(area, places)

	stats.MeshedFaces = len(stats.TrianglesPerFace)
	for id := 0; id < mesh.NumFaces; id++ {
		if stats.TrianglesPerFace[id] == 0 {
			stats.SkippedFaces = append(stats.SkippedFaces, id)
		}
	}

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	for i := 0; i < mesh.SegmentCount(); i++ {
		e := mesh.Edges[6*i : 6*i+6]
		start := geometry.NewVector3(e[0], e[1], e[2])
		end := geometry.NewVector3(e[3], e[4], e[5])
		length := start.Distance(end)

		stats.Segments = append(stats.Segments, SegmentInfo{Start: start, End: end, Length: length, Index: i})
		totalLength += length
		if length < minLength {
			minLength = length
		}
		if length > maxLength {
			maxLength = length
		}
	}
	if len(stats.Segments) > 0 {
		stats.MinSegmentLength = minLength
		stats.MaxSegmentLength = maxLength
		stats.AvgSegmentLength = totalLength / float64(len(stats.Segments))
	}

	return stats
}

// LongestSegments returns the n longest edge segments
func (s *MeshStats) LongestSegments(n int) []SegmentInfo {
	segments := make([]SegmentInfo, len(s.Segments))
	copy(segments, s.Segments)

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Length > segments[j].Length
	})

	if n > len(segments) {
		n = len(segments)
	}
	return segments[:n]
}

// ShortestSegments returns the n shortest edge segments
func (s *MeshStats) ShortestSegments(n int) []SegmentInfo {
	segments := make([]SegmentInfo, len(s.Segments))
	copy(segments, s.Segments)

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Length < segments[j].Length
	})

	if n > len(segments) {
		n = len(segments)
	}
	return segments[:n]
}
