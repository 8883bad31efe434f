package cad

import (
	"fmt"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
	"go.uber.org/zap"
)

// MeshOptions are the tolerances handed to the kernel mesher unconverted.
// LinearDeflection is in the file's length unit, AngularDeflection in radians.
type MeshOptions struct {
	LinearDeflection  float64 `json:"linear_deflection"`
	AngularDeflection float64 `json:"angular_deflection"`
}

// DefaultMeshOptions returns linear 0.1 and angular 0.5
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{LinearDeflection: 0.1, AngularDeflection: 0.5}
}

// Validate rejects non-positive tolerances
func (o MeshOptions) Validate() error {
	if !(o.LinearDeflection > 0) || !(o.AngularDeflection > 0) {
		return fmt.Errorf("%w: linear=%v angular=%v", ErrInvalidDeflection, o.LinearDeflection, o.AngularDeflection)
	}
	return nil
}

// MeshBuffers is an indexed triangle mesh of all faces plus the model's edges.
// Vertex indices are global across faces; FaceIDs holds one face id per
// triangle; Edges holds independent line segments, 6 floats each.
type MeshBuffers struct {
	Vertices  []float64 `json:"vertices"`
	Normals   []float64 `json:"normals"`
	Triangles []int     `json:"triangles"`
	FaceIDs   []int     `json:"face_ids"`
	NumFaces  int       `json:"num_faces"`
	Edges     []float64 `json:"edges"`
}

func newMeshBuffers(numFaces int) *MeshBuffers {
	return &MeshBuffers{
		Vertices:  make([]float64, 0),
		Normals:   make([]float64, 0),
		Triangles: make([]int, 0),
		FaceIDs:   make([]int, 0),
		NumFaces:  numFaces,
		Edges:     make([]float64, 0),
	}
}

// VertexCount returns the number of vertices
func (m *MeshBuffers) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles
func (m *MeshBuffers) TriangleCount() int {
	return len(m.FaceIDs)
}

// SegmentCount returns the number of edge line segments
func (m *MeshBuffers) SegmentCount() int {
	return len(m.Edges) / 6
}

// Triangle returns the three corner positions of triangle i
func (m *MeshBuffers) Triangle(i int) (a, b, c geometry.Vector3) {
	return m.vertex(m.Triangles[3*i]), m.vertex(m.Triangles[3*i+1]), m.vertex(m.Triangles[3*i+2])
}

func (m *MeshBuffers) vertex(i int) geometry.Vector3 {
	return geometry.NewVector3(m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2])
}

// Validate checks the buffer invariants
func (m *MeshBuffers) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("vertex buffer length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("normal buffer length %d differs from vertex buffer length %d", len(m.Normals), len(m.Vertices))
	}
	if len(m.Triangles) != 3*len(m.FaceIDs) {
		return fmt.Errorf("%d triangle indices for %d face ids", len(m.Triangles), len(m.FaceIDs))
	}
	if len(m.Edges)%6 != 0 {
		return fmt.Errorf("edge buffer length %d is not a multiple of 6", len(m.Edges))
	}
	vertexCount := m.VertexCount()
	for i, idx := range m.Triangles {
		if idx < 0 || idx >= vertexCount {
			return fmt.Errorf("triangle index %d at position %d is outside [0, %d)", idx, i, vertexCount)
		}
	}
	for i, id := range m.FaceIDs {
		if id < 0 || id >= m.NumFaces {
			return fmt.Errorf("triangle %d has face id %d outside [0, %d)", i, id, m.NumFaces)
		}
	}
	return nil
}

// AssembleMesh merges the current triangulation of every face into one
// indexed mesh and discretizes every edge into line segments. Faces without
// a usable triangulation and edges that fail to discretize are skipped.
func AssembleMesh(faces []kernel.Face, edges []kernel.Edge, opts MeshOptions, logger *zap.Logger) *MeshBuffers {
	if logger == nil {
		logger = zap.NewNop()
	}

	mesh := newMeshBuffers(len(faces))
	vertexOffset := 0

	for faceID, face := range faces {
		tri := face.Triangulation()
		if tri == nil {
			logger.Debug("face has no triangulation", zap.Int("face_id", faceID))
			continue
		}
		if err := checkTriangulation(tri); err != nil {
			logger.Warn("skipping face with invalid triangulation", zap.Int("face_id", faceID), zap.Error(err))
			continue
		}

		appendFace(mesh, faceID, tri, face.Orientation() == kernel.Reversed, vertexOffset)
		vertexOffset += len(tri.Nodes)
	}

	for i, edge := range edges {
		points, err := edge.Discretize(opts.AngularDeflection, opts.LinearDeflection)
		if err != nil {
			logger.Debug("skipping edge", zap.Int("edge", i), zap.Error(err))
			continue
		}
		for j := 1; j < len(points); j++ {
			mesh.Edges = points[j-1].AppendTo(mesh.Edges)
			mesh.Edges = points[j].AppendTo(mesh.Edges)
		}
	}

	return mesh
}

// checkTriangulation verifies 1-based indices and the normal count
func checkTriangulation(tri *kernel.Triangulation) error {
	n := len(tri.Nodes)
	if tri.HasNormals() && len(tri.Normals) != n {
		return fmt.Errorf("%d normals for %d nodes", len(tri.Normals), n)
	}
	for i, t := range tri.Triangles {
		for _, idx := range t {
			if idx < 1 || idx > n {
				return fmt.Errorf("triangle %d references node %d of %d", i+1, idx, n)
			}
		}
	}
	return nil
}

// appendFace appends one face's nodes, normals and triangles to the mesh.
// Reversed faces get negated normals and their second and third triangle
// corners swapped so every triangle winds counter-clockwise seen from outside.
func appendFace(mesh *MeshBuffers, faceID int, tri *kernel.Triangulation, reversed bool, vertexOffset int) {
	nodes := make([]geometry.Vector3, len(tri.Nodes))
	for i, node := range tri.Nodes {
		nodes[i] = tri.Location.Apply(node)
		mesh.Vertices = nodes[i].AppendTo(mesh.Vertices)
	}

	var normals []geometry.Vector3
	if tri.HasNormals() {
		normals = placedNormals(tri)
	} else {
		normals = vertexNormals(nodes, tri.Triangles)
	}
	for _, n := range normals {
		if reversed {
			n = n.Negate()
		}
		mesh.Normals = n.AppendTo(mesh.Normals)
	}

	for _, t := range tri.Triangles {
		i0 := t[0] - 1 + vertexOffset
		i1 := t[1] - 1 + vertexOffset
		i2 := t[2] - 1 + vertexOffset
		if reversed {
			i1, i2 = i2, i1
		}
		mesh.Triangles = append(mesh.Triangles, i0, i1, i2)
		mesh.FaceIDs = append(mesh.FaceIDs, faceID)
	}
}

// placedNormals rotates kernel normals into model space
func placedNormals(tri *kernel.Triangulation) []geometry.Vector3 {
	if tri.Location.IsIdentity() {
		return tri.Normals
	}
	normals := make([]geometry.Vector3, len(tri.Normals))
	for i, n := range tri.Normals {
		normals[i] = tri.Location.ApplyLinear(n)
	}
	return normals
}

// vertexNormals averages the unnormalized normals of the triangles around
// each vertex, using the kernel's winding. Vertices touched by no triangle
// or only by degenerate ones get +Z.
func vertexNormals(nodes []geometry.Vector3, triangles [][3]int) []geometry.Vector3 {
	sums := make([]geometry.Vector3, len(nodes))
	for _, t := range triangles {
		face := geometry.NewTriangle(geometry.Vector3{}, nodes[t[0]-1], nodes[t[1]-1], nodes[t[2]-1])
		n := face.EdgeCross()
		for _, idx := range t {
			sums[idx-1] = sums[idx-1].Add(n)
		}
	}

	normals := make([]geometry.Vector3, len(nodes))
	for i, sum := range sums {
		if length := sum.Length(); length > 0 {
			normals[i] = geometry.NewVector3(sum.X/length, sum.Y/length, sum.Z/length)
		} else {
			normals[i] = geometry.NewVector3(0, 0, 1)
		}
	}
	return normals
}
