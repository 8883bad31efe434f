package kernel

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/philipparndt/gostep/pkg/geometry"
)

// MemoryKernel serves shapes built in Go, keyed by file path
type MemoryKernel struct {
	mu     sync.RWMutex
	shapes map[string]func() *MemoryShape
}

// NewMemoryKernel creates an empty in-memory kernel
func NewMemoryKernel() *MemoryKernel {
	return &MemoryKernel{shapes: make(map[string]func() *MemoryShape)}
}

// Register makes shape available under path. Every load returns the same value.
func (k *MemoryKernel) Register(path string, shape *MemoryShape) {
	k.RegisterFunc(path, func() *MemoryShape { return shape })
}

// RegisterFunc makes a fresh shape from build available on every load of
// path, the way a real kernel hands out a new shape per load
func (k *MemoryKernel) RegisterFunc(path string, build func() *MemoryShape) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.shapes[filepath.Clean(path)] = build
}

// Load returns the shape registered for path
func (k *MemoryKernel) Load(path string) (Shape, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	build, ok := k.shapes[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return build(), nil
}

// MemoryShape is a shape whose topology is held in plain Go values
type MemoryShape struct {
	FaceList []*MemoryFace
	EdgeList []*MemoryEdge

	// Mesher fills in face triangulations for a tolerance pair.
	// When nil, Mesh keeps whatever triangulations the faces already carry.
	Mesher func(shape *MemoryShape, linearDeflection, angularDeflection float64) error
}

// Faces returns the faces in list order
func (s *MemoryShape) Faces() []Face {
	faces := make([]Face, len(s.FaceList))
	for i, f := range s.FaceList {
		faces[i] = f
	}
	return faces
}

// Edges returns the edges in list order
func (s *MemoryShape) Edges() []Edge {
	edges := make([]Edge, len(s.EdgeList))
	for i, e := range s.EdgeList {
		edges[i] = e
	}
	return edges
}

// Mesh runs the Mesher, if any
func (s *MemoryShape) Mesh(linearDeflection, angularDeflection float64) error {
	if s.Mesher == nil {
		return nil
	}
	return s.Mesher(s, linearDeflection, angularDeflection)
}

// MemoryFace is a face with precomputed properties
type MemoryFace struct {
	Surface  SurfaceType
	Orient   Orientation
	AreaVal  float64
	Center   geometry.Vector3
	Box      geometry.BoundingBox
	Axis     geometry.Vector3
	Cyl      Cylinder
	Mesh     *Triangulation
	EntityID int
}

func (f *MemoryFace) SurfaceType() SurfaceType { return f.Surface }
func (f *MemoryFace) Orientation() Orientation { return f.Orient }
func (f *MemoryFace) Area() float64 { return f.AreaVal }
func (f *MemoryFace) Centroid() geometry.Vector3 { return f.Center }
func (f *MemoryFace) Bounds() geometry.BoundingBox { return f.Box }
func (f *MemoryFace) PlaneAxis() geometry.Vector3 { return f.Axis }
func (f *MemoryFace) Cylinder() Cylinder { return f.Cyl }
func (f *MemoryFace) Triangulation() *Triangulation { return f.Mesh }
func (f *MemoryFace) StepID() int { return f.EntityID }

// MemoryEdge is an edge with a fixed polyline, a fixed error, or a
// tolerance-dependent Discretizer
type MemoryEdge struct {
	Points      []geometry.Vector3
	Err         error
	Discretizer func(angularDeflection, linearDeflection float64) ([]geometry.Vector3, error)
}

// Discretize returns the edge polyline
func (e *MemoryEdge) Discretize(angularDeflection, linearDeflection float64) ([]geometry.Vector3, error) {
	if e.Discretizer != nil {
		return e.Discretizer(angularDeflection, linearDeflection)
	}
	if e.Err != nil {
		return nil, e.Err
	}
	points := make([]geometry.Vector3, len(e.Points))
	copy(points, e.Points)
	return points, nil
}
