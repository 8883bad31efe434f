// Package kernel describes what the CAD engine needs from a B-rep geometry
// kernel. Shapes, faces, edges and triangulations are handles owned by the
// kernel; callers borrow them for one metadata or tessellation pass and never
// keep them past the session they were loaded in.
package kernel

import (
	"errors"

	"github.com/philipparndt/gostep/pkg/geometry"
)

// ErrNotFound is returned by kernels that cannot find the requested file
var ErrNotFound = errors.New("shape not found")

// Kernel loads B-rep shapes from STEP files
type Kernel interface {
	Load(path string) (Shape, error)
}

// Shape is a loaded B-rep shape
type Shape interface {
	// Faces enumerates faces in a deterministic order for this load
	Faces() []Face
	// Edges enumerates edges in a deterministic order for this load
	Edges() []Edge
	// Mesh triangulates every face within the given tolerances.
	// Faces that fail to mesh report a nil Triangulation afterwards.
	Mesh(linearDeflection, angularDeflection float64) error
}

// Face is a single bounded surface of a shape
type Face interface {
	SurfaceType() SurfaceType
	Orientation() Orientation
	Area() float64
	Centroid() geometry.Vector3
	Bounds() geometry.BoundingBox
	// PlaneAxis is the plane's axis direction; only meaningful for planar faces
	PlaneAxis() geometry.Vector3
	// Cylinder describes the underlying cylinder; only meaningful for cylindrical faces
	Cylinder() Cylinder
	// Triangulation returns the last mesh result or nil
	Triangulation() *Triangulation
	// StepID is the STEP entity id the face was read from, 0 when unknown
	StepID() int
}

// Edge is a single bounded curve of a shape
type Edge interface {
	Discretize(angularDeflection, linearDeflection float64) ([]geometry.Vector3, error)
}

// Orientation is the topological orientation of a face
type Orientation int

const (
	Forward Orientation = iota
	Reversed
)

// String returns the orientation name
func (o Orientation) String() string {
	if o == Reversed {
		return "reversed"
	}
	return "forward"
}

// ParseOrientation converts "forward"/"reversed" to an Orientation
func ParseOrientation(s string) Orientation {
	if s == "reversed" {
		return Reversed
	}
	return Forward
}

// Cylinder holds the parameters of a cylindrical surface.
// UMin and UMax bound the face in the angular parameter, in radians.
type Cylinder struct {
	Radius    float64
	Direction geometry.Vector3
	Location  geometry.Vector3
	UMin      float64
	UMax      float64
}

// Triangulation is the mesh of one face in the kernel's native convention:
// triangle indices are 1-based into Nodes, Normals is either empty or one
// normal per node, and Location places the local nodes in model space (zero
// value: identity).
type Triangulation struct {
	Nodes     []geometry.Vector3
	Normals   []geometry.Vector3
	Triangles [][3]int
	Location  geometry.Transform
}

// HasNormals reports whether the kernel supplied per-node normals
func (t *Triangulation) HasNormals() bool {
	return len(t.Normals) > 0
}
