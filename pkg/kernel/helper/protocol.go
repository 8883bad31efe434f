package helper

import (
	"fmt"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
)

// topologyDoc is printed by `<helper> topology <file>`
type topologyDoc struct {
	Faces []faceDoc `json:"faces"`
	Edges int       `json:"edges"`
}

type faceDoc struct {
	SurfaceType kernel.SurfaceType `json:"surface_type"`
	Orientation string             `json:"orientation"`
	Area        float64            `json:"area"`
	Centroid    [3]float64         `json:"centroid"`
	Bounds      [6]float64         `json:"bounds"`
	PlaneAxis   *[3]float64        `json:"plane_axis"`
	Cylinder    *cylinderDoc       `json:"cylinder"`
	StepID      int                `json:"step_id"`
}

type cylinderDoc struct {
	Radius        float64    `json:"radius"`
	AxisDirection [3]float64 `json:"axis_direction"`
	AxisPoint     [3]float64 `json:"axis_point"`
	UMin          float64    `json:"u_min"`
	UMax          float64    `json:"u_max"`
}

// meshDoc is printed by `<helper> mesh --linear L --angular A <file>`.
// `<helper> edges --angular A --linear L <file>` prints the same document
// with only the edges filled in.
type meshDoc struct {
	Faces []*triangulationDoc `json:"faces"`
	Edges []edgeDoc           `json:"edges"`
}

type triangulationDoc struct {
	Nodes     [][3]float64 `json:"nodes"`
	Normals   [][3]float64 `json:"normals"`
	Triangles [][3]int     `json:"triangles"`
	Location  []float64    `json:"location"`
}

type edgeDoc struct {
	Points [][3]float64 `json:"points"`
	Error  string       `json:"error"`
}

func vec(a [3]float64) geometry.Vector3 {
	return geometry.NewVector3(a[0], a[1], a[2])
}

func vecs(list [][3]float64) []geometry.Vector3 {
	if len(list) == 0 {
		return nil
	}
	out := make([]geometry.Vector3, len(list))
	for i, a := range list {
		out[i] = vec(a)
	}
	return out
}

func (f faceDoc) toFace() *kernel.MemoryFace {
	face := &kernel.MemoryFace{
		Surface:  f.SurfaceType,
		Orient:   kernel.ParseOrientation(f.Orientation),
		AreaVal:  f.Area,
		Center:   vec(f.Centroid),
		Box:      geometry.NewBoundingBoxFromArray(f.Bounds),
		EntityID: f.StepID,
	}
	if f.PlaneAxis != nil {
		face.Axis = vec(*f.PlaneAxis)
	}
	if f.Cylinder != nil {
		face.Cyl = kernel.Cylinder{
			Radius:    f.Cylinder.Radius,
			Direction: vec(f.Cylinder.AxisDirection),
			Location:  vec(f.Cylinder.AxisPoint),
			UMin:      f.Cylinder.UMin,
			UMax:      f.Cylinder.UMax,
		}
	}
	return face
}

func (t *triangulationDoc) toTriangulation() (*kernel.Triangulation, error) {
	location, err := geometry.TransformFromSlice(t.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid face location: %w", err)
	}
	return &kernel.Triangulation{
		Nodes:     vecs(t.Nodes),
		Normals:   vecs(t.Normals),
		Triangles: t.Triangles,
		Location:  location,
	}, nil
}

func (e edgeDoc) polyline() ([]geometry.Vector3, error) {
	if e.Error != "" {
		return nil, fmt.Errorf("edge discretization failed: %s", e.Error)
	}
	return vecs(e.Points), nil
}
