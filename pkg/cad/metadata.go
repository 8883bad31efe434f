package cad

import (
	"math"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/philipparndt/gostep/pkg/step"
)

const (
	// lengthPlaces is the rounding applied to every length, area and direction
	lengthPlaces = 4
	// anglePlaces is the rounding applied to angles in degrees
	anglePlaces = 1

	radToDeg = 180 / math.Pi
)

// FaceMetadata describes one face. Values are rounded at extraction time and
// clients compare the rounded values. Cylinder fields are nil for every other
// surface type and StepName is nil when the STEP entity carries no name.
type FaceMetadata struct {
	ID            int                `json:"id"`
	SurfaceType   kernel.SurfaceType `json:"surface_type"`
	Area          float64            `json:"area"`
	Centroid      [3]float64         `json:"centroid"`
	Normal        [3]float64         `json:"normal"`
	Bounds        [6]float64         `json:"bounds"`
	Radius        *float64           `json:"radius"`
	AxisDirection *[3]float64        `json:"axis_direction"`
	AxisPoint     *[3]float64        `json:"axis_point"`
	ArcAngle      *float64           `json:"arc_angle"`
	StepName      *string            `json:"step_name"`
}

// ExtractMetadata builds the metadata record of one face.
// entity is the STEP entity joined to the face, or nil.
func ExtractMetadata(face kernel.Face, id int, entity *step.EntityRecord) FaceMetadata {
	meta := FaceMetadata{
		ID:          id,
		SurfaceType: face.SurfaceType(),
		Area:        geometry.Round(math.Abs(face.Area()), lengthPlaces),
		Centroid:    geometry.Round3(face.Centroid(), lengthPlaces),
		Bounds:      geometry.Round6(face.Bounds(), lengthPlaces),
	}

	switch meta.SurfaceType {
	case kernel.Planar:
		axis := face.PlaneAxis()
		if face.Orientation() == kernel.Reversed {
			axis = axis.Negate()
		}
		meta.Normal = geometry.Round3(axis, lengthPlaces)

	case kernel.Cylindrical:
		cyl := face.Cylinder()
		radius := geometry.Round(cyl.Radius, lengthPlaces)
		direction := geometry.Round3(cyl.Direction, lengthPlaces)
		point := geometry.Round3(cyl.Location, lengthPlaces)
		arc := geometry.Round((cyl.UMax-cyl.UMin)*radToDeg, anglePlaces)

		meta.Radius = &radius
		meta.AxisDirection = &direction
		meta.AxisPoint = &point
		meta.ArcAngle = &arc
	}

	if entity != nil && entity.HasName() {
		name := entity.Name
		meta.StepName = &name
	}

	return meta
}
