package kernel

import (
	"encoding/json"
	"fmt"
)

// SurfaceType classifies the underlying surface of a face
type SurfaceType int

const (
	Other SurfaceType = iota
	Planar
	Cylindrical
	Conical
	Spherical
	Toroidal
	BSpline
	Bezier
	Revolution
	Extrusion
	Offset
)

var surfaceTypeNames = map[SurfaceType]string{
	Other:       "other",
	Planar:      "planar",
	Cylindrical: "cylindrical",
	Conical:     "conical",
	Spherical:   "spherical",
	Toroidal:    "toroidal",
	BSpline:     "bspline",
	Bezier:      "bezier",
	Revolution:  "revolution",
	Extrusion:   "extrusion",
	Offset:      "offset",
}

// SurfaceTypes lists every known surface type in declaration order
func SurfaceTypes() []SurfaceType {
	return []SurfaceType{Planar, Cylindrical, Conical, Spherical, Toroidal, BSpline, Bezier, Revolution, Extrusion, Offset, Other}
}

// String returns the wire name of the surface type
func (s SurfaceType) String() string {
	if name, ok := surfaceTypeNames[s]; ok {
		return name
	}
	return "other"
}

// ParseSurfaceType converts a wire name back to a SurfaceType.
// Unknown names map to Other.
func ParseSurfaceType(name string) SurfaceType {
	for t, n := range surfaceTypeNames {
		if n == name {
			return t
		}
	}
	return Other
}

// MarshalJSON encodes the surface type as its wire name
func (s SurfaceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a wire name
func (s *SurfaceType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("surface type must be a string: %w", err)
	}
	*s = ParseSurfaceType(name)
	return nil
}
