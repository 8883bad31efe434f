package geometry

// Triangle represents a triangular facet in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{
		Normal: normal,
		V1:     v1,
		V2:     v2,
		V3:     v3,
	}
}

// EdgeCross returns (V2-V1) x (V3-V1), the unnormalized face normal.
// Its length is twice the triangle area and its direction follows the winding.
func (t Triangle) EdgeCross() Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1))
}

// CalculateNormal computes the unit normal vector for the triangle
func (t Triangle) CalculateNormal() Vector3 {
	return t.EdgeCross().Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return t.EdgeCross().Length() / 2.0
}
