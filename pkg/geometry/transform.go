package geometry

import "fmt"

// Transform is an affine placement stored as a row-major 3x4 matrix.
// The first three columns are the linear part, the last column the translation.
// The zero value is the identity: an all-zero matrix is never a placement.
type Transform struct {
	M [3][4]float64
}

// Identity returns the transform that leaves points unchanged
func Identity() Transform {
	return Transform{M: [3][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}}
}

// Translation returns a pure translation by d
func Translation(d Vector3) Transform {
	t := Identity()
	t.M[0][3] = d.X
	t.M[1][3] = d.Y
	t.M[2][3] = d.Z
	return t
}

// TransformFromSlice builds a transform from 12 row-major values.
// An empty slice yields the identity.
func TransformFromSlice(values []float64) (Transform, error) {
	if len(values) == 0 {
		return Identity(), nil
	}
	if len(values) != 12 {
		return Transform{}, fmt.Errorf("transform needs 12 values, got %d", len(values))
	}
	var t Transform
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			t.M[row][col] = values[row*4+col]
		}
	}
	return t, nil
}

// IsIdentity reports whether the transform is exactly the identity
func (t Transform) IsIdentity() bool {
	return t == (Transform{}) || t == Identity()
}

// Apply transforms a point (linear part plus translation)
func (t Transform) Apply(p Vector3) Vector3 {
	if t == (Transform{}) {
		return p
	}
	return Vector3{
		X: t.M[0][0]*p.X + t.M[0][1]*p.Y + t.M[0][2]*p.Z + t.M[0][3],
		Y: t.M[1][0]*p.X + t.M[1][1]*p.Y + t.M[1][2]*p.Z + t.M[1][3],
		Z: t.M[2][0]*p.X + t.M[2][1]*p.Y + t.M[2][2]*p.Z + t.M[2][3],
	}
}

// ApplyLinear transforms a direction (linear part only, no translation)
func (t Transform) ApplyLinear(d Vector3) Vector3 {
	if t == (Transform{}) {
		return d
	}
	return Vector3{
		X: t.M[0][0]*d.X + t.M[0][1]*d.Y + t.M[0][2]*d.Z,
		Y: t.M[1][0]*d.X + t.M[1][1]*d.Y + t.M[1][2]*d.Z,
		Z: t.M[2][0]*d.X + t.M[2][1]*d.Y + t.M[2][2]*d.Z,
	}
}
