package geometry

import "strconv"

// Round rounds x to the given number of decimal places.
//
// The result is the float nearest to the correctly rounded decimal
// representation of x (ties to even on exact binary ties), which is what
// clients comparing printed metadata expect. Scaling by 10^places and calling
// math.Round does not give that guarantee.
func Round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Round3 rounds every component of a vector
func Round3(v Vector3, places int) [3]float64 {
	return [3]float64{Round(v.X, places), Round(v.Y, places), Round(v.Z, places)}
}

// Round6 rounds every component of a bounding box in [min xyz, max xyz] order
func Round6(b BoundingBox, places int) [6]float64 {
	a := b.Array()
	for i := range a {
		a[i] = Round(a[i], places)
	}
	return a
}
