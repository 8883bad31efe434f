package geometry

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.23456789, 4, 1.2346},
		{-1.23456789, 4, -1.2346},
		{2.5, 0, 2}, // exact tie rounds to even
		{3.5, 0, 4},
		{0.30000000000000004, 4, 0.3},
		{179.99999, 1, 180},
	}

	for _, tt := range tests {
		if got := Round(tt.in, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) failed: expected %v, got %v", tt.in, tt.places, tt.want, got)
		}
	}
}

func TestRoundSpecialValues(t *testing.T) {
	if got := Round(math.Inf(1), 4); !math.IsInf(got, 1) {
		t.Errorf("Round(+Inf) failed: got %v", got)
	}
	if got := Round(math.NaN(), 4); !math.IsNaN(got) {
		t.Errorf("Round(NaN) failed: got %v", got)
	}
}

func TestRound3AndRound6(t *testing.T) {
	v := Round3(NewVector3(0.123456, 1.99999, -0.00004), 4)
	if v != [3]float64{0.1235, 2, -0} {
		t.Errorf("Round3 failed: got %v", v)
	}

	b := Round6(NewBoundingBoxFromArray([6]float64{0.11111, 0, 0, 1.99999, 2, 3}), 4)
	if b != [6]float64{0.1111, 0, 0, 2, 2, 3} {
		t.Errorf("Round6 failed: got %v", b)
	}
}
