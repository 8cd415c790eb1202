package animation

import (
	"math"
	"testing"
)

func TestCubicSymmetricPointsAreIdentity(t *testing.T) {
	// Control points on the diagonal make x(t) and y(t) identical, so
	// solving x and sampling y must return the input.
	c := Cubic{X1: 0, Y1: 0, X2: 1, Y2: 1}
	for _, x := range []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 1} {
		if y := c.Y(x); math.Abs(y-x) > 1e-4 {
			t.Fatalf("expected y(%v)=%v on the diagonal curve, got %v", x, x, y)
		}
	}
}

func TestCubicEndpointsArePinned(t *testing.T) {
	c := Cubic{X1: 0.42, Y1: 0, X2: 0.58, Y2: 1}
	if y := c.Y(0); y != 0 {
		t.Fatalf("expected y(0)=0, got %v", y)
	}
	if y := c.Y(1); y != 1 {
		t.Fatalf("expected y(1)=1, got %v", y)
	}
	if y := c.Y(-2); y != 0 {
		t.Fatalf("expected clocks before the start to clamp to 0, got %v", y)
	}
	if y := c.Y(7); y != 1 {
		t.Fatalf("expected clocks past the end to clamp to 1, got %v", y)
	}
}

func TestCubicEaseInOutClimbs(t *testing.T) {
	c := Cubic{X1: 0.42, Y1: 0, X2: 0.58, Y2: 1}
	quarter, half, threeQuarter := c.Y(0.25), c.Y(0.5), c.Y(0.75)
	if !(quarter < half && half < threeQuarter) {
		t.Fatalf("expected strictly climbing values, got %v %v %v", quarter, half, threeQuarter)
	}
	if math.Abs(half-0.5) > 1e-3 {
		t.Fatalf("expected symmetric curve midpoint near 0.5, got %v", half)
	}
}
