package animation

// Cubic is a cubic bezier through (0,0), (X1,Y1), (X2,Y2), (1,1) with the
// same semantics as CSS cubic-bezier(): x is the normalized animation clock,
// solved for the curve parameter, which then yields y.
type Cubic struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (Cubic) isCurve() {}

// Y evaluates the curve at clock position x in [0, 1].
func (c Cubic) Y(x float64) float64 {
	if x <= 0 {
		return c.sampleY(0)
	}
	if x >= 1 {
		return c.sampleY(1)
	}
	return c.sampleY(c.solveX(x))
}

// Polynomial coefficients expand the bezier with implicit first and last
// control points at 0 and 1.
func (c Cubic) coefficientsX() (ax, bx, cx float64) {
	cx = 3 * c.X1
	bx = 3*(c.X2-c.X1) - cx
	ax = 1 - cx - bx
	return ax, bx, cx
}

func (c Cubic) sampleX(t float64) float64 {
	ax, bx, cx := c.coefficientsX()
	return ((ax*t+bx)*t + cx) * t
}

func (c Cubic) sampleXDerivative(t float64) float64 {
	ax, bx, cx := c.coefficientsX()
	return (3*ax*t+2*bx)*t + cx
}

func (c Cubic) sampleY(t float64) float64 {
	cy := 3 * c.Y1
	by := 3*(c.Y2-c.Y1) - cy
	ay := 1 - cy - by
	return ((ay*t+by)*t + cy) * t
}

// solveX finds t with sampleX(t) == x. Newton iteration converges for well
// formed control points; a bisection pass covers flat derivatives.
func (c Cubic) solveX(x float64) float64 {
	const epsilon = 1e-7

	t := x
	for i := 0; i < 8; i++ {
		diff := c.sampleX(t) - x
		if diff < epsilon && diff > -epsilon {
			return t
		}
		d := c.sampleXDerivative(t)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		t -= diff / d
	}

	lo, hi := 0.0, 1.0
	t = x
	for lo < hi {
		sample := c.sampleX(t)
		diff := sample - x
		if diff < epsilon && diff > -epsilon {
			return t
		}
		if diff < 0 {
			lo = t
		} else {
			hi = t
		}
		next := (lo + hi) / 2
		if next == t {
			break
		}
		t = next
	}
	return t
}
