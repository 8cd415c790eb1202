package animation

import (
	"math"
	"time"
)

// Spring is a damped harmonic oscillator normalized to travel from 0 to 1.
// The model and the settling-time estimation follow libadwaita's spring
// animations. Overshoot and ringing past 1 are part of the solution for
// underdamped parameter sets.
type Spring struct {
	Damping         float64
	Mass            float64
	Stiffness       float64
	Epsilon         float64
	InitialVelocity float64
}

func (Spring) isCurve() {}

// Oscillate evaluates the oscillator at t seconds after release.
func (s Spring) Oscillate(t float64) float64 {
	beta := s.Damping / (2 * s.Mass)
	omega0 := math.Sqrt(s.Stiffness / s.Mass)

	// Solutions of m*x'' + b*x' + k*x = 0 for x0 = from - to, shifted so the
	// rest position is the target value 1.
	const to = 1.0
	x0 := -to
	v0 := s.InitialVelocity
	envelope := math.Exp(-beta * t)

	switch {
	case beta < omega0:
		// Underdamped: decaying oscillation around the target.
		omega1 := math.Sqrt(omega0*omega0 - beta*beta)
		return to + envelope*(x0*math.Cos(omega1*t)+(beta*x0+v0)/omega1*math.Sin(omega1*t))
	case beta > omega0:
		// Overdamped: slow approach with no crossing.
		omega2 := math.Sqrt(beta*beta - omega0*omega0)
		return to + envelope*(x0*math.Cosh(omega2*t)+(beta*x0+v0)/omega2*math.Sinh(omega2*t))
	default:
		// Critically damped.
		return to + envelope*(x0+(beta*x0+v0)*t)
	}
}

// Duration estimates how long the spring needs to settle within Epsilon of
// the target. Animations built on a Spring use this instead of a caller
// supplied duration.
func (s Spring) Duration() time.Duration {
	const delta = 0.001

	beta := s.Damping / (2 * s.Mass)
	if beta <= 0 {
		// An undamped spring never settles.
		return time.Duration(math.MaxInt64)
	}
	omega0 := math.Sqrt(s.Stiffness / s.Mass)

	// The envelope exp(-beta*t) bounds critical and underdamped solutions,
	// so the moment it decays below Epsilon is the settling time.
	x0 := -math.Log(s.Epsilon) / beta
	if beta < omega0 || math.Abs(beta-omega0) <= delta {
		return time.Duration(x0 * float64(time.Second))
	}

	// Overdamped solutions decay slower than the envelope. Refine with
	// Newton's method on the oscillation itself, seeded at the envelope
	// estimate.
	y0 := s.Oscillate(x0)
	m := (s.Oscillate(x0+delta) - y0) / delta

	x1 := (1 - y0 + m*x0) / m
	y1 := s.Oscillate(x1)

	for i := 0; math.Abs(1-y1) > s.Epsilon; i++ {
		if i > 1000 {
			return 0
		}
		x0, y0 = x1, y1
		m = (s.Oscillate(x0+delta) - y0) / delta
		x1 = (1 - y0 + m*x0) / m
		y1 = s.Oscillate(x1)
	}
	return time.Duration(x1 * float64(time.Second))
}
