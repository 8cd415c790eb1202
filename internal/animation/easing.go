package animation

import (
	"fmt"
	"math"
)

// Curve is the closed set of interpolation curves an Animation can run:
// Simple, Cubic or Spring. The unexported method keeps the set closed so
// Animation can switch over every kind.
type Curve interface {
	isCurve()
}

// Simple runs a named easing function over the normalized animation clock.
type Simple struct {
	Easing Easing
}

func (Simple) isCurve() {}

// Y evaluates the easing function at x in [0, 1].
func (s Simple) Y(x float64) float64 {
	return s.Easing.Y(x)
}

// Easing identifies one of the fixed easing functions.
type Easing int

const (
	EaseLinear Easing = iota
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
	EaseInCubic
	EaseOutCubic
	EaseInOutCubic
	EaseInQuart
	EaseOutQuart
	EaseInOutQuart
	EaseInQuint
	EaseOutQuint
	EaseInOutQuint
	EaseInSine
	EaseOutSine
	EaseInOutSine
	EaseInExpo
	EaseOutExpo
	EaseInOutExpo
)

var easingNames = map[Easing]string{
	EaseLinear:     "linear",
	EaseInQuad:     "ease-in-quad",
	EaseOutQuad:    "ease-out-quad",
	EaseInOutQuad:  "ease-in-out-quad",
	EaseInCubic:    "ease-in-cubic",
	EaseOutCubic:   "ease-out-cubic",
	EaseInOutCubic: "ease-in-out-cubic",
	EaseInQuart:    "ease-in-quart",
	EaseOutQuart:   "ease-out-quart",
	EaseInOutQuart: "ease-in-out-quart",
	EaseInQuint:    "ease-in-quint",
	EaseOutQuint:   "ease-out-quint",
	EaseInOutQuint: "ease-in-out-quint",
	EaseInSine:     "ease-in-sine",
	EaseOutSine:    "ease-out-sine",
	EaseInOutSine:  "ease-in-out-sine",
	EaseInExpo:     "ease-in-expo",
	EaseOutExpo:    "ease-out-expo",
	EaseInOutExpo:  "ease-in-out-expo",
}

func (e Easing) String() string {
	if name, ok := easingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("easing(%d)", int(e))
}

// ParseEasing resolves an easing name as written in configuration files.
func ParseEasing(name string) (Easing, error) {
	for e, n := range easingNames {
		if n == name {
			return e, nil
		}
	}
	return EaseLinear, fmt.Errorf("unknown easing %q", name)
}

// Y evaluates the easing at x in [0, 1], returning progress in [0, 1].
func (e Easing) Y(x float64) float64 {
	switch e {
	case EaseLinear:
		return x
	case EaseInQuad:
		return x * x
	case EaseOutQuad:
		return 1 - (1-x)*(1-x)
	case EaseInOutQuad:
		return inOut(x, EaseInQuad)
	case EaseInCubic:
		return x * x * x
	case EaseOutCubic:
		return 1 - math.Pow(1-x, 3)
	case EaseInOutCubic:
		return inOut(x, EaseInCubic)
	case EaseInQuart:
		return x * x * x * x
	case EaseOutQuart:
		return 1 - math.Pow(1-x, 4)
	case EaseInOutQuart:
		return inOut(x, EaseInQuart)
	case EaseInQuint:
		return x * x * x * x * x
	case EaseOutQuint:
		return 1 - math.Pow(1-x, 5)
	case EaseInOutQuint:
		return inOut(x, EaseInQuint)
	case EaseInSine:
		return 1 - math.Cos(x*math.Pi/2)
	case EaseOutSine:
		return math.Sin(x * math.Pi / 2)
	case EaseInOutSine:
		return -(math.Cos(math.Pi*x) - 1) / 2
	case EaseInExpo:
		if x == 0 {
			return 0
		}
		return math.Pow(2, 10*x-10)
	case EaseOutExpo:
		if x == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*x)
	case EaseInOutExpo:
		return inOut(x, EaseInExpo)
	default:
		return x
	}
}

// inOut mirrors an ease-in function around the midpoint.
func inOut(x float64, in Easing) float64 {
	if x < 0.5 {
		return in.Y(x*2) / 2
	}
	return 1 - in.Y((1-x)*2)/2
}
