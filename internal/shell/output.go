package shell

import (
	"fmt"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
)

// Output is a logical output advertised to clients. Geometry is global and
// never degenerate.
type Output struct {
	name     string
	geometry geometry.Rect
}

// NewOutput creates an output. Panics on an empty name or degenerate
// geometry: outputs come from the backend and a broken one is a programmer
// error, not an input to recover from.
func NewOutput(name string, geo geometry.Rect) *Output {
	if name == "" {
		panic("shell: output with an empty name")
	}
	if geo.IsEmpty() {
		panic(fmt.Sprintf("shell: output %q with degenerate geometry %+v", name, geo))
	}
	return &Output{name: name, geometry: geo}
}

// Name returns the output's connector name, e.g. "DP-1".
func (o *Output) Name() string { return o.name }

// Geometry returns the output rect in global logical coordinates.
func (o *Output) Geometry() geometry.Rect { return o.geometry }

func (o *Output) setGeometry(geo geometry.Rect) {
	if geo.IsEmpty() {
		panic(fmt.Sprintf("shell: output %q resized to degenerate geometry %+v", o.name, geo))
	}
	o.geometry = geo
}
