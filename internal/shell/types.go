package shell

import (
	"time"

	"github.com/nnyyxxxx/fht-compositor/internal/animation"
	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/metrics"
)

// SurfaceID identifies a client surface for the lifetime of the connection.
type SurfaceID uint64

// ClientID identifies the client connection owning one or more surfaces.
type ClientID uint32

// Serial numbers an input event; clients echo it back when they request
// something in response to that event.
type Serial uint32

// OutputRef is a client-scoped handle to an output. Each client holds its
// own handles; the transport mints them when the client binds the output.
type OutputRef uint32

// Transport is the seam to the protocol layer. The shell decides state, the
// transport tells clients about it.
type Transport interface {
	// SendConfigure flushes the surface's pending state to its client.
	SendConfigure(surface SurfaceID)
	// ClientOutputs returns the client's handles for the output, in bind
	// order. A client that never bound the output sees none.
	ClientOutputs(client ClientID, output *Output) []OutputRef
}

// SwitchAnimationOptions shapes workspace switch animations.
type SwitchAnimationOptions struct {
	Enable   bool
	Curve    animation.Curve
	Duration time.Duration
}

// Options carries the tunables the shell reads while handling events. The
// shell never reaches for ambient state; everything it needs arrives here.
type Options struct {
	FocusNewWindows   bool
	WorkspaceCount    int
	MasterWidthFactor float64
	Gaps              geometry.Gaps
	WorkspaceSwitch   SwitchAnimationOptions
	Metrics           *metrics.Collector
}
