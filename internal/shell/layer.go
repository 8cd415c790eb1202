package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// LayerLevel is the stacking level of a layer surface, lowest first.
type LayerLevel int

const (
	LayerBackground LayerLevel = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

func (l LayerLevel) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Anchor is the output edge a layer surface attaches to. AnchorNone surfaces
// keep the geometry they were created with.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// LayerSurface is a layer-shell surface pinned to one output. Bars and docks
// anchor to an edge with a thickness; exclusive surfaces reserve that
// thickness out of the usable area windows tile into.
type LayerSurface struct {
	surface   SurfaceID
	client    ClientID
	level     LayerLevel
	anchor    Anchor
	thickness int
	exclusive bool

	// geometry is relative to the output's top-left corner, computed by
	// LayerMap.Arrange for anchored surfaces.
	geometry geometry.Rect
}

// Surface returns the protocol surface backing the layer.
func (l *LayerSurface) Surface() SurfaceID { return l.surface }

// Client returns the owning client.
func (l *LayerSurface) Client() ClientID { return l.client }

// Level returns the stacking level.
func (l *LayerSurface) Level() LayerLevel { return l.level }

// Geometry returns the output-local rect of the surface.
func (l *LayerSurface) Geometry() geometry.Rect { return l.geometry }

// LayerMap tracks the layer surfaces of one output.
type LayerMap struct {
	output *Output
	layers []*LayerSurface
	usable geometry.Rect
}

func newLayerMap(output *Output) *LayerMap {
	m := &LayerMap{output: output}
	m.Arrange()
	return m
}

func (m *LayerMap) add(l *LayerSurface) {
	m.layers = append(m.layers, l)
}

func (m *LayerMap) remove(surface SurfaceID) bool {
	for i, l := range m.layers {
		if l.surface == surface {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (m *LayerMap) find(surface SurfaceID) *LayerSurface {
	for _, l := range m.layers {
		if l.surface == surface {
			return l
		}
	}
	return nil
}

// LayerUnder returns the topmost surface of the level containing the
// output-local point, or nil.
func (m *LayerMap) LayerUnder(level LayerLevel, point geometry.PointF) *LayerSurface {
	p := point.Round()
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if l.level == level && l.geometry.Contains(p) {
			return l
		}
	}
	return nil
}

// Arrange recomputes anchored surface geometries and the usable area left
// for windows after exclusive zones are carved out.
func (m *LayerMap) Arrange() {
	geo := m.output.Geometry()
	usable := geometry.Rect{Width: geo.Width, Height: geo.Height}

	for _, l := range m.layers {
		t := l.thickness
		if t < 0 {
			t = 0
		}
		switch l.anchor {
		case AnchorTop:
			l.geometry = geometry.Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: min(t, usable.Height)}
			if l.exclusive {
				usable.Y += l.geometry.Height
				usable.Height -= l.geometry.Height
			}
		case AnchorBottom:
			h := min(t, usable.Height)
			l.geometry = geometry.Rect{X: usable.X, Y: usable.Y + usable.Height - h, Width: usable.Width, Height: h}
			if l.exclusive {
				usable.Height -= h
			}
		case AnchorLeft:
			l.geometry = geometry.Rect{X: usable.X, Y: usable.Y, Width: min(t, usable.Width), Height: usable.Height}
			if l.exclusive {
				usable.X += l.geometry.Width
				usable.Width -= l.geometry.Width
			}
		case AnchorRight:
			w := min(t, usable.Width)
			l.geometry = geometry.Rect{X: usable.X + usable.Width - w, Y: usable.Y, Width: w, Height: usable.Height}
			if l.exclusive {
				usable.Width -= w
			}
		case AnchorNone:
			// Keeps its client-provided geometry.
		}
	}

	m.usable = usable
}

// UsableArea returns the output-local rect windows may tile into.
func (m *LayerMap) UsableArea() geometry.Rect {
	return m.usable
}
