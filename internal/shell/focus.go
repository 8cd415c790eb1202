package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// FocusTarget is what keyboard focus or a pointer hit can land on: a mapped
// window or a layer surface. The set is closed so focus handling stays
// exhaustive.
type FocusTarget interface{ isFocusTarget() }

// WindowTarget focuses a mapped window.
type WindowTarget struct{ ID WindowID }

// LayerTarget focuses a layer-shell surface.
type LayerTarget struct{ Surface SurfaceID }

func (WindowTarget) isFocusTarget() {}
func (LayerTarget) isFocusTarget()  {}

// FocusState pairs the focused output with whatever holds keyboard focus on
// it. Target is nil while nothing has focus.
type FocusState struct {
	Output *Output
	Target FocusTarget
}

// FocusTargetUnder resolves what sits under the global point on the focused
// output, front to back: overlay layers, the active workspace's fullscreen
// window, top layers, workspace windows, then bottom and background layers.
// The returned point is the global origin of the target's local coordinate
// space. Without a focused output there is nothing to hit.
func (sh *Shell) FocusTargetUnder(point geometry.PointF) (FocusTarget, geometry.Point) {
	output := sh.focus.Output
	if output == nil {
		return nil, geometry.Point{}
	}
	outLoc := output.Geometry().Loc()
	local := geometry.PointF{X: point.X - float64(outLoc.X), Y: point.Y - float64(outLoc.Y)}
	lm := sh.layers[output.Name()]
	active := sh.wsets[output.Name()].Active()

	if l := lm.LayerUnder(LayerOverlay, local); l != nil {
		return LayerTarget{Surface: l.Surface()}, l.Geometry().Loc().Add(outLoc)
	}
	if id, ok := active.FullscreenWindow(); ok {
		if w := sh.store.get(id); w != nil && w.Geometry().Contains(point.Round()) {
			return WindowTarget{ID: id}, w.Geometry().Loc()
		}
	}
	if l := lm.LayerUnder(LayerTop, local); l != nil {
		return LayerTarget{Surface: l.Surface()}, l.Geometry().Loc().Add(outLoc)
	}
	if id, loc, ok := active.WindowUnder(point); ok {
		return WindowTarget{ID: id}, loc
	}
	if l := lm.LayerUnder(LayerBottom, local); l != nil {
		return LayerTarget{Surface: l.Surface()}, l.Geometry().Loc().Add(outLoc)
	}
	if l := lm.LayerUnder(LayerBackground, local); l != nil {
		return LayerTarget{Surface: l.Surface()}, l.Geometry().Loc().Add(outLoc)
	}
	return nil, geometry.Point{}
}

// setFocus records the new focus target, counting actual changes only.
func (sh *Shell) setFocus(target FocusTarget) {
	if sh.focus.Target == target {
		return
	}
	sh.focus.Target = target
	sh.metrics.RecordFocusChange()
}

// FocusedTarget returns whatever currently holds keyboard focus.
func (sh *Shell) FocusedTarget() FocusTarget { return sh.focus.Target }

// FocusedOutput returns the output focus currently lives on.
func (sh *Shell) FocusedOutput() *Output { return sh.focus.Output }

// FocusedSurface resolves the focused target to its client surface.
func (sh *Shell) FocusedSurface() (SurfaceID, bool) {
	switch t := sh.focus.Target.(type) {
	case WindowTarget:
		if w := sh.store.get(t.ID); w != nil {
			return w.Surface(), true
		}
		return 0, false
	case LayerTarget:
		return t.Surface, true
	default:
		return 0, false
	}
}

// clientOf resolves the client owning the focus target.
func (sh *Shell) clientOf(target FocusTarget) (ClientID, bool) {
	switch t := target.(type) {
	case WindowTarget:
		if w := sh.store.get(t.ID); w != nil {
			return w.Client(), true
		}
		return 0, false
	case LayerTarget:
		for _, lm := range sh.layers {
			if l := lm.find(t.Surface); l != nil {
				return l.Client(), true
			}
		}
		for _, p := range sh.pendingLayers {
			if p.layer.Surface() == t.Surface {
				return p.layer.Client(), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
