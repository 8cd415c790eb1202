package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// Positioner computes a popup's geometry inside a target rectangle given in
// the popup's local coordinate space. Positioners are protocol objects; the
// transport layer supplies them.
type Positioner interface {
	UnconstrainedGeometry(target geometry.Rect) geometry.Rect
}

// Popup is a child surface anchored to a parent surface, which is either a
// toplevel window or another popup.
type Popup struct {
	surface    SurfaceID
	client     ClientID
	parent     SurfaceID
	positioner Positioner

	// geometry is relative to the parent surface.
	geometry geometry.Rect
}

// Surface returns the popup's own surface.
func (p *Popup) Surface() SurfaceID { return p.surface }

// Parent returns the surface the popup is anchored to.
func (p *Popup) Parent() SurfaceID { return p.parent }

// Geometry returns the pending parent-relative geometry.
func (p *Popup) Geometry() geometry.Rect { return p.geometry }

// AddPopup registers a popup surface. A nil positioner is a programmer
// error.
func (sh *Shell) AddPopup(surface SurfaceID, client ClientID, parent SurfaceID, positioner Positioner) *Popup {
	if positioner == nil {
		panic("shell: popup registered without a positioner")
	}
	p := &Popup{surface: surface, client: client, parent: parent, positioner: positioner}
	sh.popups[surface] = p
	return p
}

// Popup looks up a registered popup by surface, nil when unknown.
func (sh *Shell) Popup(surface SurfaceID) *Popup {
	return sh.popups[surface]
}

// RemovePopup drops a popup surface.
func (sh *Shell) RemovePopup(surface SurfaceID) {
	delete(sh.popups, surface)
}

// popupChain walks from the popup to its root surface, summing the
// parent-relative offsets of every ancestor popup. The popup's own offset is
// not included: the result is where the popup's coordinate space originates
// relative to the root. A parent cycle reports failure.
func (sh *Shell) popupChain(p *Popup) (SurfaceID, geometry.Point, bool) {
	coords := geometry.Point{}
	visited := map[SurfaceID]bool{p.surface: true}
	parent := p.parent
	for {
		if visited[parent] {
			return 0, geometry.Point{}, false
		}
		visited[parent] = true
		ancestor, isPopup := sh.popups[parent]
		if !isPopup {
			return parent, coords, true
		}
		coords = coords.Add(ancestor.geometry.Loc())
		parent = ancestor.parent
	}
}

// UnconstrainPopup recomputes the popup's pending geometry so it stays
// inside the union of outputs its root window is visible on. Popups whose
// root is not a mapped window, and windows on zero outputs, are left alone.
func (sh *Shell) UnconstrainPopup(surface SurfaceID) {
	p, ok := sh.popups[surface]
	if !ok {
		sh.log.Warn().Uint64("surface", uint64(surface)).Msg("unconstrain requested for an unknown popup")
		return
	}
	root, coords, ok := sh.popupChain(p)
	if !ok {
		sh.log.Warn().Uint64("surface", uint64(surface)).Msg("popup parent chain does not terminate")
		return
	}
	w := sh.FindWindow(root)
	if w == nil {
		return
	}
	outputs := sh.VisibleOutputsForWindow(w.ID())
	if len(outputs) == 0 {
		return
	}

	union := outputs[0].Geometry()
	for _, o := range outputs[1:] {
		union = union.Union(o.Geometry())
	}

	loc := w.Geometry().Loc()
	target := union.Translate(-coords.X, -coords.Y).Translate(-loc.X, -loc.Y)
	p.geometry = p.positioner.UnconstrainedGeometry(target)
	sh.metrics.RecordPopupConstrained()
}
