package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// FullscreenSlot records the window presented fullscreen on a workspace and
// the stack index it occupied before it was pulled out, so it can return
// there.
type FullscreenSlot struct {
	Window       WindowID
	LastKnownIdx int
}

// Workspace holds an ordered stack of windows. At most one window occupies
// the fullscreen slot; while it does, it is absent from the stack.
type Workspace struct {
	store  *windowStore
	output *Output
	idx    int

	// windows is both layout order (master first) and stacking order
	// within the tiled and floating groups; later entries draw on top.
	windows    []WindowID
	fullscreen *FullscreenSlot
}

func newWorkspace(store *windowStore, output *Output, idx int) *Workspace {
	return &Workspace{store: store, output: output, idx: idx}
}

// Index returns the workspace position inside its set.
func (ws *Workspace) Index() int { return ws.idx }

// Windows returns the stack. The slice is the workspace's own; callers must
// not mutate it.
func (ws *Workspace) Windows() []WindowID { return ws.windows }

// FullscreenWindow returns the slot occupant, if any.
func (ws *Workspace) FullscreenWindow() (WindowID, bool) {
	if ws.fullscreen == nil {
		return 0, false
	}
	return ws.fullscreen.Window, true
}

// Contains reports whether the window is in the stack or the slot.
func (ws *Workspace) Contains(id WindowID) bool {
	if ws.fullscreen != nil && ws.fullscreen.Window == id {
		return true
	}
	for _, w := range ws.windows {
		if w == id {
			return true
		}
	}
	return false
}

// insertWindow appends the window to the stack. Inserting a window already
// present is a no-op.
func (ws *Workspace) insertWindow(id WindowID) {
	if ws.Contains(id) {
		return
	}
	ws.windows = append(ws.windows, id)
}

// removeWindow drops the window from the stack or the slot. It reports
// whether anything was removed.
func (ws *Workspace) removeWindow(id WindowID) bool {
	if ws.fullscreen != nil && ws.fullscreen.Window == id {
		ws.fullscreen = nil
		if w := ws.store.get(id); w != nil {
			w.setFullscreenState(false, nil)
		}
		return true
	}
	for i, w := range ws.windows {
		if w == id {
			ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
			return true
		}
	}
	return false
}

// raise moves the window to the top of its stacking order.
func (ws *Workspace) raise(id WindowID) {
	for i, w := range ws.windows {
		if w == id {
			ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
			ws.windows = append(ws.windows, id)
			return
		}
	}
}

// setFullscreen pulls the window out of the stack into the slot, remembering
// its index. The caller restores any previous occupant first.
func (ws *Workspace) setFullscreen(id WindowID) {
	for i, w := range ws.windows {
		if w != id {
			continue
		}
		ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
		ws.fullscreen = &FullscreenSlot{Window: id, LastKnownIdx: i}
		if win := ws.store.get(id); win != nil {
			win.fullscreen = true
			win.SetGeometry(ws.output.Geometry())
		}
		return
	}
}

// restoreFullscreen empties the slot, reinserting its window at the
// remembered index clamped into the stack's current bounds. Returns the
// restored window id.
func (ws *Workspace) restoreFullscreen() (WindowID, bool) {
	if ws.fullscreen == nil {
		return 0, false
	}
	slot := ws.fullscreen
	ws.fullscreen = nil

	idx := slot.LastKnownIdx
	if idx < 0 {
		idx = 0
	}
	if idx > len(ws.windows) {
		idx = len(ws.windows)
	}
	ws.windows = append(ws.windows[:idx], append([]WindowID{slot.Window}, ws.windows[idx:]...)...)
	if w := ws.store.get(slot.Window); w != nil {
		w.setFullscreenState(false, nil)
	}
	return slot.Window, true
}

// WindowUnder returns the topmost window containing the global point and
// the global origin of its coordinate space. Floating windows sit above
// tiled ones; within each group later stack entries are on top.
func (ws *Workspace) WindowUnder(point geometry.PointF) (WindowID, geometry.Point, bool) {
	p := point.Round()
	for _, floating := range []bool{true, false} {
		for i := len(ws.windows) - 1; i >= 0; i-- {
			w := ws.store.get(ws.windows[i])
			if w == nil || w.Floating() != floating {
				continue
			}
			if w.Geometry().Contains(p) {
				return w.id, w.Geometry().Loc(), true
			}
		}
	}
	return 0, geometry.Point{}, false
}

// arrange retiles the workspace into the usable area: the first tiled
// window is the master column, the rest stack beside it. Floating windows
// are left where they are; a slot window always covers the whole output.
// Returns the windows whose geometry changed.
func (ws *Workspace) arrange(usable geometry.Rect, gaps geometry.Gaps, masterFactor float64) []WindowID {
	var changed []WindowID
	apply := func(w *Window, geo geometry.Rect) {
		if w.Geometry() != geo {
			w.SetGeometry(geo)
			changed = append(changed, w.id)
		}
	}

	if ws.fullscreen != nil {
		if w := ws.store.get(ws.fullscreen.Window); w != nil {
			apply(w, ws.output.Geometry())
		}
	}

	var tiled []*Window
	for _, id := range ws.windows {
		if w := ws.store.get(id); w != nil && w.Tiled() {
			tiled = append(tiled, w)
		}
	}
	if len(tiled) == 0 {
		return changed
	}

	area := gaps.Shrink(usable)
	if len(tiled) == 1 {
		apply(tiled[0], area)
		return changed
	}

	masterWidth := int(float64(area.Width-gaps.Inner) * masterFactor)
	if masterWidth < 0 {
		masterWidth = 0
	}
	stackWidth := area.Width - gaps.Inner - masterWidth
	if stackWidth < 0 {
		stackWidth = 0
	}
	apply(tiled[0], geometry.Rect{X: area.X, Y: area.Y, Width: masterWidth, Height: area.Height})

	stack := tiled[1:]
	stackX := area.X + masterWidth + gaps.Inner
	each := (area.Height - gaps.Inner*(len(stack)-1)) / len(stack)
	if each < 0 {
		each = 0
	}
	for i, w := range stack {
		y := area.Y + i*(each+gaps.Inner)
		h := each
		if i == len(stack)-1 {
			// The last entry absorbs integer division remainder.
			h = area.Y + area.Height - y
			if h < 0 {
				h = 0
			}
		}
		apply(w, geometry.Rect{X: stackX, Y: y, Width: stackWidth, Height: h})
	}
	return changed
}
