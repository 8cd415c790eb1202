package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// WindowID identifies a window for its whole lifetime. IDs are minted once
// and never reused, so stale references resolve to nothing instead of to a
// different window.
type WindowID uint64

// Window is a toplevel tracked by the shell, pending or mapped. Windows live
// in the shell's arena; workspaces and focus bookkeeping hold WindowIDs.
type Window struct {
	id      WindowID
	surface SurfaceID
	client  ClientID

	title string
	appID string

	tiled      bool
	fullscreen bool
	maximized  bool

	// fullscreenOutput is the client-scoped handle carried in the
	// fullscreen advertisement, nil while not fullscreen.
	fullscreenOutput *OutputRef

	// geometry is in global logical coordinates.
	geometry geometry.Rect
}

// ID returns the stable window identity.
func (w *Window) ID() WindowID { return w.id }

// Surface returns the protocol surface backing the window.
func (w *Window) Surface() SurfaceID { return w.surface }

// Client returns the owning client.
func (w *Window) Client() ClientID { return w.client }

// Title returns the current toplevel title.
func (w *Window) Title() string { return w.title }

// AppID returns the application identifier (WM_CLASS under X11).
func (w *Window) AppID() string { return w.appID }

// SetTitle updates the toplevel title.
func (w *Window) SetTitle(title string) { w.title = title }

// SetAppID updates the application identifier.
func (w *Window) SetAppID(appID string) { w.appID = appID }

// Tiled reports whether the window takes part in tiling.
func (w *Window) Tiled() bool { return w.tiled }

// Floating reports the opposite of Tiled; a window is always exactly one of
// the two.
func (w *Window) Floating() bool { return !w.tiled }

// SetTiled moves the window between the tiled and floating states.
func (w *Window) SetTiled(tiled bool) { w.tiled = tiled }

// Fullscreen reports whether the window currently holds a fullscreen slot.
func (w *Window) Fullscreen() bool { return w.fullscreen }

// FullscreenOutput returns the client-scoped output handle the fullscreen
// advertisement references, nil while not fullscreen.
func (w *Window) FullscreenOutput() *OutputRef { return w.fullscreenOutput }

// setFullscreenState records the advertised fullscreen state as pending;
// Transport.SendConfigure flushes it to the client.
func (w *Window) setFullscreenState(fullscreen bool, output *OutputRef) {
	w.fullscreen = fullscreen
	w.fullscreenOutput = output
}

// Maximized reports the client-requested maximized state.
func (w *Window) Maximized() bool { return w.maximized }

// SetMaximized updates the maximized state.
func (w *Window) SetMaximized(maximized bool) { w.maximized = maximized }

// Geometry returns the window rect in global logical coordinates.
func (w *Window) Geometry() geometry.Rect { return w.geometry }

// SetGeometry moves or resizes the window.
func (w *Window) SetGeometry(geo geometry.Rect) { w.geometry = geo }

// windowStore is the arena owning every window the shell knows about.
type windowStore struct {
	next      WindowID
	byID      map[WindowID]*Window
	bySurface map[SurfaceID]WindowID
}

func newWindowStore() *windowStore {
	return &windowStore{
		next:      1,
		byID:      make(map[WindowID]*Window),
		bySurface: make(map[SurfaceID]WindowID),
	}
}

func (st *windowStore) create(surface SurfaceID, client ClientID, title, appID string) *Window {
	w := &Window{
		id:      st.next,
		surface: surface,
		client:  client,
		title:   title,
		appID:   appID,
		tiled:   true,
	}
	st.next++
	st.byID[w.id] = w
	st.bySurface[surface] = w.id
	return w
}

// get returns nil for unknown ids.
func (st *windowStore) get(id WindowID) *Window {
	return st.byID[id]
}

func (st *windowStore) findBySurface(surface SurfaceID) *Window {
	id, ok := st.bySurface[surface]
	if !ok {
		return nil
	}
	return st.byID[id]
}

func (st *windowStore) remove(id WindowID) {
	w, ok := st.byID[id]
	if !ok {
		return
	}
	delete(st.bySurface, w.surface)
	delete(st.byID, id)
}
