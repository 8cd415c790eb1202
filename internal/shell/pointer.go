package shell

import "github.com/nnyyxxxx/fht-compositor/internal/geometry"

// GrabStartData freezes the pointer state of the button press that opened
// the implicit grab: what was under the pointer, where it was, and the
// serial the client must echo to act on it.
type GrabStartData struct {
	Focus    FocusTarget
	Location geometry.PointF
	Serial   Serial
}

// MoveGrab owns pointer motion while a window is dragged. The window follows
// the pointer from its anchor location.
type MoveGrab struct {
	start           *GrabStartData
	window          WindowID
	initialLocation geometry.Point
}

// Pointer is the single seat's pointer: current location, pressed button
// count, the implicit grab's start data and an installed move grab.
type Pointer struct {
	location  geometry.PointF
	pressed   int
	startData *GrabStartData
	grab      *MoveGrab
}

// hasGrab reports whether serial names the live implicit grab. The grab dies
// with its last pressed button.
func (p *Pointer) hasGrab(serial Serial) bool {
	return p.startData != nil && p.startData.Serial == serial && p.pressed > 0
}

// PointerLocation returns the pointer's global position.
func (sh *Shell) PointerLocation() geometry.PointF { return sh.pointer.location }

// MoveGrabTarget returns the window an installed move grab is dragging. A
// grab whose window has closed or been parked mid-drag no longer counts.
func (sh *Shell) MoveGrabTarget() (WindowID, bool) {
	grab := sh.pointer.grab
	if grab == nil {
		return 0, false
	}
	if _, _, found := sh.workspaceOf(grab.window); !found {
		return 0, false
	}
	return grab.window, true
}

// PointerButton feeds a button press or release. The first press opens the
// implicit grab over whatever is under the pointer; releasing the last
// button closes it and tears down any move grab riding on it.
func (sh *Shell) PointerButton(pressed bool, serial Serial) {
	if pressed {
		sh.pointer.pressed++
		if sh.pointer.pressed == 1 {
			target, _ := sh.FocusTargetUnder(sh.pointer.location)
			sh.pointer.startData = &GrabStartData{
				Focus:    target,
				Location: sh.pointer.location,
				Serial:   serial,
			}
		}
		return
	}
	sh.pointer.pressed--
	if sh.pointer.pressed > 0 {
		return
	}
	sh.pointer.pressed = 0
	if sh.pointer.grab != nil {
		sh.pointer.grab = nil
		sh.metrics.RecordGrabEnd()
	}
	sh.pointer.startData = nil
}

// PointerMotion moves the pointer. An installed move grab drags its window
// by the pointer's travel since the grab was anchored; the grab dissolves if
// the window disappeared.
func (sh *Shell) PointerMotion(location geometry.PointF) {
	sh.pointer.location = location
	grab := sh.pointer.grab
	if grab == nil {
		return
	}
	w := sh.store.get(grab.window)
	_, _, mapped := sh.workspaceOf(grab.window)
	if w == nil || !mapped {
		sh.pointer.grab = nil
		return
	}
	delta := geometry.PointF{
		X: location.X - grab.start.Location.X,
		Y: location.Y - grab.start.Location.Y,
	}.Round()
	geo := w.Geometry()
	geo.X = grab.initialLocation.X + delta.X
	geo.Y = grab.initialLocation.Y + delta.Y
	w.SetGeometry(geo)
}

// HandleMoveRequest starts an interactive move if the client's request is
// backed by the live pointer grab and the grabbed focus belongs to the same
// client as the window. Maximized or fullscreen windows are restored first
// and re-anchored at the pointer, since leaving either state invalidates the
// old geometry.
func (sh *Shell) HandleMoveRequest(id WindowID, serial Serial) {
	if !sh.pointer.hasGrab(serial) {
		return
	}
	start := sh.pointer.startData

	w := sh.store.get(id)
	if w == nil {
		sh.log.Warn().Uint64("window", uint64(id)).Msg("move requested for an unknown window")
		return
	}
	focusClient, ok := sh.clientOf(start.Focus)
	if !ok || focusClient != w.Client() {
		return
	}

	anchor := w.Geometry().Loc()
	if w.Maximized() || w.Fullscreen() {
		w.SetMaximized(false)
		sh.demoteFullscreen(w)
		sh.transport.SendConfigure(w.Surface())
		anchor = sh.pointer.location.Int()
	}
	// A window can hold a fullscreen slot without being maximized.
	sh.demoteFullscreen(w)

	sh.pointer.grab = &MoveGrab{start: start, window: id, initialLocation: anchor}
	sh.metrics.RecordGrabStart()
	sh.log.Debug().Uint64("window", uint64(id)).Msg("move grab installed")
}

// demoteFullscreen pulls the window out of a held fullscreen slot, or just
// clears its advertised state when it holds none. The caller flushes with a
// configure.
func (sh *Shell) demoteFullscreen(w *Window) {
	if ws, _, found := sh.workspaceOf(w.ID()); found {
		if occupant, held := ws.FullscreenWindow(); held && occupant == w.ID() {
			ws.restoreFullscreen()
			return
		}
	}
	w.setFullscreenState(false, nil)
}
