package shell

import "github.com/nnyyxxxx/fht-compositor/internal/rules"

// pendingWindow is a created-but-unmapped window together with the output
// proposed for it at creation time.
type pendingWindow struct {
	window *Window
	output *Output
}

// CreateWindow registers a fresh toplevel surface. The window stays pending
// until MapWindow runs; the proposed output is the focused one, falling back
// to the first known output, or nil when none exist yet.
func (sh *Shell) CreateWindow(surface SurfaceID, client ClientID, title, appID string) *Window {
	w := sh.store.create(surface, client, title, appID)
	output := sh.focus.Output
	if output == nil && len(sh.outputs) > 0 {
		output = sh.outputs[0]
	}
	sh.pendingWindows[w.ID()] = &pendingWindow{window: w, output: output}
	sh.log.Debug().Uint64("window", uint64(w.ID())).Str("appId", appID).Msg("window created")
	return w
}

// MapWindow inserts a pending window into a workspace. Mapping a window that
// is not pending is a warning and a no-op. Placement comes from the window
// rules: tiled or floating, initial fullscreen, an explicit output or
// workspace. A fullscreen slot already held on the destination workspace is
// restored before the new window is inserted.
func (sh *Shell) MapWindow(id WindowID) {
	pending, ok := sh.pendingWindows[id]
	if !ok {
		sh.log.Warn().Uint64("window", uint64(id)).Msg("map requested for a window that is not pending")
		return
	}
	w := pending.window

	output := pending.output
	if output == nil {
		output = sh.focus.Output
	}
	if output == nil {
		sh.log.Warn().Uint64("window", uint64(id)).Msg("no output to map on, window stays pending")
		return
	}
	delete(sh.pendingWindows, id)

	wset := sh.wsets[output.Name()]
	settings := rules.ResolveMapSettings(sh.rules, w, wset.ActiveIdx())

	w.SetTiled(!settings.Floating)

	// The fullscreen advertisement names the output through the client's
	// own handle for it.
	var ref *OutputRef
	if settings.Fullscreen {
		if refs := sh.transport.ClientOutputs(w.Client(), output); len(refs) > 0 {
			ref = &refs[0]
		}
	}
	w.setFullscreenState(settings.Fullscreen, ref)

	if settings.Output != "" {
		if redirected := sh.outputByName(settings.Output); redirected != nil {
			output = redirected
			wset = sh.wsets[output.Name()]
		} else {
			sh.log.Warn().Str("output", settings.Output).Msg("window rule names an unknown output")
		}
	}

	ws := wset.Active()
	if settings.Workspace != nil {
		idx := *settings.Workspace
		if idx < 0 {
			idx = 0
		}
		if last := len(wset.Workspaces()) - 1; idx > last {
			idx = last
		}
		ws = wset.WorkspaceAt(idx)
	}

	// Restore a held slot before inserting so the restore index refers to
	// the sequence as the occupant last saw it.
	if displaced, held := ws.restoreFullscreen(); held {
		if old := sh.store.get(displaced); old != nil {
			sh.transport.SendConfigure(old.Surface())
		}
	}
	ws.insertWindow(id)
	if settings.Fullscreen {
		ws.setFullscreen(id)
	} else if settings.Floating && settings.Centered {
		w.SetGeometry(w.Geometry().CenteredIn(output.Geometry()))
	}

	sh.arrangeOutput(output)
	sh.transport.SendConfigure(w.Surface())

	if sh.opts.FocusNewWindows {
		sh.focus.Output = output
		sh.setFocus(WindowTarget{ID: id})
	}
	sh.metrics.RecordMap(w.AppID())
	sh.log.Debug().
		Uint64("window", uint64(id)).
		Str("output", output.Name()).
		Int("workspace", ws.Index()).
		Bool("floating", settings.Floating).
		Bool("fullscreen", settings.Fullscreen).
		Msg("window mapped")
}

// CloseWindow removes the window entirely: from the pending list or from its
// workspace, releasing focus and any move grab that reference it.
func (sh *Shell) CloseWindow(id WindowID) {
	w := sh.store.get(id)
	if w == nil {
		sh.log.Warn().Uint64("window", uint64(id)).Msg("close requested for an unknown window")
		return
	}

	if _, pending := sh.pendingWindows[id]; pending {
		delete(sh.pendingWindows, id)
	} else if ws, output, found := sh.workspaceOf(id); found {
		ws.removeWindow(id)
		if sh.pointer.grab != nil && sh.pointer.grab.window == id {
			sh.pointer.grab = nil
		}
		if t, isWindow := sh.focus.Target.(WindowTarget); isWindow && t.ID == id {
			sh.focusTopOf(sh.wsets[output.Name()].Active())
		}
		sh.arrangeOutput(output)
	}

	sh.store.remove(id)
	sh.metrics.RecordClose()
	sh.log.Debug().Uint64("window", uint64(id)).Msg("window closed")
}

// Raise moves the window to the top of its stacking group so hit testing
// sees it first.
func (sh *Shell) Raise(id WindowID) {
	if ws, _, found := sh.workspaceOf(id); found {
		ws.raise(id)
	}
}

// SetWindowFullscreen promotes the window into its workspace's fullscreen
// slot or restores it out of one. Promoting displaces any current occupant
// first.
func (sh *Shell) SetWindowFullscreen(id WindowID, fullscreen bool) {
	w := sh.store.get(id)
	if w == nil {
		sh.log.Warn().Uint64("window", uint64(id)).Msg("fullscreen change for an unknown window")
		return
	}
	ws, output, found := sh.workspaceOf(id)
	if !found {
		return
	}

	if fullscreen {
		if occupant, held := ws.FullscreenWindow(); held {
			if occupant == id {
				return
			}
			if _, restored := ws.restoreFullscreen(); restored {
				if old := sh.store.get(occupant); old != nil {
					sh.transport.SendConfigure(old.Surface())
				}
			}
		}
		var ref *OutputRef
		if refs := sh.transport.ClientOutputs(w.Client(), output); len(refs) > 0 {
			ref = &refs[0]
		}
		w.setFullscreenState(true, ref)
		ws.setFullscreen(id)
	} else {
		if occupant, held := ws.FullscreenWindow(); held && occupant == id {
			ws.restoreFullscreen()
		} else {
			w.setFullscreenState(false, nil)
		}
	}

	sh.transport.SendConfigure(w.Surface())
	sh.arrangeOutput(output)
}

// focusTopOf moves focus to the workspace's topmost window, or clears it
// when the workspace is empty.
func (sh *Shell) focusTopOf(ws *Workspace) {
	if id, held := ws.FullscreenWindow(); held {
		sh.setFocus(WindowTarget{ID: id})
		return
	}
	if n := len(ws.Windows()); n > 0 {
		sh.setFocus(WindowTarget{ID: ws.Windows()[n-1]})
		return
	}
	sh.setFocus(nil)
}
