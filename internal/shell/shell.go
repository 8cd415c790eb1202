package shell

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/metrics"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
)

// Shell is the window-management core: windows, workspaces, layer surfaces,
// focus, popups and the pointer. It is owned by a single goroutine; every
// method must be called from that owner.
type Shell struct {
	log       zerolog.Logger
	transport Transport
	metrics   *metrics.Collector
	opts      Options

	store   *windowStore
	outputs []*Output
	wsets   map[string]*WorkspaceSet
	layers  map[string]*LayerMap

	pendingWindows map[WindowID]*pendingWindow
	pendingLayers  []*pendingLayer
	popups         map[SurfaceID]*Popup

	rules []rules.Rule

	focus   FocusState
	pointer Pointer
}

type pendingLayer struct {
	layer  *LayerSurface
	output *Output
}

// New builds an empty shell. Out-of-range options are normalized silently; a
// nil transport is a programmer error.
func New(log zerolog.Logger, transport Transport, opts Options) *Shell {
	if transport == nil {
		panic("shell: nil transport")
	}
	if opts.WorkspaceCount < 1 {
		opts.WorkspaceCount = 1
	}
	if opts.MasterWidthFactor <= 0 || opts.MasterWidthFactor >= 1 {
		opts.MasterWidthFactor = 0.55
	}
	return &Shell{
		log:            log,
		transport:      transport,
		metrics:        opts.Metrics,
		opts:           opts,
		store:          newWindowStore(),
		wsets:          make(map[string]*WorkspaceSet),
		layers:         make(map[string]*LayerMap),
		pendingWindows: make(map[WindowID]*pendingWindow),
		popups:         make(map[SurfaceID]*Popup),
	}
}

// SetRules replaces the window rules consulted on map.
func (sh *Shell) SetRules(ruleList []rules.Rule) { sh.rules = ruleList }

// SetOptions swaps the tunables and re-arranges everything under the new
// gaps and master factor. The workspace count applies only to outputs added
// afterwards.
func (sh *Shell) SetOptions(opts Options) {
	if opts.WorkspaceCount < 1 {
		opts.WorkspaceCount = 1
	}
	if opts.MasterWidthFactor <= 0 || opts.MasterWidthFactor >= 1 {
		opts.MasterWidthFactor = 0.55
	}
	sh.opts = opts
	sh.metrics = opts.Metrics
	sh.Arrange()
}

// Outputs returns the known outputs in add order.
func (sh *Shell) Outputs() []*Output { return sh.outputs }

func (sh *Shell) outputByName(name string) *Output {
	for _, o := range sh.outputs {
		if o.Name() == name {
			return o
		}
	}
	return nil
}

// AddOutput brings an output online with its own workspace set and layer
// map. The first output becomes the focused one, and windows created while
// no output existed get mapped onto it.
func (sh *Shell) AddOutput(output *Output) {
	if sh.outputByName(output.Name()) != nil {
		sh.log.Warn().Str("output", output.Name()).Msg("output already added")
		return
	}
	sh.outputs = append(sh.outputs, output)
	sh.wsets[output.Name()] = newWorkspaceSet(sh.store, output, sh.opts.WorkspaceCount)
	sh.layers[output.Name()] = newLayerMap(output)
	if sh.focus.Output == nil {
		sh.focus.Output = output
	}
	sh.log.Info().Str("output", output.Name()).Msg("output added")

	var stranded []WindowID
	for id, p := range sh.pendingWindows {
		if p.output == nil {
			stranded = append(stranded, id)
		}
	}
	sort.Slice(stranded, func(i, j int) bool { return stranded[i] < stranded[j] })
	for _, id := range stranded {
		sh.pendingWindows[id].output = output
		sh.MapWindow(id)
	}
}

// RemoveOutput takes an output offline. Its windows migrate in order onto
// the first remaining output's active workspace; with no output left they
// return to the pending list and wait for the next AddOutput. Layer surfaces
// die with their output.
func (sh *Shell) RemoveOutput(name string) {
	output := sh.outputByName(name)
	if output == nil {
		sh.log.Warn().Str("output", name).Msg("remove requested for an unknown output")
		return
	}
	wset := sh.wsets[name]
	lm := sh.layers[name]
	for i, o := range sh.outputs {
		if o == output {
			sh.outputs = append(sh.outputs[:i], sh.outputs[i+1:]...)
			break
		}
	}
	delete(sh.wsets, name)
	delete(sh.layers, name)

	if t, isLayer := sh.focus.Target.(LayerTarget); isLayer && lm.find(t.Surface) != nil {
		sh.setFocus(nil)
	}

	var migrating []WindowID
	for _, ws := range wset.Workspaces() {
		ws.restoreFullscreen()
		migrating = append(migrating, ws.Windows()...)
	}

	if len(sh.outputs) == 0 {
		for _, id := range migrating {
			sh.pendingWindows[id] = &pendingWindow{window: sh.store.get(id)}
		}
		sh.focus.Output = nil
		sh.setFocus(nil)
		sh.log.Info().Str("output", name).Int("windows", len(migrating)).Msg("last output removed, windows parked")
		return
	}

	dest := sh.outputs[0]
	destWs := sh.wsets[dest.Name()].Active()
	for _, id := range migrating {
		destWs.insertWindow(id)
	}
	if sh.focus.Output == output {
		sh.focus.Output = dest
		sh.focusTopOf(destWs)
	}
	sh.arrangeOutput(dest)
	sh.log.Info().Str("output", name).Str("to", dest.Name()).Int("windows", len(migrating)).Msg("output removed, windows migrated")
}

// ResizeOutput updates an output's position or mode and re-arranges it.
func (sh *Shell) ResizeOutput(name string, geo geometry.Rect) {
	output := sh.outputByName(name)
	if output == nil {
		sh.log.Warn().Str("output", name).Msg("resize requested for an unknown output")
		return
	}
	output.setGeometry(geo)
	sh.arrangeOutput(output)
}

// Arrange re-lays-out every output: layer surfaces first, then the
// workspaces into whatever usable area the exclusive zones leave.
func (sh *Shell) Arrange() {
	for _, o := range sh.outputs {
		sh.arrangeOutput(o)
	}
}

func (sh *Shell) arrangeOutput(output *Output) {
	lm := sh.layers[output.Name()]
	lm.Arrange()
	loc := output.Geometry().Loc()
	usable := lm.UsableArea().Translate(loc.X, loc.Y)
	changed := sh.wsets[output.Name()].arrange(usable, sh.opts.Gaps, sh.opts.MasterWidthFactor)
	for _, id := range changed {
		if w := sh.store.get(id); w != nil {
			sh.transport.SendConfigure(w.Surface())
		}
	}
}

// workspaceOf finds the workspace and output holding a mapped window.
func (sh *Shell) workspaceOf(id WindowID) (*Workspace, *Output, bool) {
	for _, o := range sh.outputs {
		if ws, found := sh.wsets[o.Name()].workspaceContaining(id); found {
			return ws, o, true
		}
	}
	return nil, nil, false
}

// WorkspaceFor returns the workspace holding a mapped window.
func (sh *Shell) WorkspaceFor(id WindowID) (*Workspace, bool) {
	ws, _, found := sh.workspaceOf(id)
	return ws, found
}

// WorkspaceSetFor returns the workspace set of the named output.
func (sh *Shell) WorkspaceSetFor(name string) (*WorkspaceSet, bool) {
	wset, ok := sh.wsets[name]
	return wset, ok
}

// Window returns the window with the given identity, mapped or pending.
func (sh *Shell) Window(id WindowID) *Window { return sh.store.get(id) }

// FindWindow resolves a surface to its mapped window. Pending windows are
// not found.
func (sh *Shell) FindWindow(surface SurfaceID) *Window {
	w := sh.store.findBySurface(surface)
	if w == nil {
		return nil
	}
	if _, pending := sh.pendingWindows[w.ID()]; pending {
		return nil
	}
	return w
}

// FindWindowAndOutput resolves a surface to its mapped window and the output
// the window sits on.
func (sh *Shell) FindWindowAndOutput(surface SurfaceID) (*Window, *Output) {
	w := sh.FindWindow(surface)
	if w == nil {
		return nil, nil
	}
	_, output, found := sh.workspaceOf(w.ID())
	if !found {
		return w, nil
	}
	return w, output
}

// VisibleOutputForSurface finds the output a surface is currently presented
// on: layer surfaces live on their own output, windows on the output whose
// active workspace shows them.
func (sh *Shell) VisibleOutputForSurface(surface SurfaceID) (*Output, bool) {
	for _, o := range sh.outputs {
		if sh.layers[o.Name()].find(surface) != nil {
			return o, true
		}
	}
	for _, p := range sh.pendingLayers {
		if p.layer.Surface() == surface {
			return p.output, true
		}
	}
	w := sh.FindWindow(surface)
	if w == nil {
		return nil, false
	}
	ws, output, found := sh.workspaceOf(w.ID())
	if !found {
		return nil, false
	}
	if sh.wsets[output.Name()].Active() != ws {
		return nil, false
	}
	return output, true
}

// VisibleOutputsForWindow returns every output whose geometry the window's
// geometry intersects.
func (sh *Shell) VisibleOutputsForWindow(id WindowID) []*Output {
	w := sh.store.get(id)
	if w == nil {
		return nil
	}
	var visible []*Output
	for _, o := range sh.outputs {
		if o.Geometry().Intersects(w.Geometry()) {
			visible = append(visible, o)
		}
	}
	return visible
}

// VisibleWindowsForOutput returns the windows the output currently shows.
// During a workspace switch both straddled rows contribute; a workspace
// holding a fullscreen slot shows only the slot window.
func (sh *Shell) VisibleWindowsForOutput(output *Output) []WindowID {
	wset, ok := sh.wsets[output.Name()]
	if !ok {
		return nil
	}
	var visible []WindowID
	for _, idx := range wset.visibleIndices() {
		ws := wset.WorkspaceAt(idx)
		if id, held := ws.FullscreenWindow(); held {
			visible = append(visible, id)
			continue
		}
		visible = append(visible, ws.Windows()...)
	}
	return visible
}

// SwitchWorkspace starts a switch to the given row on the focused output.
func (sh *Shell) SwitchWorkspace(idx int, now time.Time) {
	output := sh.focus.Output
	if output == nil {
		sh.log.Warn().Msg("workspace switch with no focused output")
		return
	}
	wset := sh.wsets[output.Name()]
	before := wset.ActiveIdx()
	wset.SetActive(idx, now, sh.opts.WorkspaceSwitch)
	if wset.ActiveIdx() == before {
		return
	}
	sh.focusTopOf(wset.Active())
	sh.metrics.RecordWorkspaceSwitch()
	sh.log.Debug().Str("output", output.Name()).Int("workspace", wset.ActiveIdx()).Msg("workspace switched")
}

// AdvanceAnimations steps every in-flight animation to now. The external
// frame scheduler calls this once per frame.
func (sh *Shell) AdvanceAnimations(now time.Time) {
	for _, o := range sh.outputs {
		if sh.wsets[o.Name()].advanceAnimations(now) {
			sh.metrics.RecordAnimationFrame()
		}
	}
}

// LayerSurfaceConfig describes a layer surface at creation time.
type LayerSurfaceConfig struct {
	Surface   SurfaceID
	Client    ClientID
	Output    string // empty means the focused output
	Level     LayerLevel
	Anchor    Anchor
	Thickness int
	Exclusive bool
	// Geometry is the output-local rect used by AnchorNone surfaces.
	Geometry geometry.Rect
}

// CreateLayerSurface registers a layer surface; it stays pending until
// mapped. With no output to pin it to the surface is dropped.
func (sh *Shell) CreateLayerSurface(cfg LayerSurfaceConfig) {
	output := sh.focus.Output
	if cfg.Output != "" {
		output = sh.outputByName(cfg.Output)
	}
	if output == nil {
		sh.log.Warn().Uint64("surface", uint64(cfg.Surface)).Str("output", cfg.Output).Msg("layer surface has no output, dropping")
		return
	}
	l := &LayerSurface{
		surface:   cfg.Surface,
		client:    cfg.Client,
		level:     cfg.Level,
		anchor:    cfg.Anchor,
		thickness: cfg.Thickness,
		exclusive: cfg.Exclusive,
		geometry:  cfg.Geometry,
	}
	sh.pendingLayers = append(sh.pendingLayers, &pendingLayer{layer: l, output: output})
}

// MapLayerSurface moves a pending layer surface onto its output and
// re-arranges it. Mapping an unknown surface is a warning and a no-op.
func (sh *Shell) MapLayerSurface(surface SurfaceID) {
	for i, p := range sh.pendingLayers {
		if p.layer.Surface() != surface {
			continue
		}
		sh.pendingLayers = append(sh.pendingLayers[:i], sh.pendingLayers[i+1:]...)
		sh.layers[p.output.Name()].add(p.layer)
		sh.arrangeOutput(p.output)
		return
	}
	sh.log.Warn().Uint64("surface", uint64(surface)).Msg("map requested for a layer surface that is not pending")
}

// RemoveLayerSurface drops a layer surface, pending or mapped, releasing
// focus and usable area it held.
func (sh *Shell) RemoveLayerSurface(surface SurfaceID) {
	for i, p := range sh.pendingLayers {
		if p.layer.Surface() == surface {
			sh.pendingLayers = append(sh.pendingLayers[:i], sh.pendingLayers[i+1:]...)
			return
		}
	}
	for _, o := range sh.outputs {
		if sh.layers[o.Name()].remove(surface) {
			if t, isLayer := sh.focus.Target.(LayerTarget); isLayer && t.Surface == surface {
				sh.setFocus(nil)
			}
			sh.arrangeOutput(o)
			return
		}
	}
}
