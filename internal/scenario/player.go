package scenario

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

// Player feeds scenario events into a shell, remembering the window id the
// shell handed back for each created surface.
type Player struct {
	log     zerolog.Logger
	shell   *shell.Shell
	windows map[shell.SurfaceID]shell.WindowID
	next    int
}

// NewPlayer returns a player bound to one shell. A player replays one
// scenario; build a fresh one per run.
func NewPlayer(log zerolog.Logger, sh *shell.Shell) *Player {
	return &Player{
		log:     log,
		shell:   sh,
		windows: make(map[shell.SurfaceID]shell.WindowID),
	}
}

// PlayDue applies every event whose timestamp has passed and reports whether
// the scenario is exhausted. Events must be sorted by AtMs, as Parse leaves
// them.
func (p *Player) PlayDue(events []Event, elapsed time.Duration, now time.Time) bool {
	for p.next < len(events) && time.Duration(events[p.next].AtMs)*time.Millisecond <= elapsed {
		p.Apply(&events[p.next], now)
		p.next++
	}
	return p.next >= len(events)
}

func (p *Player) windowFor(surface uint64) (shell.WindowID, bool) {
	id, ok := p.windows[shell.SurfaceID(surface)]
	if !ok {
		p.log.Warn().Uint64("surface", surface).Msg("scenario references a surface that was never created")
	}
	return id, ok
}

// Apply performs one event against the shell. Events referencing surfaces
// the scenario never created are logged and skipped.
func (p *Player) Apply(e *Event, now time.Time) {
	switch {
	case e.CreateWindow != nil:
		ev := e.CreateWindow
		w := p.shell.CreateWindow(shell.SurfaceID(ev.Surface), shell.ClientID(ev.Client), ev.Title, ev.AppID)
		p.windows[shell.SurfaceID(ev.Surface)] = w.ID()
	case e.MapWindow != nil:
		if id, ok := p.windowFor(e.MapWindow.Surface); ok {
			p.shell.MapWindow(id)
		}
	case e.CloseWindow != nil:
		if id, ok := p.windowFor(e.CloseWindow.Surface); ok {
			p.shell.CloseWindow(id)
			delete(p.windows, shell.SurfaceID(e.CloseWindow.Surface))
		}
	case e.Raise != nil:
		if id, ok := p.windowFor(e.Raise.Surface); ok {
			p.shell.Raise(id)
		}
	case e.Fullscreen != nil:
		if id, ok := p.windowFor(e.Fullscreen.Surface); ok {
			p.shell.SetWindowFullscreen(id, e.Fullscreen.Enable)
		}
	case e.SwitchWorkspace != nil:
		p.shell.SwitchWorkspace(e.SwitchWorkspace.Index, now)
	case e.PointerMotion != nil:
		p.shell.PointerMotion(geometry.PointF{X: e.PointerMotion.X, Y: e.PointerMotion.Y})
	case e.PointerButton != nil:
		p.shell.PointerButton(e.PointerButton.Pressed, shell.Serial(e.PointerButton.Serial))
	case e.MoveRequest != nil:
		if id, ok := p.windowFor(e.MoveRequest.Surface); ok {
			p.shell.HandleMoveRequest(id, shell.Serial(e.MoveRequest.Serial))
		}
	case e.AddOutput != nil:
		p.shell.AddOutput(shell.NewOutput(e.AddOutput.Name, e.AddOutput.Rect()))
	case e.RemoveOutput != nil:
		p.shell.RemoveOutput(e.RemoveOutput.Name)
	case e.ResizeOutput != nil:
		p.shell.ResizeOutput(e.ResizeOutput.Name, e.ResizeOutput.Rect())
	case e.LayerSurface != nil:
		ev := e.LayerSurface
		// Validation already proved these parse.
		level, _ := parseLayerLevel(ev.Level)
		anchor, _ := parseAnchor(ev.Anchor)
		p.shell.CreateLayerSurface(shell.LayerSurfaceConfig{
			Surface:   shell.SurfaceID(ev.Surface),
			Client:    shell.ClientID(ev.Client),
			Output:    ev.Output,
			Level:     level,
			Anchor:    anchor,
			Thickness: ev.Thickness,
			Exclusive: ev.Exclusive,
			Geometry:  geometry.Rect{X: ev.X, Y: ev.Y, Width: ev.Width, Height: ev.Height},
		})
		p.shell.MapLayerSurface(shell.SurfaceID(ev.Surface))
	case e.RemoveLayer != nil:
		p.shell.RemoveLayerSurface(shell.SurfaceID(e.RemoveLayer.Surface))
	case e.Popup != nil:
		ev := e.Popup
		want := geometry.Rect{X: ev.X, Y: ev.Y, Width: ev.Width, Height: ev.Height}
		pop := p.shell.AddPopup(shell.SurfaceID(ev.Surface), shell.ClientID(ev.Client), shell.SurfaceID(ev.Parent), SlidePositioner{Want: want})
		p.shell.UnconstrainPopup(shell.SurfaceID(ev.Surface))
		geo := pop.Geometry()
		p.log.Info().
			Uint64("surface", ev.Surface).
			Int("x", geo.X).Int("y", geo.Y).
			Int("width", geo.Width).Int("height", geo.Height).
			Msg("popup constrained")
	}
}

// SlidePositioner slides the desired rect along both axes until it sits
// inside the target, the way xdg-positioner's slide adjustments do. A rect
// larger than the target pins to the target's top-left edge.
type SlidePositioner struct {
	Want geometry.Rect
}

// UnconstrainedGeometry implements shell.Positioner.
func (s SlidePositioner) UnconstrainedGeometry(target geometry.Rect) geometry.Rect {
	out := s.Want
	if out.X+out.Width > target.X+target.Width {
		out.X = target.X + target.Width - out.Width
	}
	if out.X < target.X {
		out.X = target.X
	}
	if out.Y+out.Height > target.Y+target.Height {
		out.Y = target.Y + target.Height - out.Height
	}
	if out.Y < target.Y {
		out.Y = target.Y
	}
	return out
}
