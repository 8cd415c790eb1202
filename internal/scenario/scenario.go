// Package scenario scripts shell sessions: a YAML file declares the outputs
// present at startup and a list of timestamped events to replay against a
// shell. Drivers use it for end-to-end runs and benchmarks.
package scenario

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

// Scenario is a scripted session.
type Scenario struct {
	Outputs []Output `yaml:"outputs"`
	Events  []Event  `yaml:"events"`
}

// Output describes one output present when the session starts.
type Output struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func (o *Output) validate() error {
	if o.Name == "" {
		return fmt.Errorf("output needs a name")
	}
	if o.Width < 1 || o.Height < 1 {
		return fmt.Errorf("output %s needs positive dimensions, got %dx%d", o.Name, o.Width, o.Height)
	}
	return nil
}

// Rect returns the output geometry in global logical coordinates.
func (o *Output) Rect() geometry.Rect {
	return geometry.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// Event carries exactly one action. AtMs places it on the scenario clock,
// relative to the start of the run.
type Event struct {
	AtMs int `yaml:"atMs"`

	CreateWindow    *CreateWindowEvent    `yaml:"createWindow"`
	MapWindow       *SurfaceEvent         `yaml:"mapWindow"`
	CloseWindow     *SurfaceEvent         `yaml:"closeWindow"`
	Raise           *SurfaceEvent         `yaml:"raise"`
	Fullscreen      *FullscreenEvent      `yaml:"fullscreen"`
	SwitchWorkspace *SwitchWorkspaceEvent `yaml:"switchWorkspace"`
	PointerMotion   *PointerMotionEvent   `yaml:"pointerMotion"`
	PointerButton   *PointerButtonEvent   `yaml:"pointerButton"`
	MoveRequest     *MoveRequestEvent     `yaml:"moveRequest"`
	AddOutput       *Output               `yaml:"addOutput"`
	RemoveOutput    *RemoveOutputEvent    `yaml:"removeOutput"`
	ResizeOutput    *Output               `yaml:"resizeOutput"`
	LayerSurface    *LayerSurfaceEvent    `yaml:"layerSurface"`
	RemoveLayer     *SurfaceEvent         `yaml:"removeLayer"`
	Popup           *PopupEvent           `yaml:"popup"`
}

// CreateWindowEvent announces a new toplevel surface.
type CreateWindowEvent struct {
	Surface uint64 `yaml:"surface"`
	Client  uint32 `yaml:"client"`
	Title   string `yaml:"title"`
	AppID   string `yaml:"appId"`
}

// SurfaceEvent names a surface created earlier in the scenario.
type SurfaceEvent struct {
	Surface uint64 `yaml:"surface"`
}

// FullscreenEvent toggles the fullscreen state of a mapped window.
type FullscreenEvent struct {
	Surface uint64 `yaml:"surface"`
	Enable  bool   `yaml:"enable"`
}

// SwitchWorkspaceEvent activates a workspace row on the focused output.
type SwitchWorkspaceEvent struct {
	Index int `yaml:"index"`
}

// PointerMotionEvent moves the pointer to an absolute position.
type PointerMotionEvent struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PointerButtonEvent presses or releases a pointer button.
type PointerButtonEvent struct {
	Pressed bool   `yaml:"pressed"`
	Serial  uint32 `yaml:"serial"`
}

// MoveRequestEvent asks for an interactive move of a window.
type MoveRequestEvent struct {
	Surface uint64 `yaml:"surface"`
	Serial  uint32 `yaml:"serial"`
}

// RemoveOutputEvent unplugs an output by name.
type RemoveOutputEvent struct {
	Name string `yaml:"name"`
}

// LayerSurfaceEvent creates and maps a layer surface in one step.
type LayerSurfaceEvent struct {
	Surface   uint64 `yaml:"surface"`
	Client    uint32 `yaml:"client"`
	Output    string `yaml:"output"`
	Level     string `yaml:"level"`
	Anchor    string `yaml:"anchor"`
	Thickness int    `yaml:"thickness"`
	Exclusive bool   `yaml:"exclusive"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
}

// PopupEvent registers a popup and runs it through the constraint solver.
// The rectangle is the popup's desired parent-relative placement.
type PopupEvent struct {
	Surface uint64 `yaml:"surface"`
	Client  uint32 `yaml:"client"`
	Parent  uint64 `yaml:"parent"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

func (e *Event) validate() error {
	if e.AtMs < 0 {
		return fmt.Errorf("atMs cannot be negative")
	}
	actions := 0
	for _, set := range []bool{
		e.CreateWindow != nil,
		e.MapWindow != nil,
		e.CloseWindow != nil,
		e.Raise != nil,
		e.Fullscreen != nil,
		e.SwitchWorkspace != nil,
		e.PointerMotion != nil,
		e.PointerButton != nil,
		e.MoveRequest != nil,
		e.AddOutput != nil,
		e.RemoveOutput != nil,
		e.ResizeOutput != nil,
		e.LayerSurface != nil,
		e.RemoveLayer != nil,
		e.Popup != nil,
	} {
		if set {
			actions++
		}
	}
	if actions == 0 {
		return fmt.Errorf("event has no action")
	}
	if actions > 1 {
		return fmt.Errorf("event has %d actions, want exactly one", actions)
	}
	switch {
	case e.AddOutput != nil:
		return e.AddOutput.validate()
	case e.ResizeOutput != nil:
		return e.ResizeOutput.validate()
	case e.RemoveOutput != nil:
		if e.RemoveOutput.Name == "" {
			return fmt.Errorf("removeOutput needs a name")
		}
	case e.SwitchWorkspace != nil:
		if e.SwitchWorkspace.Index < 0 {
			return fmt.Errorf("switchWorkspace.index cannot be negative")
		}
	case e.LayerSurface != nil:
		if _, err := parseLayerLevel(e.LayerSurface.Level); err != nil {
			return err
		}
		if _, err := parseAnchor(e.LayerSurface.Anchor); err != nil {
			return err
		}
	case e.Popup != nil:
		if e.Popup.Width < 1 || e.Popup.Height < 1 {
			return fmt.Errorf("popup needs positive dimensions, got %dx%d", e.Popup.Width, e.Popup.Height)
		}
	}
	return nil
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates raw scenario bytes. Events come back sorted by
// timestamp, creation order preserved within one timestamp.
func Parse(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i := range sc.Outputs {
		if err := sc.Outputs[i].validate(); err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
	}
	for i := range sc.Events {
		if err := sc.Events[i].validate(); err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	sort.SliceStable(sc.Events, func(i, j int) bool {
		return sc.Events[i].AtMs < sc.Events[j].AtMs
	})
	return &sc, nil
}

func parseLayerLevel(s string) (shell.LayerLevel, error) {
	switch s {
	case "background":
		return shell.LayerBackground, nil
	case "bottom":
		return shell.LayerBottom, nil
	case "top":
		return shell.LayerTop, nil
	case "overlay":
		return shell.LayerOverlay, nil
	}
	return 0, fmt.Errorf("unknown layer level %q", s)
}

func parseAnchor(s string) (shell.Anchor, error) {
	switch s {
	case "", "none":
		return shell.AnchorNone, nil
	case "top":
		return shell.AnchorTop, nil
	case "bottom":
		return shell.AnchorBottom, nil
	case "left":
		return shell.AnchorLeft, nil
	case "right":
		return shell.AnchorRight, nil
	}
	return 0, fmt.Errorf("unknown anchor %q", s)
}
