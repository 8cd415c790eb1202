package shell

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
)

func testClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

type fakeTransport struct {
	configured []SurfaceID
	refs       map[ClientID]map[string][]OutputRef
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{refs: make(map[ClientID]map[string][]OutputRef)}
}

func (tr *fakeTransport) SendConfigure(surface SurfaceID) {
	tr.configured = append(tr.configured, surface)
}

func (tr *fakeTransport) ClientOutputs(client ClientID, output *Output) []OutputRef {
	return tr.refs[client][output.Name()]
}

func (tr *fakeTransport) bind(client ClientID, output string, ref OutputRef) {
	if tr.refs[client] == nil {
		tr.refs[client] = make(map[string][]OutputRef)
	}
	tr.refs[client][output] = append(tr.refs[client][output], ref)
}

func (tr *fakeTransport) configures(surface SurfaceID) int {
	n := 0
	for _, s := range tr.configured {
		if s == surface {
			n++
		}
	}
	return n
}

func testOptions() Options {
	return Options{
		FocusNewWindows:   true,
		WorkspaceCount:    9,
		MasterWidthFactor: 0.55,
	}
}

func newTestShell(t *testing.T, opts Options) (*Shell, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	return New(zerolog.Nop(), tr, opts), tr
}

func addTestOutput(t *testing.T, sh *Shell, name string, geo geometry.Rect) *Output {
	t.Helper()
	o := NewOutput(name, geo)
	sh.AddOutput(o)
	return o
}

func mapTestWindow(t *testing.T, sh *Shell, surface SurfaceID, client ClientID, title, appID string) *Window {
	t.Helper()
	w := sh.CreateWindow(surface, client, title, appID)
	sh.MapWindow(w.ID())
	return w
}

func TestFirstOutputBecomesFocused(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	a := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})

	if sh.FocusedOutput() != a {
		t.Fatalf("expected DP-1 to hold focus, got %v", sh.FocusedOutput())
	}
}

func TestDuplicateOutputIsIgnored(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 800, Height: 600})

	if len(sh.Outputs()) != 1 {
		t.Fatalf("expected 1 output, got %d", len(sh.Outputs()))
	}
	if got := sh.Outputs()[0].Geometry(); got.Width != 1920 {
		t.Fatalf("expected the first registration to survive, got %+v", got)
	}
}

func TestWindowsCreatedWithoutOutputsMapOnFirstOutput(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	a := sh.CreateWindow(1, 1, "one", "app.one")
	b := sh.CreateWindow(2, 1, "two", "app.two")
	sh.MapWindow(a.ID())
	sh.MapWindow(b.ID())
	if sh.FindWindow(1) != nil {
		t.Fatal("window mapped with no output available")
	}

	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	ws := sh.wsets[out.Name()].Active()
	want := []WindowID{a.ID(), b.ID()}
	if diff := cmp.Diff(want, ws.Windows()); diff != "" {
		t.Fatalf("stranded windows not mapped in creation order (-want +got):\n%s", diff)
	}
}

func TestRemoveOutputMigratesWindows(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})

	a := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	sh.focus.Output = sh.outputByName("DP-2")
	b := mapTestWindow(t, sh, 2, 1, "two", "app.two")
	c := mapTestWindow(t, sh, 3, 1, "three", "app.three")
	sh.SetWindowFullscreen(c.ID(), true)

	sh.RemoveOutput("DP-2")

	ws := sh.wsets["DP-1"].Active()
	want := []WindowID{a.ID(), b.ID(), c.ID()}
	if diff := cmp.Diff(want, ws.Windows()); diff != "" {
		t.Fatalf("migrated stack mismatch (-want +got):\n%s", diff)
	}
	if c.Fullscreen() {
		t.Fatal("slot window should be restored before migrating")
	}
	if sh.FocusedOutput().Name() != "DP-1" {
		t.Fatalf("expected focus to move to DP-1, got %s", sh.FocusedOutput().Name())
	}
}

func TestRemoveLastOutputParksWindows(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	sh.RemoveOutput("DP-1")

	if sh.FocusedOutput() != nil || sh.FocusedTarget() != nil {
		t.Fatal("focus must clear with the last output")
	}
	if sh.FindWindow(1) != nil {
		t.Fatal("parked window must not resolve as mapped")
	}

	addTestOutput(t, sh, "DP-3", geometry.Rect{Width: 800, Height: 600})
	if got := sh.FindWindow(1); got == nil || got.ID() != w.ID() {
		t.Fatal("parked window should map again on the next output")
	}
}

func TestCloseWindowRepairsFocus(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	a := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	b := mapTestWindow(t, sh, 2, 1, "two", "app.two")

	if sh.FocusedTarget() != (WindowTarget{ID: b.ID()}) {
		t.Fatalf("expected focus on the newest window, got %v", sh.FocusedTarget())
	}
	sh.CloseWindow(b.ID())
	if sh.FocusedTarget() != (WindowTarget{ID: a.ID()}) {
		t.Fatalf("expected focus to fall back to %v, got %v", a.ID(), sh.FocusedTarget())
	}
	sh.CloseWindow(a.ID())
	if sh.FocusedTarget() != nil {
		t.Fatalf("expected focus to clear, got %v", sh.FocusedTarget())
	}
}

func TestCloseUnknownWindowIsNoOp(t *testing.T) {
	sh, tr := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	before := len(tr.configured)

	sh.CloseWindow(WindowID(42))

	if len(tr.configured) != before {
		t.Fatal("closing an unknown window must not touch clients")
	}
}

func TestVisibleOutputForSurface(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	out, ok := sh.VisibleOutputForSurface(w.Surface())
	if !ok || out.Name() != "DP-1" {
		t.Fatalf("expected DP-1, got %v %v", out, ok)
	}

	// A window on an inactive workspace is not visible.
	sh.SwitchWorkspace(3, testClock())
	if _, ok := sh.VisibleOutputForSurface(w.Surface()); ok {
		t.Fatal("window on an inactive workspace reported visible")
	}

	sh.CreateLayerSurface(LayerSurfaceConfig{
		Surface: 7, Client: 2, Output: "DP-2",
		Level: LayerTop, Anchor: AnchorTop, Thickness: 30, Exclusive: true,
	})
	if out, ok := sh.VisibleOutputForSurface(7); !ok || out.Name() != "DP-2" {
		t.Fatalf("pending layer surface should resolve to DP-2, got %v %v", out, ok)
	}
	sh.MapLayerSurface(7)
	if out, ok := sh.VisibleOutputForSurface(7); !ok || out.Name() != "DP-2" {
		t.Fatalf("mapped layer surface should resolve to DP-2, got %v %v", out, ok)
	}
}

func TestVisibleOutputsForWindowSpansOutputs(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	w.SetGeometry(geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300})
	outputs := sh.VisibleOutputsForWindow(w.ID())
	if len(outputs) != 2 {
		t.Fatalf("expected the window to straddle 2 outputs, got %d", len(outputs))
	}

	w.SetGeometry(geometry.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	outputs = sh.VisibleOutputsForWindow(w.ID())
	if len(outputs) != 1 || outputs[0].Name() != "DP-1" {
		t.Fatalf("expected only DP-1, got %v", outputs)
	}
}

func TestVisibleWindowsShortCircuitOnFullscreen(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	a := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	b := mapTestWindow(t, sh, 2, 1, "two", "app.two")

	visible := sh.VisibleWindowsForOutput(out)
	if diff := cmp.Diff([]WindowID{a.ID(), b.ID()}, visible); diff != "" {
		t.Fatalf("visible windows mismatch (-want +got):\n%s", diff)
	}

	sh.SetWindowFullscreen(b.ID(), true)
	visible = sh.VisibleWindowsForOutput(out)
	if diff := cmp.Diff([]WindowID{b.ID()}, visible); diff != "" {
		t.Fatalf("fullscreen slot must hide the rest (-want +got):\n%s", diff)
	}
}

func TestExclusiveLayerShrinksTiling(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1000, Height: 600})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	sh.CreateLayerSurface(LayerSurfaceConfig{
		Surface: 5, Client: 2,
		Level: LayerTop, Anchor: AnchorTop, Thickness: 40, Exclusive: true,
	})
	sh.MapLayerSurface(5)

	want := geometry.Rect{X: 0, Y: 40, Width: 1000, Height: 560}
	if got := w.Geometry(); got != want {
		t.Fatalf("expected the bar to carve the usable area, want %+v got %+v", want, got)
	}

	sh.RemoveLayerSurface(5)
	want = geometry.Rect{X: 0, Y: 0, Width: 1000, Height: 600}
	if got := w.Geometry(); got != want {
		t.Fatalf("expected the full output back, want %+v got %+v", want, got)
	}
}

func TestResizeOutputRetiles(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1000, Height: 600})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	sh.ResizeOutput("DP-1", geometry.Rect{Width: 800, Height: 480})

	want := geometry.Rect{Width: 800, Height: 480}
	if got := w.Geometry(); got != want {
		t.Fatalf("expected retile to %+v, got %+v", want, got)
	}
}
