package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestMapNotPendingIsNoOp(t *testing.T) {
	sh, tr := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	before := len(tr.configured)

	sh.MapWindow(WindowID(42))

	if len(tr.configured) != before {
		t.Fatal("mapping a non-pending window must not configure anything")
	}
	if n := len(sh.wsets[out.Name()].Active().Windows()); n != 0 {
		t.Fatalf("workspace must stay empty, has %d windows", n)
	}
	if sh.FocusedTarget() != nil {
		t.Fatalf("focus must stay clear, got %v", sh.FocusedTarget())
	}
}

func TestMapTwiceIsANoOpSecondTime(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	sh.MapWindow(w.ID())

	if n := len(sh.wsets[out.Name()].Active().Windows()); n != 1 {
		t.Fatalf("expected 1 window after a double map, got %d", n)
	}
}

func TestMapFocusesNewWindow(t *testing.T) {
	sh, tr := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")

	if sh.FocusedTarget() != (WindowTarget{ID: w.ID()}) {
		t.Fatalf("expected focus on the new window, got %v", sh.FocusedTarget())
	}
	if tr.configures(w.Surface()) == 0 {
		t.Fatal("the mapped window never got a configure")
	}
	if w.Floating() {
		t.Fatal("default map settings must tile the window")
	}
}

func TestMapRespectsFocusPolicy(t *testing.T) {
	opts := testOptions()
	opts.FocusNewWindows = false
	sh, _ := newTestShell(t, opts)
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	mapTestWindow(t, sh, 1, 1, "one", "app.one")

	if sh.FocusedTarget() != nil {
		t.Fatalf("focus must not move with the policy off, got %v", sh.FocusedTarget())
	}
}

func TestMapDisplacesFullscreenSlot(t *testing.T) {
	sh, tr := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	a := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	sh.SetWindowFullscreen(a.ID(), true)
	configuresBefore := tr.configures(a.Surface())

	b := mapTestWindow(t, sh, 2, 1, "two", "app.two")

	ws := sh.wsets[out.Name()].Active()
	if _, held := ws.FullscreenWindow(); held {
		t.Fatal("mapping must displace the slot occupant")
	}
	if diff := cmp.Diff([]WindowID{a.ID(), b.ID()}, ws.Windows()); diff != "" {
		t.Fatalf("restored stack mismatch (-want +got):\n%s", diff)
	}
	if a.Fullscreen() {
		t.Fatal("displaced window must not report fullscreen")
	}
	if tr.configures(a.Surface()) <= configuresBefore {
		t.Fatal("displaced window must be told about its restored state")
	}
}

func TestMapFullscreenRuleTakesSlot(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	sh.SetRules([]rules.Rule{{
		Pattern:  rules.Pattern{AppID: strPtr("game")},
		Settings: rules.MapSettings{Fullscreen: true, Centered: true},
	}})

	g1 := mapTestWindow(t, sh, 1, 1, "", "game")
	ws := sh.wsets[out.Name()].Active()
	if id, held := ws.FullscreenWindow(); !held || id != g1.ID() {
		t.Fatalf("expected %v in the slot, got %v %v", g1.ID(), id, held)
	}
	if got := g1.Geometry(); got != out.Geometry() {
		t.Fatalf("slot window must cover the output, got %+v", got)
	}

	g2 := mapTestWindow(t, sh, 2, 1, "", "game")
	if id, _ := ws.FullscreenWindow(); id != g2.ID() {
		t.Fatalf("expected the newcomer to take the slot, got %v", id)
	}
	if diff := cmp.Diff([]WindowID{g1.ID()}, ws.Windows()); diff != "" {
		t.Fatalf("displaced window must rejoin the stack (-want +got):\n%s", diff)
	}
}

func TestMapAdvertisesClientOutputRef(t *testing.T) {
	sh, tr := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	tr.bind(1, "DP-1", 77)
	sh.SetRules([]rules.Rule{{
		Pattern:  rules.Pattern{AppID: strPtr("game")},
		Settings: rules.MapSettings{Fullscreen: true, Centered: true},
	}})

	w := mapTestWindow(t, sh, 1, 1, "", "game")

	ref := w.FullscreenOutput()
	if ref == nil || *ref != 77 {
		t.Fatalf("expected the client's own output handle 77, got %v", ref)
	}

	// A client that never bound the output fullscreens without a handle.
	v := mapTestWindow(t, sh, 2, 2, "", "game")
	if v.FullscreenOutput() != nil {
		t.Fatalf("expected no handle for an unbound client, got %v", v.FullscreenOutput())
	}
}

func TestMapFloatingCenteredRule(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	sh.SetRules([]rules.Rule{{
		Pattern:  rules.Pattern{Title: strPtr("dialog")},
		Settings: rules.MapSettings{Floating: true, Centered: true},
	}})

	w := sh.CreateWindow(1, 1, "dialog", "app.one")
	w.SetGeometry(geometry.Rect{Width: 400, Height: 300})
	sh.MapWindow(w.ID())

	if !w.Floating() {
		t.Fatal("expected a floating window")
	}
	want := geometry.Rect{X: 760, Y: 390, Width: 400, Height: 300}
	if got := w.Geometry(); got != want {
		t.Fatalf("expected the window centered, want %+v got %+v", want, got)
	}
}

func TestMapExplicitWorkspaceClamps(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	out := addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	sh.SetRules([]rules.Rule{
		{
			Pattern:  rules.Pattern{AppID: strPtr("high")},
			Settings: rules.MapSettings{Centered: true, Workspace: intPtr(99)},
		},
		{
			Pattern:  rules.Pattern{AppID: strPtr("low")},
			Settings: rules.MapSettings{Centered: true, Workspace: intPtr(-3)},
		},
	})

	hi := mapTestWindow(t, sh, 1, 1, "", "high")
	lo := mapTestWindow(t, sh, 2, 1, "", "low")

	wset := sh.wsets[out.Name()]
	if !wset.WorkspaceAt(8).Contains(hi.ID()) {
		t.Fatal("expected the over-range index clamped to the last workspace")
	}
	if !wset.WorkspaceAt(0).Contains(lo.ID()) {
		t.Fatal("expected the negative index clamped to the first workspace")
	}
}

func TestMapExplicitOutputRedirect(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})
	sh.SetRules([]rules.Rule{
		{
			Pattern:  rules.Pattern{AppID: strPtr("chat")},
			Settings: rules.MapSettings{Centered: true, Output: "DP-2"},
		},
		{
			Pattern:  rules.Pattern{AppID: strPtr("lost")},
			Settings: rules.MapSettings{Centered: true, Output: "DP-9"},
		},
	})

	chat := mapTestWindow(t, sh, 1, 1, "", "chat")
	if _, out, _ := sh.workspaceOf(chat.ID()); out.Name() != "DP-2" {
		t.Fatalf("expected the window on DP-2, got %s", out.Name())
	}
	if sh.FocusedOutput().Name() != "DP-2" {
		t.Fatal("focus must follow the redirected window")
	}

	sh.focus.Output = sh.outputByName("DP-1")
	lost := mapTestWindow(t, sh, 2, 1, "", "lost")
	if _, out, _ := sh.workspaceOf(lost.ID()); out.Name() != "DP-1" {
		t.Fatalf("an unknown output name must keep the proposed output, got %s", out.Name())
	}
}

func TestMapMatchesRulesAgainstActiveWorkspace(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	sh.SetRules([]rules.Rule{{
		Pattern:  rules.Pattern{Workspace: intPtr(2)},
		Settings: rules.MapSettings{Floating: true, Centered: false},
	}})

	tiled := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	if tiled.Floating() {
		t.Fatal("the rule must not match on workspace 0")
	}

	sh.SwitchWorkspace(2, testClock())
	floating := mapTestWindow(t, sh, 2, 1, "two", "app.two")
	if !floating.Floating() {
		t.Fatal("the rule must match on workspace 2")
	}
}
