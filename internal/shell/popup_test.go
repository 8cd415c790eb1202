package shell

import (
	"testing"

	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
)

type recordingPositioner struct {
	called int
	target geometry.Rect
	result geometry.Rect
}

func (p *recordingPositioner) UnconstrainedGeometry(target geometry.Rect) geometry.Rect {
	p.called++
	p.target = target
	return p.result
}

func TestUnconstrainTargetIsTheOutputUnion(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})
	addTestOutput(t, sh, "DP-2", geometry.Rect{X: 1920, Width: 1920, Height: 1080})

	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	w.SetGeometry(geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300})

	pos := &recordingPositioner{result: geometry.Rect{X: 10, Y: 20, Width: 200, Height: 150}}
	p := sh.AddPopup(5, 1, w.Surface(), pos)
	sh.UnconstrainPopup(5)

	// Both outputs merged, then shifted into the popup's local space.
	want := geometry.Rect{X: -1800, Y: -100, Width: 3840, Height: 1080}
	if pos.target != want {
		t.Fatalf("constraint target: want %+v, got %+v", want, pos.target)
	}
	if p.Geometry() != pos.result {
		t.Fatalf("expected the positioner result committed, got %+v", p.Geometry())
	}
}

func TestUnconstrainNestedPopupSubtractsAncestorOffsets(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	w.SetGeometry(geometry.Rect{X: 200, Y: 100, Width: 800, Height: 600})

	posA := &recordingPositioner{result: geometry.Rect{X: 100, Y: 50, Width: 200, Height: 150}}
	sh.AddPopup(5, 1, w.Surface(), posA)
	sh.UnconstrainPopup(5)

	posB := &recordingPositioner{}
	sh.AddPopup(6, 1, 5, posB)
	sh.UnconstrainPopup(6)

	// The nested popup's space starts at its parent popup's offset; its own
	// offset is not part of the chain.
	want := geometry.Rect{X: -300, Y: -150, Width: 1920, Height: 1080}
	if posB.target != want {
		t.Fatalf("nested constraint target: want %+v, got %+v", want, posB.target)
	}

	// The first-level popup subtracts only the window origin.
	want = geometry.Rect{X: -200, Y: -100, Width: 1920, Height: 1080}
	if posA.target != want {
		t.Fatalf("first-level constraint target: want %+v, got %+v", want, posA.target)
	}
}

func TestUnconstrainOrphanPopupIsSilent(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	pos := &recordingPositioner{}
	sh.AddPopup(5, 1, SurfaceID(99), pos)
	sh.UnconstrainPopup(5)

	if pos.called != 0 {
		t.Fatal("a popup without a window root must not be constrained")
	}
}

func TestUnconstrainWindowOnZeroOutputsIsSilent(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	w := mapTestWindow(t, sh, 1, 1, "one", "app.one")
	w.SetGeometry(geometry.Rect{X: 5000, Y: 5000, Width: 100, Height: 100})

	pos := &recordingPositioner{}
	sh.AddPopup(5, 1, w.Surface(), pos)
	sh.UnconstrainPopup(5)

	if pos.called != 0 {
		t.Fatal("nothing to constrain against when the window is off every output")
	}
}

func TestUnconstrainSurvivesParentCycle(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	addTestOutput(t, sh, "DP-1", geometry.Rect{Width: 1920, Height: 1080})

	posA := &recordingPositioner{}
	posB := &recordingPositioner{}
	sh.AddPopup(5, 1, 6, posA)
	sh.AddPopup(6, 1, 5, posB)

	sh.UnconstrainPopup(5)

	if posA.called != 0 {
		t.Fatal("a cyclic parent chain must not reach the positioner")
	}
}

func TestAddPopupRequiresPositioner(t *testing.T) {
	sh, _ := newTestShell(t, testOptions())
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a nil positioner")
		}
	}()
	sh.AddPopup(5, 1, 1, nil)
}
