package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/metrics"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newReloaderFixture(t *testing.T, initial string) (*configReloader, *shell.Shell, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "compositor.yaml")
	writeFile(t, path, initial)

	cfg, err := config.Parse([]byte(initial))
	if err != nil {
		t.Fatalf("parse initial config: %v", err)
	}
	compiled, err := rules.FromConfig(cfg.WindowRules)
	if err != nil {
		t.Fatalf("compile initial rules: %v", err)
	}

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	collector := metrics.NewCollector(false)
	sh := shell.New(logger, newLogTransport(zerolog.Nop()), shellOptions(cfg, collector))
	sh.SetRules(compiled)
	sh.AddOutput(shell.NewOutput("DP-1", geometry.Rect{Width: 1920, Height: 1080}))

	return newConfigReloader(path, logger, sh, collector, []byte(initial)), sh, &logs, path
}

func mapDriverWindow(t *testing.T, sh *shell.Shell, surface uint64, appID string) *shell.Window {
	t.Helper()
	w := sh.CreateWindow(shell.SurfaceID(surface), 1, appID, appID)
	sh.MapWindow(w.ID())
	return w
}

func TestReloadRejectsBadConfigAndKeepsLayout(t *testing.T) {
	initial := `
general:
  masterWidthFactor: 0.6
`
	bad := `
general:
  masterWidthFactor: 5.0
`
	reloader, sh, logs, path := newReloaderFixture(t, initial)

	master := mapDriverWindow(t, sh, 1, "editor")
	mapDriverWindow(t, sh, 2, "terminal")
	if got := master.Geometry().Width; got != 1152 {
		t.Fatalf("master width before reload = %d, want 1152", got)
	}

	writeFile(t, path, bad)
	err := reloader.Reload("test reason")
	if err == nil {
		t.Fatalf("expected reload error, got nil")
	}
	if !strings.Contains(err.Error(), "masterWidthFactor") {
		t.Fatalf("expected masterWidthFactor error, got %v", err)
	}
	if !strings.Contains(logs.String(), "config change rejected") {
		t.Fatalf("expected rejection diff in logs, got %s", logs.String())
	}
	if got := master.Geometry().Width; got != 1152 {
		t.Fatalf("master width after failed reload = %d, want 1152", got)
	}
}

func TestReloadAppliesRulesAndRetiles(t *testing.T) {
	initial := `
general:
  focusNewWindows: true
`
	updated := `
general:
  focusNewWindows: true
  gaps:
    outer: 16
windowRules:
  - match:
      appId: scratchpad
    floating: true
`
	reloader, sh, logs, path := newReloaderFixture(t, initial)

	w := mapDriverWindow(t, sh, 1, "editor")
	if got, want := w.Geometry(), (geometry.Rect{Width: 1920, Height: 1080}); got != want {
		t.Fatalf("window before reload = %+v, want %+v", got, want)
	}

	writeFile(t, path, updated)
	if err := reloader.Reload("test reason"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.Contains(logs.String(), "config applied") {
		t.Fatalf("expected apply log, got %s", logs.String())
	}

	if got, want := w.Geometry(), (geometry.Rect{X: 16, Y: 16, Width: 1888, Height: 1048}); got != want {
		t.Fatalf("window after reload = %+v, want %+v", got, want)
	}

	pad := mapDriverWindow(t, sh, 2, "scratchpad")
	if !pad.Floating() {
		t.Fatalf("expected the new rule to float scratchpad windows")
	}
}

func TestReloadKeepsRulesWhenFileDisappears(t *testing.T) {
	initial := `
windowRules:
  - match:
      appId: scratchpad
    floating: true
`
	reloader, sh, _, path := newReloaderFixture(t, initial)

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove config: %v", err)
	}
	if err := reloader.Reload("test reason"); err == nil {
		t.Fatalf("expected reload error for a missing file")
	}

	pad := mapDriverWindow(t, sh, 1, "scratchpad")
	if !pad.Floating() {
		t.Fatalf("rules should survive a failed reload")
	}
}
