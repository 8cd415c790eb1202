// Package metrics aggregates counters describing shell activity. Collection
// is opt-in; a nil collector is valid and records nothing.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Collector accumulates shell activity counters.
type Collector struct {
	mu      sync.RWMutex
	enabled bool
	started time.Time
	totals  Totals
	apps    map[string]*AppMetrics
}

// Totals aggregates counters across the whole shell.
type Totals struct {
	WindowsMapped     uint64 `json:"windowsMapped"`
	WindowsClosed     uint64 `json:"windowsClosed"`
	FocusChanges      uint64 `json:"focusChanges"`
	WorkspaceSwitches uint64 `json:"workspaceSwitches"`
	GrabsStarted      uint64 `json:"grabsStarted"`
	GrabsCompleted    uint64 `json:"grabsCompleted"`
	PopupsConstrained uint64 `json:"popupsConstrained"`
	AnimationFrames   uint64 `json:"animationFrames"`
}

// AppMetrics captures per-app-id mapping counters.
type AppMetrics struct {
	AppID      string    `json:"appId"`
	Mapped     uint64    `json:"mapped"`
	LastMapped time.Time `json:"lastMapped,omitempty"`
}

// Snapshot is the serializable view of the current metrics state.
type Snapshot struct {
	Enabled bool         `json:"enabled"`
	Started time.Time    `json:"started,omitempty"`
	Totals  Totals       `json:"totals"`
	Apps    []AppMetrics `json:"apps,omitempty"`
}

// NewCollector returns a collector with the provided opt-in state.
func NewCollector(enabled bool) *Collector {
	c := &Collector{}
	c.SetEnabled(enabled)
	return c
}

// Enabled reports whether collection is currently active.
func (c *Collector) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles collection, resetting counters when enabling.
func (c *Collector) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.totals = Totals{}
		c.apps = nil
		c.started = time.Time{}
		return
	}
	c.started = time.Now()
	c.apps = make(map[string]*AppMetrics)
}

// RecordMap counts a mapped window under its app id.
func (c *Collector) RecordMap(appID string) {
	c.update(func(now time.Time) {
		c.totals.WindowsMapped++
		if c.apps == nil {
			c.apps = make(map[string]*AppMetrics)
		}
		app, exists := c.apps[appID]
		if !exists {
			app = &AppMetrics{AppID: appID}
			c.apps[appID] = app
		}
		app.Mapped++
		app.LastMapped = now
	})
}

// RecordClose counts a closed window.
func (c *Collector) RecordClose() {
	c.update(func(time.Time) { c.totals.WindowsClosed++ })
}

// RecordFocusChange counts a keyboard focus move.
func (c *Collector) RecordFocusChange() {
	c.update(func(time.Time) { c.totals.FocusChanges++ })
}

// RecordWorkspaceSwitch counts an active workspace change.
func (c *Collector) RecordWorkspaceSwitch() {
	c.update(func(time.Time) { c.totals.WorkspaceSwitches++ })
}

// RecordGrabStart counts an installed move grab.
func (c *Collector) RecordGrabStart() {
	c.update(func(time.Time) { c.totals.GrabsStarted++ })
}

// RecordGrabEnd counts a released move grab.
func (c *Collector) RecordGrabEnd() {
	c.update(func(time.Time) { c.totals.GrabsCompleted++ })
}

// RecordPopupConstrained counts a popup run through the constraint solver.
func (c *Collector) RecordPopupConstrained() {
	c.update(func(time.Time) { c.totals.PopupsConstrained++ })
}

// RecordAnimationFrame counts one advance of the animation clock.
func (c *Collector) RecordAnimationFrame() {
	c.update(func(time.Time) { c.totals.AnimationFrames++ })
}

func (c *Collector) update(mutate func(time.Time)) {
	if c == nil || mutate == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	mutate(now)
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Enabled: c.enabled}
	if !c.enabled {
		return snap
	}
	snap.Started = c.started
	snap.Totals = c.totals
	if len(c.apps) == 0 {
		return snap
	}
	snap.Apps = make([]AppMetrics, 0, len(c.apps))
	for _, app := range c.apps {
		if app == nil {
			continue
		}
		snap.Apps = append(snap.Apps, *app)
	}
	sort.Slice(snap.Apps, func(i, j int) bool {
		return snap.Apps[i].AppID < snap.Apps[j].AppID
	})
	return snap
}
