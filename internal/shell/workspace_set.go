package shell

import (
	"math"
	"time"

	"github.com/nnyyxxxx/fht-compositor/internal/animation"
	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
)

// SwitchAnimation slides the workspace strip toward Target. The animation
// value is the visual row coordinate, so retargeting mid-flight can resume
// from wherever the strip currently sits.
type SwitchAnimation struct {
	Target int
	anim   *animation.Animation
}

// WorkspaceSet is the per-output strip of workspaces. Exactly one is active;
// during a switch the target workspace already answers logical queries while
// the strip animates toward it.
type WorkspaceSet struct {
	store      *windowStore
	output     *Output
	workspaces []*Workspace
	active     int
	switchAnim *SwitchAnimation
}

func newWorkspaceSet(store *windowStore, output *Output, count int) *WorkspaceSet {
	if count < 1 {
		count = 1
	}
	set := &WorkspaceSet{store: store, output: output}
	for i := 0; i < count; i++ {
		set.workspaces = append(set.workspaces, newWorkspace(store, output, i))
	}
	return set
}

// Workspaces returns the strip in row order.
func (s *WorkspaceSet) Workspaces() []*Workspace { return s.workspaces }

// WorkspaceAt returns the workspace at idx, or nil when out of range.
func (s *WorkspaceSet) WorkspaceAt(idx int) *Workspace {
	if idx < 0 || idx >= len(s.workspaces) {
		return nil
	}
	return s.workspaces[idx]
}

// ActiveIdx returns the logically active row: the switch target while a
// switch is in flight, the settled row otherwise.
func (s *WorkspaceSet) ActiveIdx() int {
	if s.switchAnim != nil {
		return s.switchAnim.Target
	}
	return s.active
}

// Active returns the logically active workspace.
func (s *WorkspaceSet) Active() *Workspace {
	return s.workspaces[s.ActiveIdx()]
}

// SetActive switches the strip to idx, clamped into range. Switching to the
// current row (or to the row already being animated to) is a no-op. When the
// switch animation is disabled the row commits immediately.
func (s *WorkspaceSet) SetActive(idx int, now time.Time, opts SwitchAnimationOptions) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.workspaces) {
		idx = len(s.workspaces) - 1
	}
	if s.switchAnim != nil && s.switchAnim.Target == idx {
		return
	}
	if s.switchAnim == nil && idx == s.active {
		return
	}

	if !opts.Enable || opts.Duration <= 0 || opts.Curve == nil {
		s.commit(idx)
		return
	}

	start := float64(s.active)
	if s.switchAnim != nil {
		s.switchAnim.anim.SetCurrentTime(now)
		start = s.switchAnim.anim.Value()
	}
	end := float64(idx)
	if start == end {
		s.commit(idx)
		return
	}
	s.switchAnim = &SwitchAnimation{
		Target: idx,
		anim:   animation.NewAt(now, start, end, opts.Curve, opts.Duration),
	}
}

func (s *WorkspaceSet) commit(idx int) {
	s.active = idx
	s.switchAnim = nil
}

// advanceAnimations steps the switch animation to now, committing the target
// row when it finishes. Reports whether an animation consumed the frame.
func (s *WorkspaceSet) advanceAnimations(now time.Time) bool {
	if s.switchAnim == nil {
		return false
	}
	s.switchAnim.anim.SetCurrentTime(now)
	if s.switchAnim.anim.IsFinished() {
		s.commit(s.switchAnim.Target)
	}
	return true
}

// SwitchProgress returns the visual row coordinate of the strip and whether
// a switch is in flight. Settled strips sit exactly on the active row.
func (s *WorkspaceSet) SwitchProgress() (float64, bool) {
	if s.switchAnim == nil {
		return float64(s.active), false
	}
	return s.switchAnim.anim.Value(), true
}

// visibleIndices returns the rows the strip currently shows: one row when
// settled, the two rows straddled by the strip while it slides.
func (s *WorkspaceSet) visibleIndices() []int {
	v, animating := s.SwitchProgress()
	if !animating {
		return []int{s.active}
	}
	lo := int(math.Floor(v))
	if lo < 0 {
		lo = 0
	}
	if lo >= len(s.workspaces) {
		lo = len(s.workspaces) - 1
	}
	if v == float64(lo) || lo+1 >= len(s.workspaces) {
		return []int{lo}
	}
	return []int{lo, lo + 1}
}

// workspaceContaining finds the row holding the window.
func (s *WorkspaceSet) workspaceContaining(id WindowID) (*Workspace, bool) {
	for _, ws := range s.workspaces {
		if ws.Contains(id) {
			return ws, true
		}
	}
	return nil, false
}

// arrange retiles every row into the usable area and returns all windows
// whose geometry changed.
func (s *WorkspaceSet) arrange(usable geometry.Rect, gaps geometry.Gaps, masterFactor float64) []WindowID {
	var changed []WindowID
	for _, ws := range s.workspaces {
		changed = append(changed, ws.arrange(usable, gaps, masterFactor)...)
	}
	return changed
}
