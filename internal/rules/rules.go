// Package rules decides the initial state of windows as they are mapped.
package rules

import (
	"fmt"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
)

// Window is the view of a window a pattern can match against.
type Window interface {
	Title() string
	AppID() string
}

// Pattern selects windows by exactly one criterion. A workspace criterion
// wins over a title criterion, and a title criterion over an app id: the
// first present field decides alone and the others are ignored. Matches are
// exact string or index equality. A pattern with no criteria matches
// nothing.
type Pattern struct {
	Workspace *int
	Title     *string
	AppID     *string
}

// Matches reports whether the pattern selects w, about to be mapped on the
// workspace at workspaceIdx.
func (p Pattern) Matches(w Window, workspaceIdx int) bool {
	switch {
	case p.Workspace != nil:
		return *p.Workspace == workspaceIdx
	case p.Title != nil:
		return *p.Title == w.Title()
	case p.AppID != nil:
		return *p.AppID == w.AppID()
	default:
		return false
	}
}

// MapSettings is the complete initial state applied to a window when it is
// mapped. A matching rule supplies all of it; fields are never merged
// across rules.
type MapSettings struct {
	Floating   bool
	Fullscreen bool
	// Centered places a floating window at the center of its output.
	Centered bool
	// Output names the output to map on; empty means the focused output.
	Output string
	// Workspace is the index to map on; nil means the active workspace.
	Workspace *int
}

// DefaultMapSettings returns the settings used when no rule matches.
func DefaultMapSettings() MapSettings {
	return MapSettings{Centered: true}
}

// Rule grants settings to every window its pattern selects.
type Rule struct {
	Pattern  Pattern
	Settings MapSettings
}

// ResolveMapSettings walks the rules in configuration order and returns the
// first matching rule's settings wholesale, or the defaults when no rule
// matches.
func ResolveMapSettings(ruleList []Rule, w Window, workspaceIdx int) MapSettings {
	for _, r := range ruleList {
		if r.Pattern.Matches(w, workspaceIdx) {
			return r.Settings
		}
	}
	return DefaultMapSettings()
}

// FromConfig compiles configured window rules into their runtime form.
func FromConfig(rcs []config.WindowRuleConfig) ([]Rule, error) {
	compiled := make([]Rule, 0, len(rcs))
	for i, rc := range rcs {
		if rc.Match.Workspace != nil && *rc.Match.Workspace < 0 {
			return nil, fmt.Errorf("rule %d: negative workspace index %d in match", i, *rc.Match.Workspace)
		}
		if rc.Workspace != nil && *rc.Workspace < 0 {
			return nil, fmt.Errorf("rule %d: negative workspace index %d", i, *rc.Workspace)
		}
		settings := MapSettings{
			Floating:   rc.Floating,
			Fullscreen: rc.Fullscreen,
			Centered:   true,
			Output:     rc.Output,
			Workspace:  rc.Workspace,
		}
		if rc.Centered != nil {
			settings.Centered = *rc.Centered
		}
		compiled = append(compiled, Rule{
			Pattern: Pattern{
				Workspace: rc.Match.Workspace,
				Title:     rc.Match.Title,
				AppID:     rc.Match.AppID,
			},
			Settings: settings,
		})
	}
	return compiled, nil
}
