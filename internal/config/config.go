package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nnyyxxxx/fht-compositor/internal/animation"
)

// Config is the top-level configuration document.
type Config struct {
	General     GeneralConfig      `yaml:"general"`
	Animations  AnimationsConfig   `yaml:"animations"`
	WindowRules []WindowRuleConfig `yaml:"windowRules"`
}

// UnmarshalYAML fills enabled-by-default sections that the file omits
// entirely.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		General     *GeneralConfig     `yaml:"general"`
		Animations  *AnimationsConfig  `yaml:"animations"`
		WindowRules []WindowRuleConfig `yaml:"windowRules"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.General != nil {
		c.General = *raw.General
	} else {
		c.General = GeneralConfig{FocusNewWindows: true}
	}
	if raw.Animations != nil {
		c.Animations = *raw.Animations
	} else {
		c.Animations = AnimationsConfig{WorkspaceSwitch: AnimationConfig{Enable: true}}
	}
	c.WindowRules = raw.WindowRules
	return nil
}

// GeneralConfig holds behaviour toggles and layout knobs.
type GeneralConfig struct {
	FocusNewWindows   bool       `yaml:"focusNewWindows"`
	WorkspaceCount    int        `yaml:"workspaceCount"`
	MasterWidthFactor float64    `yaml:"masterWidthFactor"`
	Gaps              GapsConfig `yaml:"gaps"`
}

// UnmarshalYAML distinguishes absent booleans from explicit false while
// decoding.
func (g *GeneralConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawGeneral struct {
		FocusNewWindows   *bool      `yaml:"focusNewWindows"`
		WorkspaceCount    int        `yaml:"workspaceCount"`
		MasterWidthFactor float64    `yaml:"masterWidthFactor"`
		Gaps              GapsConfig `yaml:"gaps"`
	}

	var raw rawGeneral
	if err := value.Decode(&raw); err != nil {
		return err
	}

	g.FocusNewWindows = raw.FocusNewWindows == nil || *raw.FocusNewWindows
	g.WorkspaceCount = raw.WorkspaceCount
	g.MasterWidthFactor = raw.MasterWidthFactor
	g.Gaps = raw.Gaps
	return nil
}

// GapsConfig describes inner and outer gaps applied while tiling.
type GapsConfig struct {
	Inner int `yaml:"inner"`
	Outer int `yaml:"outer"`
}

// AnimationsConfig groups per-effect animation settings.
type AnimationsConfig struct {
	WorkspaceSwitch AnimationConfig `yaml:"workspaceSwitch"`
}

// UnmarshalYAML keeps omitted effects enabled with their defaults.
func (a *AnimationsConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawAnimations struct {
		WorkspaceSwitch *AnimationConfig `yaml:"workspaceSwitch"`
	}

	var raw rawAnimations
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.WorkspaceSwitch != nil {
		a.WorkspaceSwitch = *raw.WorkspaceSwitch
	} else {
		a.WorkspaceSwitch = AnimationConfig{Enable: true}
	}
	return nil
}

// AnimationConfig configures one animated effect.
type AnimationConfig struct {
	Enable     bool        `yaml:"enable"`
	DurationMs int         `yaml:"durationMs"`
	Curve      CurveConfig `yaml:"curve"`
}

// UnmarshalYAML treats an absent enable key as enabled.
func (a *AnimationConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawAnimation struct {
		Enable     *bool       `yaml:"enable"`
		DurationMs int         `yaml:"durationMs"`
		Curve      CurveConfig `yaml:"curve"`
	}

	var raw rawAnimation
	if err := value.Decode(&raw); err != nil {
		return err
	}

	a.Enable = raw.Enable == nil || *raw.Enable
	a.DurationMs = raw.DurationMs
	a.Curve = raw.Curve
	return nil
}

// CurveConfig wraps the three shapes a curve can take in a config file: a
// bare easing name, a cubic bezier, or a spring parameter set.
//
//	curve: ease-in-out-cubic
//	curve:
//	  cubic: [0.25, 0.1, 0.25, 1.0]
//	curve:
//	  spring: {damping: 20, stiffness: 250}
type CurveConfig struct {
	Curve animation.Curve
}

// UnmarshalYAML decodes whichever curve shape the node carries.
func (cc *CurveConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		easing, err := animation.ParseEasing(name)
		if err != nil {
			return err
		}
		cc.Curve = animation.Simple{Easing: easing}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Cubic  []float64     `yaml:"cubic"`
			Spring *SpringConfig `yaml:"spring"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		switch {
		case raw.Cubic != nil && raw.Spring != nil:
			return fmt.Errorf("curve cannot be both cubic and spring")
		case raw.Cubic != nil:
			if len(raw.Cubic) != 4 {
				return fmt.Errorf("cubic curve needs [x1, y1, x2, y2], got %d values", len(raw.Cubic))
			}
			cc.Curve = animation.Cubic{X1: raw.Cubic[0], Y1: raw.Cubic[1], X2: raw.Cubic[2], Y2: raw.Cubic[3]}
			return nil
		case raw.Spring != nil:
			cc.Curve = raw.Spring.toCurve()
			return nil
		default:
			return fmt.Errorf("curve mapping must define cubic or spring")
		}
	default:
		return fmt.Errorf("curve must be an easing name or a mapping")
	}
}

// SpringConfig carries spring parameters; absent fields fall back to a
// gently underdamped default.
type SpringConfig struct {
	Damping         *float64 `yaml:"damping"`
	Mass            *float64 `yaml:"mass"`
	Stiffness       *float64 `yaml:"stiffness"`
	Epsilon         *float64 `yaml:"epsilon"`
	InitialVelocity float64  `yaml:"initialVelocity"`
}

func (s *SpringConfig) toCurve() animation.Spring {
	return animation.Spring{
		Damping:         floatOr(s.Damping, 20),
		Mass:            floatOr(s.Mass, 1),
		Stiffness:       floatOr(s.Stiffness, 250),
		Epsilon:         floatOr(s.Epsilon, 0.0001),
		InitialVelocity: s.InitialVelocity,
	}
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// WindowRuleConfig declares initial window state granted by a pattern match.
type WindowRuleConfig struct {
	Match      WindowPatternConfig `yaml:"match"`
	Floating   bool                `yaml:"floating"`
	Fullscreen bool                `yaml:"fullscreen"`
	Centered   *bool               `yaml:"centered"`
	Output     string              `yaml:"output"`
	Workspace  *int                `yaml:"workspace"`
}

// WindowPatternConfig selects windows; see the rules package for precedence.
type WindowPatternConfig struct {
	Workspace *int    `yaml:"workspace"`
	Title     *string `yaml:"title"`
	AppID     *string `yaml:"appId"`
}

// Load reads and validates a configuration file. An empty file is the
// default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw configuration bytes. Blank and
// comment-only payloads yield the default configuration.
func Parse(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if doc.Kind == 0 {
		return Default(), nil
	}
	var cfg Config
	if err := doc.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{General: GeneralConfig{FocusNewWindows: true}}
	cfg.Animations.WorkspaceSwitch.Enable = true
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns the conventional location of the config file.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fht", "compositor.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "compositor.yaml"
	}
	return filepath.Join(home, ".config", "fht", "compositor.yaml")
}

func (c *Config) applyDefaults() {
	if c.General.WorkspaceCount == 0 {
		c.General.WorkspaceCount = 9
	}
	if c.General.MasterWidthFactor == 0 {
		c.General.MasterWidthFactor = 0.55
	}
	if c.Animations.WorkspaceSwitch.DurationMs == 0 {
		c.Animations.WorkspaceSwitch.DurationMs = 350
	}
	if c.Animations.WorkspaceSwitch.Curve.Curve == nil {
		c.Animations.WorkspaceSwitch.Curve.Curve = animation.Simple{Easing: animation.EaseInOutCubic}
	}
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	if c.General.WorkspaceCount < 1 {
		return fmt.Errorf("general.workspaceCount must be at least 1, got %d", c.General.WorkspaceCount)
	}
	if c.General.MasterWidthFactor < 0.1 || c.General.MasterWidthFactor > 0.9 {
		return fmt.Errorf("general.masterWidthFactor must be within [0.1, 0.9], got %v", c.General.MasterWidthFactor)
	}
	if c.General.Gaps.Inner < 0 {
		return fmt.Errorf("general.gaps.inner cannot be negative")
	}
	if c.General.Gaps.Outer < 0 {
		return fmt.Errorf("general.gaps.outer cannot be negative")
	}
	if err := c.Animations.WorkspaceSwitch.validate(); err != nil {
		return fmt.Errorf("animations.workspaceSwitch: %w", err)
	}
	for i, rule := range c.WindowRules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("windowRules[%d]: %w", i, err)
		}
	}
	return nil
}

func (a AnimationConfig) validate() error {
	if a.DurationMs < 0 {
		return fmt.Errorf("durationMs cannot be negative")
	}
	if spring, ok := a.Curve.Curve.(animation.Spring); ok {
		if spring.Damping <= 0 {
			return fmt.Errorf("spring damping must be positive")
		}
		if spring.Mass <= 0 {
			return fmt.Errorf("spring mass must be positive")
		}
		if spring.Stiffness <= 0 {
			return fmt.Errorf("spring stiffness must be positive")
		}
		if spring.Epsilon <= 0 {
			return fmt.Errorf("spring epsilon must be positive")
		}
	}
	return nil
}

func (r WindowRuleConfig) validate() error {
	if r.Match.Workspace != nil && *r.Match.Workspace < 0 {
		return fmt.Errorf("match.workspace cannot be negative")
	}
	if r.Workspace != nil && *r.Workspace < 0 {
		return fmt.Errorf("workspace cannot be negative")
	}
	return nil
}
