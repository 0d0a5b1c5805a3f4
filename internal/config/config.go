package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// TilingMode controls whether a host tiling layout owns the left edge.
type TilingMode string

const (
	TilingModeAuto TilingMode = "auto" // Detect from the EWMH window manager name.
	TilingModeOn   TilingMode = "on"
	TilingModeOff  TilingMode = "off"
)

// PanelConfig selects the window to drive. The first non-empty matcher wins:
// title, then WM_CLASS.
type PanelConfig struct {
	Title string `yaml:"title,omitempty"`
	Class string `yaml:"class,omitempty"`
}

// PhysicsConfig tunes the spring.
type PhysicsConfig struct {
	Stiffness    float64 `yaml:"stiffness"`
	Damping      float64 `yaml:"damping"`
	Mass         float64 `yaml:"mass"`
	TickRate     float64 `yaml:"tick_rate"`     // Hz
	RestDistance float64 `yaml:"rest_distance"` // px
	RestSpeed    float64 `yaml:"rest_speed"`    // px/s
	// ReleaseVelocityFraction scales the release velocity fed to the spring.
	ReleaseVelocityFraction float64 `yaml:"release_velocity_fraction"`
	// Integrator is "euler" (semi-implicit) or "analytic" (closed form).
	Integrator string `yaml:"integrator"`
}

// TargetingConfig tunes corner snapping and edge hiding.
type TargetingConfig struct {
	CornerMargin        float64 `yaml:"corner_margin"`
	ProjectionFactor    float64 `yaml:"projection_factor"`
	EdgeHide            bool    `yaml:"edge_hide"`
	EdgeThreshold       float64 `yaml:"edge_threshold"`
	EdgeMinVelocity     float64 `yaml:"edge_min_velocity"`
	HorizontalDominance float64 `yaml:"horizontal_dominance"`
	VisibleWidth        float64 `yaml:"visible_width"`
}

// InputConfig tunes gesture capture.
type InputConfig struct {
	// DragButton is the mouse binding that drags the panel, in xgbutil
	// notation ("Mod1-1" is Alt+left button).
	DragButton string `yaml:"drag_button"`
	// ScrollModifier is held with the wheel to scroll-drag; empty means a
	// bare wheel over the panel drags it.
	ScrollModifier    string  `yaml:"scroll_modifier"`
	ClickSlop         float64 `yaml:"click_slop"`
	HistorySize       int     `yaml:"history_size"`
	VelocityWindow    int     `yaml:"velocity_window"`
	ScrollDrag        bool    `yaml:"scroll_drag"`
	ScrollStep        float64 `yaml:"scroll_step"` // px per wheel notch
	ScrollSensitivity float64 `yaml:"scroll_sensitivity"`
	ScrollEndDelayMs  int     `yaml:"scroll_end_delay_ms"`
	// ScrollPages lists the pages on which scroll gestures drag the panel;
	// "*" matches every page.
	ScrollPages    []string    `yaml:"scroll_pages"`
	NonDragRegions []geom.Rect `yaml:"non_drag_regions,omitempty"`
	BottomBand     float64     `yaml:"bottom_band"`
}

// HotkeyConfig holds global key bindings. Empty disables a binding.
type HotkeyConfig struct {
	Snap       string `yaml:"snap"`
	ToggleHide string `yaml:"toggle_hide"`
	// HideEdge is the edge toggle_hide parks the panel against.
	HideEdge string `yaml:"hide_edge"`
}

// AccentConfig tunes dominant-color extraction.
type AccentConfig struct {
	Clusters   int `yaml:"clusters"`
	Iterations int `yaml:"iterations"`
	MaxSamples int `yaml:"max_samples"`
}

// Config holds the application configuration.
type Config struct {
	Display         string          `yaml:"display,omitempty"`
	XAuthority      string          `yaml:"xauthority,omitempty"`
	Panel           PanelConfig     `yaml:"panel"`
	Physics         PhysicsConfig   `yaml:"physics"`
	Targeting       TargetingConfig `yaml:"targeting"`
	Input           InputConfig     `yaml:"input"`
	TilingMode      TilingMode      `yaml:"tiling_mode"`
	TilingWMs       []string        `yaml:"tiling_wms"`
	Hotkeys         HotkeyConfig    `yaml:"hotkeys"`
	Accent          AccentConfig    `yaml:"accent"`
	TrackIntervalMs int             `yaml:"track_interval_ms"`
	WatchConfig     bool            `yaml:"watch_config"`
	LogLevel        string          `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Panel: PanelConfig{Title: "flickpanel"},
		Physics: PhysicsConfig{
			Stiffness:               280,
			Damping:                 24,
			Mass:                    1,
			TickRate:                120,
			RestDistance:            0.3,
			RestSpeed:               2,
			ReleaseVelocityFraction: 0.3,
			Integrator:              "euler",
		},
		Targeting: TargetingConfig{
			CornerMargin:        16,
			ProjectionFactor:    0.12,
			EdgeHide:            true,
			EdgeThreshold:       20,
			EdgeMinVelocity:     50,
			HorizontalDominance: 0.8,
			VisibleWidth:        20,
		},
		Input: InputConfig{
			DragButton:        "Mod1-1",
			ScrollModifier:    "Mod1",
			ClickSlop:         3,
			HistorySize:       5,
			VelocityWindow:    3,
			ScrollDrag:        true,
			ScrollStep:        24,
			ScrollSensitivity: 1,
			ScrollEndDelayMs:  120,
			ScrollPages:       []string{"*"},
		},
		TilingMode: TilingModeAuto,
		TilingWMs: []string{
			"i3", "sway", "bspwm", "awesome", "dwm", "xmonad",
			"herbstluftwm", "qtile", "spectrwm", "leftwm",
		},
		Hotkeys: HotkeyConfig{
			Snap:       "Mod4-Mod1-c", // Super+Alt+C for "corner"
			ToggleHide: "Mod4-Mod1-h", // Super+Alt+H for "hide"
			HideEdge:   "right",
		},
		Accent: AccentConfig{
			Clusters:   4,
			Iterations: 8,
			MaxSamples: 4096,
		},
		TrackIntervalMs: 2000,
		WatchConfig:     true,
		LogLevel:        "info",
	}
}

// MaxTickRate bounds physics.tick_rate (Hz).
const MaxTickRate = 1000

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Panel.Title) == "" && strings.TrimSpace(c.Panel.Class) == "" {
		return &ValidationError{Path: "panel", Err: fmt.Errorf("panel.title or panel.class is required")}
	}

	p := c.Physics
	for _, f := range []struct {
		path  string
		value float64
	}{
		{"physics.stiffness", p.Stiffness},
		{"physics.damping", p.Damping},
		{"physics.mass", p.Mass},
		{"physics.tick_rate", p.TickRate},
		{"physics.rest_distance", p.RestDistance},
		{"physics.rest_speed", p.RestSpeed},
	} {
		if f.value <= 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("must be > 0")}
		}
	}
	if p.TickRate > MaxTickRate {
		return &ValidationError{Path: "physics.tick_rate", Err: fmt.Errorf("must be <= %d", MaxTickRate)}
	}
	if p.ReleaseVelocityFraction < 0 || p.ReleaseVelocityFraction > 1 {
		return &ValidationError{Path: "physics.release_velocity_fraction", Err: fmt.Errorf("must be between 0 and 1")}
	}
	if p.Integrator != "euler" && p.Integrator != "analytic" {
		return &ValidationError{Path: "physics.integrator", Err: fmt.Errorf("integrator must be one of: euler, analytic")}
	}

	t := c.Targeting
	for _, f := range []struct {
		path  string
		value float64
	}{
		{"targeting.corner_margin", t.CornerMargin},
		{"targeting.projection_factor", t.ProjectionFactor},
		{"targeting.edge_threshold", t.EdgeThreshold},
		{"targeting.edge_min_velocity", t.EdgeMinVelocity},
		{"targeting.horizontal_dominance", t.HorizontalDominance},
		{"targeting.visible_width", t.VisibleWidth},
	} {
		if f.value < 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("must be >= 0")}
		}
	}

	in := c.Input
	if strings.TrimSpace(in.DragButton) == "" {
		return &ValidationError{Path: "input.drag_button", Err: fmt.Errorf("drag_button is required")}
	}
	if in.ClickSlop <= 0 {
		return &ValidationError{Path: "input.click_slop", Err: fmt.Errorf("must be > 0")}
	}
	if in.VelocityWindow < 2 {
		return &ValidationError{Path: "input.velocity_window", Err: fmt.Errorf("velocity_window must be >= 2")}
	}
	if in.HistorySize < in.VelocityWindow {
		return &ValidationError{Path: "input.history_size", Err: fmt.Errorf("history_size must be >= velocity_window (%d)", in.VelocityWindow)}
	}
	if in.ScrollStep <= 0 {
		return &ValidationError{Path: "input.scroll_step", Err: fmt.Errorf("must be > 0")}
	}
	if in.ScrollSensitivity <= 0 {
		return &ValidationError{Path: "input.scroll_sensitivity", Err: fmt.Errorf("must be > 0")}
	}
	if in.ScrollEndDelayMs <= 0 {
		return &ValidationError{Path: "input.scroll_end_delay_ms", Err: fmt.Errorf("must be > 0")}
	}
	if in.BottomBand < 0 {
		return &ValidationError{Path: "input.bottom_band", Err: fmt.Errorf("must be >= 0")}
	}
	for i, r := range in.NonDragRegions {
		if r.Width <= 0 || r.Height <= 0 {
			return &ValidationError{Path: "input.non_drag_regions", Err: fmt.Errorf("region %d must have positive width and height", i)}
		}
	}

	switch c.TilingMode {
	case TilingModeAuto, TilingModeOn, TilingModeOff:
	default:
		return &ValidationError{Path: "tiling_mode", Err: fmt.Errorf("tiling_mode must be one of: auto, on, off")}
	}

	switch c.Hotkeys.HideEdge {
	case "left", "right":
	default:
		return &ValidationError{Path: "hotkeys.hide_edge", Err: fmt.Errorf("hide_edge must be one of: left, right")}
	}

	if c.Accent.Clusters < 1 {
		return &ValidationError{Path: "accent.clusters", Err: fmt.Errorf("must be >= 1")}
	}
	if c.Accent.Iterations < 1 {
		return &ValidationError{Path: "accent.iterations", Err: fmt.Errorf("must be >= 1")}
	}
	if c.TrackIntervalMs < 100 {
		return &ValidationError{Path: "track_interval_ms", Err: fmt.Errorf("track_interval_ms must be >= 100")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// TilingWM reports whether wmName is one of the configured tiling window
// managers. Matching is case-insensitive.
func (c *Config) TilingWM(wmName string) bool {
	name := strings.ToLower(strings.TrimSpace(wmName))
	if name == "" {
		return false
	}
	for _, wm := range c.TilingWMs {
		if strings.ToLower(wm) == name {
			return true
		}
	}
	return false
}

// SaveToPath validates c and writes it as YAML to path, creating the
// directory if needed. The file is replaced atomically so a watching daemon
// never reads a partial write.
func (c *Config) SaveToPath(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.TilingWMs = append([]string(nil), c.TilingWMs...)
	out.Input.ScrollPages = append([]string(nil), c.Input.ScrollPages...)
	out.Input.NonDragRegions = append([]geom.Rect(nil), c.Input.NonDragRegions...)
	return &out
}
