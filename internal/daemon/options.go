package daemon

import (
	"log/slog"
	"time"

	"github.com/1broseidon/flickpanel/internal/accent"
	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/panel"
	"github.com/1broseidon/flickpanel/internal/platform"
	"github.com/1broseidon/flickpanel/internal/spring"
	"github.com/1broseidon/flickpanel/internal/target"
	"github.com/1broseidon/flickpanel/internal/velocity"
)

// PanelOptions converts the configuration into controller tuning.
func PanelOptions(cfg *config.Config) panel.Options {
	opts := panel.DefaultOptions()

	opts.Spring = spring.Params{
		Stiffness:    cfg.Physics.Stiffness,
		Damping:      cfg.Physics.Damping,
		Mass:         cfg.Physics.Mass,
		TickRate:     cfg.Physics.TickRate,
		RestDistance: cfg.Physics.RestDistance,
		RestSpeed:    cfg.Physics.RestSpeed,
		Integrator:   spring.Integrator(cfg.Physics.Integrator),
	}
	opts.ReleaseVelocityFraction = cfg.Physics.ReleaseVelocityFraction

	opts.Target = target.Params{
		CornerMargin:        cfg.Targeting.CornerMargin,
		ProjectionFactor:    cfg.Targeting.ProjectionFactor,
		EdgeHide:            cfg.Targeting.EdgeHide,
		EdgeThreshold:       cfg.Targeting.EdgeThreshold,
		EdgeMinVelocity:     cfg.Targeting.EdgeMinVelocity,
		HorizontalDominance: cfg.Targeting.HorizontalDominance,
		VisibleWidth:        cfg.Targeting.VisibleWidth,
	}

	in := cfg.Input
	opts.ClickSlop = in.ClickSlop
	opts.HistorySize = in.HistorySize
	opts.VelocityWindow = in.VelocityWindow
	opts.MinSampleInterval = velocity.DefaultMinInterval
	opts.ScrollSensitivity = in.ScrollSensitivity
	opts.ScrollPages = nil
	if in.ScrollDrag {
		opts.ScrollPages = append([]string(nil), in.ScrollPages...)
	}
	opts.NonDragRegions = append(opts.NonDragRegions[:0:0], in.NonDragRegions...)
	opts.BottomBand = in.BottomBand

	return opts
}

// AccentOptions converts the accent section.
func AccentOptions(cfg *config.Config) accent.Options {
	return accent.Options{
		Clusters:   cfg.Accent.Clusters,
		Iterations: cfg.Accent.Iterations,
		MaxSamples: cfg.Accent.MaxSamples,
	}
}

// Matcher returns the window matcher for the panel section.
func Matcher(cfg *config.Config) platform.Matcher {
	return platform.Matcher{Title: cfg.Panel.Title, Class: cfg.Panel.Class}
}

// ScrollEndDelay is how long the scroll phaser waits before ending a gesture.
func ScrollEndDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Input.ScrollEndDelayMs) * time.Millisecond
}

// TrackInterval is the reconciler period.
func TrackInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.TrackIntervalMs) * time.Millisecond
}

// LogLevel maps log_level onto slog.
func LogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
