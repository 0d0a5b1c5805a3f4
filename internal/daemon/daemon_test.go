package daemon

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/platform"
)

type fakeResolver struct {
	windows map[platform.WindowID]bool
	found   platform.WindowID
	lookups []platform.Matcher
}

func (f *fakeResolver) FindWindow(m platform.Matcher) (platform.WindowID, error) {
	f.lookups = append(f.lookups, m)
	if f.found == 0 {
		return 0, errors.New("not found")
	}
	return f.found, nil
}

func (f *fakeResolver) WindowExists(id platform.WindowID) bool { return f.windows[id] }

type fakeSlot struct{ id platform.WindowID }

func (s *fakeSlot) Window() platform.WindowID      { return s.id }
func (s *fakeSlot) SetWindow(id platform.WindowID) { s.id = id }

type countingPlacement struct{ checks int }

func (p *countingPlacement) CheckPlacement() bool { p.checks++; return false }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciler_TracksWindowLifecycle(t *testing.T) {
	res := &fakeResolver{windows: map[platform.WindowID]bool{}}
	slot := &fakeSlot{}
	place := &countingPlacement{}
	var changes []platform.WindowID
	r := NewReconciler(ReconcilerConfig{Matcher: platform.Matcher{Title: "panel"}, Logger: quietLogger()},
		res, slot, place, func(id platform.WindowID) { changes = append(changes, id) })

	r.ReconcileNow()
	if slot.id != 0 || place.checks != 0 || len(changes) != 0 {
		t.Fatalf("nothing to find: slot=%d checks=%d changes=%v", slot.id, place.checks, changes)
	}

	res.found = 11
	res.windows[11] = true
	r.ReconcileNow()
	if slot.id != 11 || place.checks != 1 {
		t.Fatalf("after appear: slot=%d checks=%d", slot.id, place.checks)
	}

	lookups := len(res.lookups)
	r.ReconcileNow()
	if len(res.lookups) != lookups {
		t.Fatalf("existing window was looked up again")
	}
	if place.checks != 2 {
		t.Fatalf("checks = %d, want 2", place.checks)
	}

	delete(res.windows, 11)
	res.found = 0
	r.ReconcileNow()
	if slot.id != 0 {
		t.Fatalf("lost window still tracked: %d", slot.id)
	}

	want := []platform.WindowID{11, 0}
	if len(changes) != len(want) || changes[0] != want[0] || changes[1] != want[1] {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
}

func TestReconciler_SetMatcherForcesResolve(t *testing.T) {
	res := &fakeResolver{windows: map[platform.WindowID]bool{3: true, 4: true}, found: 3}
	slot := &fakeSlot{}
	r := NewReconciler(ReconcilerConfig{Matcher: platform.Matcher{Title: "a"}, Logger: quietLogger()},
		res, slot, &countingPlacement{}, nil)
	r.ReconcileNow()
	if slot.id != 3 {
		t.Fatalf("slot = %d, want 3", slot.id)
	}

	r.SetMatcher(platform.Matcher{Title: "a"})
	if slot.id != 3 {
		t.Fatalf("unchanged matcher dropped the window")
	}

	res.found = 4
	r.SetMatcher(platform.Matcher{Class: "b"})
	r.ReconcileNow()
	if slot.id != 4 {
		t.Fatalf("slot = %d, want 4", slot.id)
	}
	if got := res.lookups[len(res.lookups)-1]; got.Class != "b" {
		t.Fatalf("last lookup used %+v", got)
	}
}

func TestTiling_Update(t *testing.T) {
	tests := []struct {
		name string
		mode config.TilingMode
		wm   string
		err  error
		want bool
	}{
		{"on ignores wm", config.TilingModeOn, "openbox", nil, true},
		{"off ignores wm", config.TilingModeOff, "i3", nil, false},
		{"auto tiling wm", config.TilingModeAuto, "i3", nil, true},
		{"auto case-insensitive", config.TilingModeAuto, "Sway", nil, true},
		{"auto floating wm", config.TilingModeAuto, "xfwm4", nil, false},
		{"auto lookup failure", config.TilingModeAuto, "", errors.New("no wm"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.TilingMode = tt.mode
			var tiling Tiling
			got := tiling.Update(cfg, func() (string, error) { return tt.wm, tt.err })
			if got != tt.want || tiling.Active() != tt.want {
				t.Fatalf("Update = %v, Active = %v, want %v", got, tiling.Active(), tt.want)
			}
		})
	}
}

func TestPanelOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Physics.Stiffness = 300
	cfg.Targeting.VisibleWidth = 32
	cfg.Input.BottomBand = 12

	opts := PanelOptions(cfg)
	if opts.Spring.Stiffness != 300 || opts.Spring.TickRate != 120 {
		t.Fatalf("spring = %+v", opts.Spring)
	}
	if opts.Target.VisibleWidth != 32 || opts.Target.ProjectionFactor != 0.12 {
		t.Fatalf("target = %+v", opts.Target)
	}
	if opts.BottomBand != 12 || opts.ReleaseVelocityFraction != 0.3 {
		t.Fatalf("band = %v, fraction = %v", opts.BottomBand, opts.ReleaseVelocityFraction)
	}
	if len(opts.ScrollPages) != 1 || opts.ScrollPages[0] != "*" {
		t.Fatalf("scroll pages = %v", opts.ScrollPages)
	}

	cfg.Input.ScrollDrag = false
	if opts := PanelOptions(cfg); len(opts.ScrollPages) != 0 {
		t.Fatalf("scroll drag disabled but pages = %v", opts.ScrollPages)
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := LogLevel(in); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
