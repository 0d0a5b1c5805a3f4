package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/flickpanel/internal/platform"
)

// WindowResolver locates the panel window.
type WindowResolver interface {
	FindWindow(m platform.Matcher) (platform.WindowID, error)
	WindowExists(id platform.WindowID) bool
}

// WindowSlot holds the currently tracked window.
type WindowSlot interface {
	Window() platform.WindowID
	SetWindow(id platform.WindowID)
}

// Placement is the controller check run on every pass.
type Placement interface {
	CheckPlacement() bool
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Matcher  platform.Matcher
	Logger   *slog.Logger
}

// Reconciler periodically checks that the panel window still exists and
// still sits on a usable screen, and corrects drift.
type Reconciler struct {
	interval  time.Duration
	resolver  WindowResolver
	slot      WindowSlot
	placement Placement
	logger    *slog.Logger

	mu       sync.Mutex
	matcher  platform.Matcher
	onWindow func(platform.WindowID)
}

// NewReconciler creates a new reconciler. onWindow is called whenever the
// tracked window changes, including to zero when it disappears.
func NewReconciler(cfg ReconcilerConfig, resolver WindowResolver, slot WindowSlot, placement Placement, onWindow func(platform.WindowID)) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		resolver:  resolver,
		slot:      slot,
		placement: placement,
		logger:    logger,
		matcher:   cfg.Matcher,
		onWindow:  onWindow,
	}
}

// SetMatcher changes how the window is looked up and forces a re-resolve
// on the next pass.
func (r *Reconciler) SetMatcher(m platform.Matcher) {
	r.mu.Lock()
	changed := m != r.matcher
	r.matcher = m
	r.mu.Unlock()
	if changed {
		r.setWindow(0)
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	current := r.slot.Window()
	if current != 0 && r.resolver.WindowExists(current) {
		r.placement.CheckPlacement()
		return
	}

	r.mu.Lock()
	matcher := r.matcher
	r.mu.Unlock()

	id, err := r.resolver.FindWindow(matcher)
	if err != nil {
		if current != 0 {
			r.logger.Warn("reconciler: panel window lost", "window_id", current, "error", err)
			r.setWindow(0)
		} else {
			r.logger.Debug("reconciler: panel window not found", "title", matcher.Title, "class", matcher.Class)
		}
		return
	}

	r.logger.Info("reconciler: tracking panel window", "window_id", id, "previous", current)
	r.setWindow(id)
	r.placement.CheckPlacement()
}

func (r *Reconciler) setWindow(id platform.WindowID) {
	if r.slot.Window() == id {
		return
	}
	r.slot.SetWindow(id)
	if r.onWindow != nil {
		r.onWindow(id)
	}
}
