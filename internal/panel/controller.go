// Package panel wires input capture, velocity estimation, target selection
// and the spring driver around one floating window.
package panel

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/input"
	"github.com/1broseidon/flickpanel/internal/spring"
	"github.com/1broseidon/flickpanel/internal/target"
	"github.com/1broseidon/flickpanel/internal/velocity"
)

// Host is the window-system capability set the panel needs.
type Host interface {
	// UsableArea returns the work area of the screen holding frame; false
	// when no screen can be resolved.
	UsableArea(frame geom.Rect) (geom.Rect, bool)
	// Frame returns the panel window's current frame.
	Frame() (geom.Rect, bool)
	SetOrigin(p geom.Point) error
	// TilingActive reports whether a host tiling mode owns the left edge.
	TilingActive() bool
}

// AccentSetter is implemented by hosts that can show an accent color.
type AccentSetter interface {
	SetAccent(hex string) error
}

// Phase is the top-level motion state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseAnimating
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseAnimating:
		return "animating"
	default:
		return "unknown"
	}
}

// Controller owns all mutable panel state. Every entry point takes mu, and
// spring ticks run under the same lock, so input and animation never
// interleave.
type Controller struct {
	mu     sync.Mutex
	host   Host
	opts   Options
	cb     Callbacks
	logger *slog.Logger

	capture   *input.Capture
	regions   *input.Regions
	estimator *velocity.Estimator
	scroll    *velocity.ScrollTracker
	driver    *spring.Driver

	frame     geom.Rect
	haveFrame bool

	dragging   bool
	modality   input.Modality
	anchor     geom.Point
	dragOrigin geom.Point
	rebuild    bool

	hidden bool
	edge   target.Edge

	page   string
	accent string

	pending []func()
}

// New creates a controller for the window behind host. Spring ticks are
// scheduled on sched and serialized with input under the controller lock.
func New(host Host, sched spring.Scheduler, opts Options, cb Callbacks, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		host:   host,
		opts:   opts,
		cb:     cb,
		logger: logger,
	}
	c.regions = &input.Regions{
		Frame:      c.currentFrame,
		Rects:      opts.NonDragRegions,
		BottomBand: opts.BottomBand,
	}
	c.capture = input.New(gestureSink{c}, c.captureOptions())
	c.estimator = velocity.NewEstimator(opts.HistorySize, opts.VelocityWindow, opts.MinSampleInterval)
	c.scroll = velocity.NewScrollTracker(opts.ScrollSensitivity)
	c.driver = spring.NewDriver(driverWindow{c}, spring.LockedScheduler{Inner: sched, Lock: &c.mu}, opts.Spring)
	c.driver.OnSettled = func(p geom.Point) {
		c.logger.Debug("panel settled", "x", p.X, "y", p.Y, "hidden", c.hidden)
	}
	return c
}

func (c *Controller) captureOptions() input.Options {
	return input.Options{
		ClickSlop:     c.opts.ClickSlop,
		ScrollAllowed: c.scrollAllowed,
		HitTester:     c.regions,
	}
}

// HandleEvent feeds one raw input event through gesture capture.
func (c *Controller) HandleEvent(ev input.Event) input.Disposition {
	var d input.Disposition
	c.do(func() {
		d = c.capture.Handle(ev)
	})
	return d
}

// SnapToNearestCorner animates the panel from rest into the corner nearest
// its center. A hidden panel is restored instead; during a drag the call is
// ignored.
func (c *Controller) SnapToNearestCorner() {
	c.do(func() {
		if c.dragging {
			return
		}
		if c.hidden {
			c.driver.Cancel()
			c.restoreLocked()
			return
		}
		c.syncFrameLocked()
		c.releaseLocked(geom.Vec{}, false)
	})
}

// HideToEdge parks the panel against edge. A run in progress is redirected
// with the velocity it held. Ignored during a drag.
func (c *Controller) HideToEdge(edge target.Edge) {
	if edge == target.EdgeNone {
		return
	}
	c.do(func() {
		if c.dragging || (c.hidden && c.edge == edge) {
			return
		}
		c.syncFrameLocked()
		if !c.haveFrame {
			return
		}
		usable, ok := c.host.UsableArea(c.frame)
		if !ok {
			return
		}
		c.setHiddenLocked(edge)
		c.driver.Retarget(target.HideTarget(c.frame, usable, edge, c.opts.Target))
	})
}

// Restore brings a hidden panel back on screen, keeping the velocity of a
// run in progress. No-op when not hidden.
func (c *Controller) Restore() {
	c.do(func() {
		if c.dragging {
			return
		}
		c.restoreLocked()
	})
}

// CheckPlacement snaps an idle, visible panel back to a corner when it no
// longer lies inside its work area (for example after a display change).
// It reports whether a snap was started.
func (c *Controller) CheckPlacement() bool {
	var snapped bool
	c.do(func() {
		if c.dragging || c.hidden || c.driver.IsAnimating() {
			return
		}
		c.syncFrameLocked()
		if !c.haveFrame {
			return
		}
		usable, ok := c.host.UsableArea(c.frame)
		if !ok || usable.ContainsRect(c.frame) {
			return
		}
		c.logger.Info("panel outside work area, snapping back",
			"frame", c.frame, "usable", usable)
		snapped = c.releaseLocked(geom.Vec{}, false)
	})
	return snapped
}

// SetPage records the host's current page for the scroll-drag predicate.
func (c *Controller) SetPage(page string) {
	c.do(func() {
		c.page = page
	})
}

// SetRegions replaces the non-draggable regions and, when bottomBand is not
// nil, the bottom band. The values last until the next SetOptions, which a
// config reload performs.
func (c *Controller) SetRegions(rects []geom.Rect, bottomBand *float64) {
	c.do(func() {
		c.opts.NonDragRegions = rects
		c.regions.Rects = rects
		if bottomBand != nil {
			c.opts.BottomBand = *bottomBand
			c.regions.BottomBand = *bottomBand
		}
	})
}

// SetAccent stores the accent color and pushes it to the host when the host
// can show one.
func (c *Controller) SetAccent(hex string) error {
	var err error
	c.do(func() {
		c.accent = hex
		if setter, ok := c.host.(AccentSetter); ok {
			err = setter.SetAccent(hex)
		}
	})
	return err
}

// Apply runs fn while holding the controller lock. It is how background
// work hands results to the panel's single owner.
func (c *Controller) Apply(fn func()) {
	c.do(fn)
}

// SetOptions swaps in new tuning, e.g. after a config reload.
func (c *Controller) SetOptions(opts Options) {
	c.do(func() {
		c.opts = opts
		c.regions.Rects = opts.NonDragRegions
		c.regions.BottomBand = opts.BottomBand
		c.capture.SetOptions(c.captureOptions())
		c.driver.SetParams(opts.Spring)
		if c.dragging {
			c.rebuild = true
			return
		}
		c.rebuildEstimatorsLocked()
	})
}

// Close stops any animation in progress.
func (c *Controller) Close() {
	c.do(func() {
		c.driver.Cancel()
		c.capture.Reset()
		c.dragging = false
	})
}

// Phase returns the current top-level state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phaseLocked()
}

func (c *Controller) phaseLocked() Phase {
	switch {
	case c.dragging:
		return PhaseDragging
	case c.driver.IsAnimating():
		return PhaseAnimating
	default:
		return PhaseIdle
	}
}

// do runs fn under the lock and then delivers any notifications it queued.
func (c *Controller) do(fn func()) {
	c.mu.Lock()
	fn()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, n := range pending {
		n()
	}
}

func (c *Controller) notify(fn func()) {
	c.pending = append(c.pending, fn)
}

func (c *Controller) rebuildEstimatorsLocked() {
	c.estimator = velocity.NewEstimator(c.opts.HistorySize, c.opts.VelocityWindow, c.opts.MinSampleInterval)
	c.scroll = velocity.NewScrollTracker(c.opts.ScrollSensitivity)
	c.rebuild = false
}

func (c *Controller) scrollAllowed() bool {
	page := c.page
	if c.cb.PageProvider != nil {
		page = c.cb.PageProvider()
	}
	return pageAllowed(c.opts.ScrollPages, page)
}

// syncFrameLocked re-reads the frame from the host unless the controller is
// the one currently moving the window.
func (c *Controller) syncFrameLocked() {
	if c.dragging || c.driver.IsAnimating() {
		return
	}
	if frame, ok := c.host.Frame(); ok {
		c.frame = frame
		c.haveFrame = true
	}
}

func (c *Controller) currentFrame() (geom.Rect, bool) {
	if !c.dragging && !c.driver.IsAnimating() {
		c.syncFrameLocked()
	}
	return c.frame, c.haveFrame
}

func (c *Controller) setOriginLocked(p geom.Point) {
	c.frame = c.frame.WithOrigin(p)
	if err := c.host.SetOrigin(p); err != nil {
		c.logger.Debug("failed to move panel", "x", p.X, "y", p.Y, "error", err)
	}
}

// releaseLocked picks a destination for velocity v and starts the spring.
// With allowHide false only corner snapping is considered.
func (c *Controller) releaseLocked(v geom.Vec, allowHide bool) bool {
	if !c.haveFrame {
		return false
	}
	usable, ok := c.host.UsableArea(c.frame)
	params := c.opts.Target
	if !allowHide {
		params.EdgeHide = false
	}
	d := target.Select(target.Input{
		Frame:        c.frame,
		Velocity:     v,
		Usable:       usable,
		HasUsable:    ok,
		TilingActive: c.host.TilingActive(),
	}, params)

	c.logger.Debug("release target selected",
		"kind", d.Kind.String(), "corner", d.Corner.String(),
		"vx", v.X, "vy", v.Y, "tx", d.Target.X, "ty", d.Target.Y)

	switch d.Kind {
	case target.KindNone:
		return false
	case target.KindHideLeft, target.KindHideRight:
		c.setHiddenLocked(d.Kind.Edge())
	}
	c.driver.AnimateTo(d.Target, v.Scale(c.opts.ReleaseVelocityFraction))
	return true
}

func (c *Controller) setHiddenLocked(edge target.Edge) {
	wasHidden := c.hidden
	c.hidden = true
	c.edge = edge
	c.logger.Info("panel hidden", "edge", edge.String())
	if !wasHidden && c.cb.OnEdgeHiddenChanged != nil {
		cb := c.cb.OnEdgeHiddenChanged
		c.notify(func() { cb(true) })
	}
}

func (c *Controller) restoreLocked() {
	if !c.hidden {
		return
	}
	edge := c.edge
	c.hidden = false
	c.edge = target.EdgeNone
	c.logger.Info("panel restored", "edge", edge.String())
	if c.cb.OnEdgeHiddenChanged != nil {
		cb := c.cb.OnEdgeHiddenChanged
		c.notify(func() { cb(false) })
	}

	c.syncFrameLocked()
	if !c.haveFrame {
		return
	}
	usable, ok := c.host.UsableArea(c.frame)
	if !ok {
		return
	}
	c.driver.Retarget(target.RestoreTarget(c.frame, usable, edge, c.opts.Target))
}

// gestureSink adapts the controller to input.Sink. Its methods run with
// the controller lock already held by HandleEvent.
type gestureSink struct {
	c *Controller
}

func (s gestureSink) EdgeHidden() bool {
	return s.c.hidden
}

func (s gestureSink) RestoreFromEdge() {
	s.c.restoreLocked()
}

func (s gestureSink) GestureBegan(g input.Gesture) {
	c := s.c
	c.driver.Cancel()
	c.syncFrameLocked()

	c.dragging = true
	c.modality = g.Modality
	c.anchor = g.Location
	c.dragOrigin = c.frame.Origin()

	if c.rebuild {
		c.rebuildEstimatorsLocked()
	}
	c.estimator.Reset()
	c.scroll.Reset()
	if g.Modality == input.ModalityPointer {
		c.estimator.Record(velocity.Sample{Position: g.Location, Time: g.Time})
	}

	c.logger.Debug("gesture began", "modality", g.Modality.String(), "x", g.Location.X, "y", g.Location.Y)
	if c.cb.OnDragStateChanged != nil {
		cb := c.cb.OnDragStateChanged
		c.notify(func() { cb(false) })
	}
}

func (s gestureSink) GestureMoved(g input.Gesture) {
	c := s.c
	if !c.dragging || !c.haveFrame {
		return
	}
	switch g.Modality {
	case input.ModalityPointer:
		c.estimator.Record(velocity.Sample{Position: g.Location, Time: g.Time})
		c.setOriginLocked(c.dragOrigin.Add(g.Location.Sub(c.anchor)))
	case input.ModalityScroll:
		moved := c.scroll.Update(g.Delta)
		c.setOriginLocked(c.frame.Origin().Add(moved))
	}
}

func (s gestureSink) GestureEnded(g input.Gesture) {
	c := s.c
	if !c.dragging {
		return
	}
	c.dragging = false
	c.modality = input.ModalityNone

	if g.Click {
		c.logger.Debug("gesture ended as click", "travel", g.Travel)
		return
	}

	var v geom.Vec
	switch g.Modality {
	case input.ModalityScroll:
		v = c.scroll.Velocity()
	default:
		v = c.estimator.Estimate()
	}
	c.logger.Debug("gesture ended", "modality", g.Modality.String(), "vx", v.X, "vy", v.Y)
	c.releaseLocked(v, true)
}

// driverWindow exposes the controller's frame model to the spring driver.
// Spring ticks hold the controller lock via LockedScheduler.
type driverWindow struct {
	c *Controller
}

func (w driverWindow) Origin() (geom.Point, bool) {
	return w.c.frame.Origin(), w.c.haveFrame
}

func (w driverWindow) SetOrigin(p geom.Point) {
	w.c.setOriginLocked(p)
}
