package panel

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/input"
	"github.com/1broseidon/flickpanel/internal/spring"
	"github.com/1broseidon/flickpanel/internal/target"
)

var (
	t0     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	usable = geom.Rect{X: 0, Y: 0, Width: 1000, Height: 600}
)

type fakeHost struct {
	frame      geom.Rect
	usable     geom.Rect
	haveUsable bool
	tiling     bool
	moves      int
	accent     string
	failMoves  bool
}

func newFakeHost(x, y float64) *fakeHost {
	return &fakeHost{
		frame:      geom.Rect{X: x, Y: y, Width: 300, Height: 200},
		usable:     usable,
		haveUsable: true,
	}
}

func (h *fakeHost) UsableArea(geom.Rect) (geom.Rect, bool) { return h.usable, h.haveUsable }
func (h *fakeHost) Frame() (geom.Rect, bool)               { return h.frame, true }
func (h *fakeHost) TilingActive() bool                     { return h.tiling }

func (h *fakeHost) SetOrigin(p geom.Point) error {
	if h.failMoves {
		return errors.New("move failed")
	}
	h.moves++
	h.frame = h.frame.WithOrigin(p)
	return nil
}

func (h *fakeHost) SetAccent(hex string) error {
	h.accent = hex
	return nil
}

type harness struct {
	t      *testing.T
	host   *fakeHost
	sched  *spring.ManualScheduler
	ctrl   *Controller
	drag   []bool
	hidden []bool
}

func newHarness(t *testing.T, host *fakeHost, opts Options) *harness {
	t.Helper()
	h := &harness{t: t, host: host, sched: spring.NewManualScheduler()}
	cb := Callbacks{
		OnDragStateChanged: func(hovering bool) { h.drag = append(h.drag, hovering) },
		OnEdgeHiddenChanged: func(isHidden bool) {
			// Callbacks run outside the lock, so re-entering must not deadlock.
			_ = h.ctrl.Phase()
			h.hidden = append(h.hidden, isHidden)
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.ctrl = New(host, h.sched, opts, cb, logger)
	return h
}

func (h *harness) send(kind input.Kind, x, y float64, ms int) input.Disposition {
	return h.ctrl.HandleEvent(input.Event{
		Kind:     kind,
		Location: geom.Point{X: x, Y: y},
		Time:     t0.Add(time.Duration(ms) * time.Millisecond),
	})
}

func (h *harness) scroll(phase input.Phase, dx, dy float64) input.Disposition {
	return h.ctrl.HandleEvent(input.Event{
		Kind:     input.KindScroll,
		Location: geom.Point{X: 150, Y: 150},
		Phase:    phase,
		Delta:    geom.Vec{X: dx, Y: dy},
		Time:     t0,
	})
}

// fling drags from (x0,y) by dx in two 10ms steps and releases.
func (h *harness) fling(x0, y, dx float64) {
	h.send(input.KindPointerDown, x0, y, 0)
	h.send(input.KindPointerDrag, x0+dx/2, y, 10)
	h.send(input.KindPointerDrag, x0+dx, y, 20)
	h.send(input.KindPointerUp, x0+dx, y, 30)
}

// settle ticks until the spring stops, checking that dragging and animating
// never hold together.
func (h *harness) settle(maxTicks int) int {
	h.t.Helper()
	for i := 0; i < maxTicks; i++ {
		h.checkExclusive()
		if h.sched.Tick() == 0 {
			return i
		}
	}
	h.t.Fatalf("spring still running after %d ticks", maxTicks)
	return maxTicks
}

func (h *harness) checkExclusive() {
	h.t.Helper()
	c := h.ctrl
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging && c.driver.IsAnimating() {
		h.t.Fatal("dragging and animating at the same time")
	}
}

func TestController_FlingSnapsToCorner(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.fling(150, 150, 100)
	if got := h.ctrl.Phase(); got != PhaseAnimating {
		t.Fatalf("phase after release = %v, want animating", got)
	}
	if got := h.host.frame.Origin(); got != (geom.Point{X: 200, Y: 100}) {
		t.Fatalf("origin after drag = %+v, want (200,100)", got)
	}

	h.settle(400)

	want := geom.Point{X: 684, Y: 16}
	if got := h.host.frame.Origin(); got != want {
		t.Fatalf("settled origin = %+v, want %+v", got, want)
	}
	if got := h.ctrl.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
	if len(h.drag) != 1 || h.drag[0] {
		t.Fatalf("drag state notifications = %v, want [false]", h.drag)
	}
}

func TestController_DragCancelsAnimation(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.fling(150, 150, 100)
	for i := 0; i < 5; i++ {
		h.sched.Tick()
	}
	if h.sched.Active() != 1 {
		t.Fatalf("active timers = %d, want 1", h.sched.Active())
	}

	at := h.host.frame.Center()
	if d := h.send(input.KindPointerDown, at.X, at.Y, 100); d != input.Consumed {
		t.Fatalf("pointer down disposition = %v, want consumed", d)
	}
	h.checkExclusive()
	if got := h.ctrl.Phase(); got != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", got)
	}
	if h.sched.Active() != 0 {
		t.Fatalf("animation still scheduled during drag")
	}

	before := h.host.frame.Origin()
	if n := h.sched.Tick(); n != 0 {
		t.Fatalf("ticks ran during drag: %d", n)
	}
	if h.host.frame.Origin() != before {
		t.Fatal("window moved by a tick during drag")
	}

	h.send(input.KindPointerDrag, at.X+20, at.Y, 110)
	want := before.Add(geom.Vec{X: 20})
	if got := h.host.frame.Origin(); got.Dist(want) > 1e-9 {
		t.Fatalf("drag origin = %+v, want %+v", got, want)
	}
}

func TestController_ClickDoesNotAnimate(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.send(input.KindPointerDown, 150, 150, 0)
	h.send(input.KindPointerDrag, 151, 150, 10)
	if d := h.send(input.KindPointerUp, 151, 150, 20); d != input.PassThrough {
		t.Fatalf("click release disposition = %v, want pass-through", d)
	}
	if started, _ := h.sched.Counts(); started != 0 {
		t.Fatalf("click started %d animations", started)
	}
	if got := h.ctrl.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
}

func TestController_NoScreenIsNoOp(t *testing.T) {
	host := newFakeHost(100, 100)
	host.haveUsable = false
	h := newHarness(t, host, DefaultOptions())

	h.fling(150, 150, 100)
	if started, _ := h.sched.Counts(); started != 0 {
		t.Fatalf("release without a screen started %d animations", started)
	}
	if got := h.ctrl.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}

	h.ctrl.SnapToNearestCorner()
	h.ctrl.HideToEdge(target.EdgeRight)
	if started, _ := h.sched.Counts(); started != 0 {
		t.Fatalf("commands without a screen started %d animations", started)
	}
	if h.ctrl.Status().Hidden {
		t.Fatal("panel hidden without a screen")
	}
}

func TestController_HideAndRestoreRoundTrip(t *testing.T) {
	h := newHarness(t, newFakeHost(650, 100), DefaultOptions())
	params := target.DefaultParams()

	h.fling(700, 150, 40)
	released := geom.Rect{X: 690, Y: 100, Width: 300, Height: 200}

	st := h.ctrl.Status()
	if !st.Hidden || st.Edge != "right" {
		t.Fatalf("status after fling = %+v, want hidden on right", st)
	}
	h.settle(400)

	hideAt := target.HideTarget(released, usable, target.EdgeRight, params)
	if got := h.host.frame.Origin(); got != hideAt {
		t.Fatalf("hidden origin = %+v, want %+v", got, hideAt)
	}

	// The next click restores and is swallowed.
	if d := h.send(input.KindPointerDown, hideAt.X+5, hideAt.Y+5, 1000); d != input.Consumed {
		t.Fatalf("restoring click disposition = %v, want consumed", d)
	}
	if d := h.send(input.KindPointerUp, hideAt.X+5, hideAt.Y+5, 1010); d != input.Consumed {
		t.Fatalf("restoring release disposition = %v, want consumed", d)
	}
	if h.ctrl.Status().Hidden {
		t.Fatal("still hidden after restoring click")
	}
	h.settle(400)

	restoreAt := target.RestoreTarget(h.host.frame.WithOrigin(hideAt), usable, target.EdgeRight, params)
	if got := h.host.frame.Origin(); got != restoreAt {
		t.Fatalf("restored origin = %+v, want %+v", got, restoreAt)
	}
	if !usable.ContainsRect(h.host.frame) {
		t.Fatalf("restored frame %+v not inside work area", h.host.frame)
	}

	want := []bool{true, false}
	if len(h.hidden) != len(want) || h.hidden[0] != want[0] || h.hidden[1] != want[1] {
		t.Fatalf("hidden notifications = %v, want %v", h.hidden, want)
	}
}

func TestController_TilingSuppressesHideLeft(t *testing.T) {
	tests := []struct {
		name       string
		tiling     bool
		wantHidden bool
	}{
		{"tiling off", false, true},
		{"tiling on", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost(10, 100)
			host.tiling = tt.tiling
			h := newHarness(t, host, DefaultOptions())

			h.fling(100, 150, -40)
			if got := h.ctrl.Status().Hidden; got != tt.wantHidden {
				t.Fatalf("hidden = %v, want %v", got, tt.wantHidden)
			}
			h.settle(400)
			if !tt.wantHidden {
				if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
					t.Fatalf("origin = %+v, want (16,16)", got)
				}
			}
		})
	}
}

func TestController_SnapToNearestCorner(t *testing.T) {
	h := newHarness(t, newFakeHost(500, 350), DefaultOptions())

	h.ctrl.SnapToNearestCorner()
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 684, Y: 384}) {
		t.Fatalf("origin = %+v, want (684,384)", got)
	}

	// At rest a second snap is a zero-length run that settles immediately.
	h.ctrl.SnapToNearestCorner()
	if n := h.settle(10); n > 2 {
		t.Fatalf("idempotent snap took %d ticks", n)
	}
	if got := h.host.frame.Origin(); got != (geom.Point{X: 684, Y: 384}) {
		t.Fatalf("origin drifted to %+v", got)
	}
}

func TestController_SnapWhileHiddenRestores(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.ctrl.HideToEdge(target.EdgeLeft)
	h.settle(400)
	if got := h.host.frame.X; got != -280 {
		t.Fatalf("hidden x = %v, want -280", got)
	}

	h.ctrl.SnapToNearestCorner()
	if h.ctrl.Status().Hidden {
		t.Fatal("snap did not restore hidden panel")
	}
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
		t.Fatalf("origin = %+v, want (16,16)", got)
	}
}

func (h *harness) velocity() (geom.Vec, bool) {
	h.ctrl.mu.Lock()
	defer h.ctrl.mu.Unlock()
	return h.ctrl.driver.Velocity(), h.ctrl.driver.IsAnimating()
}

func TestController_RestoreMidHideKeepsVelocity(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.ctrl.HideToEdge(target.EdgeLeft)
	for i := 0; i < 8; i++ {
		h.sched.Tick()
	}
	held, animating := h.velocity()
	if !animating || held.Len() == 0 {
		t.Fatalf("hide not under way: velocity %+v animating %v", held, animating)
	}

	h.ctrl.Restore()
	got, animating := h.velocity()
	if !animating {
		t.Fatal("restore did not start a run")
	}
	if got != held {
		t.Fatalf("restored run velocity = %+v, want held %+v", got, held)
	}
	if h.sched.Active() != 1 {
		t.Fatalf("active timers = %d, want 1", h.sched.Active())
	}

	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
		t.Fatalf("origin = %+v, want (16,16)", got)
	}
	if want := []bool{true, false}; len(h.hidden) != 2 || h.hidden[0] != want[0] || h.hidden[1] != want[1] {
		t.Fatalf("hidden notifications = %v, want %v", h.hidden, want)
	}
}

func TestController_SnapMidHideStartsFromRest(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.ctrl.HideToEdge(target.EdgeLeft)
	for i := 0; i < 8; i++ {
		h.sched.Tick()
	}
	h.ctrl.SnapToNearestCorner()
	if v, animating := h.velocity(); !animating || v != (geom.Vec{}) {
		t.Fatalf("snap run velocity %+v animating %v, want zero and animating", v, animating)
	}
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
		t.Fatalf("origin = %+v, want (16,16)", got)
	}
}

func TestController_DragAfterLostRestoreRelease(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.ctrl.HideToEdge(target.EdgeLeft)
	h.settle(400)
	h.send(input.KindPointerDown, 10, 100, 0)
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
		t.Fatalf("restored origin = %+v, want (16,16)", got)
	}

	h.send(input.KindPointerDown, 100, 100, 100)
	h.send(input.KindPointerDrag, 200, 100, 110)
	h.send(input.KindPointerDrag, 300, 100, 120)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 216, Y: 16}) {
		t.Fatalf("dragged origin = %+v, want (216,16)", got)
	}
	h.send(input.KindPointerUp, 300, 100, 130)
	if got := h.ctrl.Phase(); got == PhaseDragging {
		t.Fatal("controller stuck dragging after release")
	}
	h.settle(400)
	if got := h.ctrl.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
}

func TestController_CommandsIgnoredWhileDragging(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())

	h.send(input.KindPointerDown, 150, 150, 0)
	h.ctrl.SnapToNearestCorner()
	h.ctrl.HideToEdge(target.EdgeRight)
	if started, _ := h.sched.Counts(); started != 0 {
		t.Fatalf("commands during drag started %d animations", started)
	}
	if got := h.ctrl.Phase(); got != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", got)
	}
}

func TestController_ScrollDragFollowsPage(t *testing.T) {
	opts := DefaultOptions()
	opts.ScrollPages = []string{"home"}
	h := newHarness(t, newFakeHost(100, 100), opts)

	h.ctrl.SetPage("settings")
	if d := h.scroll(input.PhaseBegan, 0, 0); d != input.PassThrough {
		t.Fatalf("scroll on disallowed page = %v, want pass-through", d)
	}

	h.ctrl.SetPage("home")
	if d := h.scroll(input.PhaseBegan, 0, 0); d != input.Consumed {
		t.Fatalf("scroll on allowed page = %v, want consumed", d)
	}
	h.scroll(input.PhaseChanged, 0, 10)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 100, Y: 110}) {
		t.Fatalf("origin after scroll = %+v, want (100,110)", got)
	}
	h.scroll(input.PhaseEnded, 0, 0)
	if got := h.ctrl.Phase(); got != PhaseAnimating {
		t.Fatalf("phase after scroll end = %v, want animating", got)
	}
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 16, Y: 16}) {
		t.Fatalf("origin = %+v, want (16,16)", got)
	}
}

func TestController_PageProvider(t *testing.T) {
	opts := DefaultOptions()
	opts.ScrollPages = []string{"home"}
	page := "other"
	h := &harness{t: t, host: newFakeHost(100, 100), sched: spring.NewManualScheduler()}
	h.ctrl = New(h.host, h.sched, opts, Callbacks{PageProvider: func() string { return page }}, nil)

	if d := h.scroll(input.PhaseBegan, 0, 0); d != input.PassThrough {
		t.Fatalf("disposition = %v, want pass-through", d)
	}
	page = "home"
	if d := h.scroll(input.PhaseBegan, 0, 0); d != input.Consumed {
		t.Fatalf("disposition = %v, want consumed", d)
	}
}

func TestController_NonDragRegions(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())
	band := 30.0
	h.ctrl.SetRegions([]geom.Rect{{X: 10, Y: 10, Width: 40, Height: 20}}, &band)

	tests := []struct {
		name string
		x, y float64
		want input.Disposition
	}{
		{"button", 120, 115, input.PassThrough},
		{"bottom band", 250, 280, input.PassThrough},
		{"body", 250, 200, input.Consumed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.send(input.KindPointerDown, tt.x, tt.y, 0)
			h.ctrl.Close()
			if got != tt.want {
				t.Errorf("disposition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestController_SetRegionsKeepsBandWhenNil(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())
	band := 30.0
	h.ctrl.SetRegions(nil, &band)

	rects := []geom.Rect{{X: 10, Y: 10, Width: 40, Height: 20}}
	h.ctrl.SetRegions(rects, nil)
	st := h.ctrl.Status()
	if st.BottomBand != 30 || len(st.Regions) != 1 {
		t.Fatalf("status regions=%v band=%v, want 1 region and band 30", st.Regions, st.BottomBand)
	}

	// A reload reapplies the configured values.
	h.ctrl.SetOptions(DefaultOptions())
	st = h.ctrl.Status()
	if st.BottomBand != 0 || len(st.Regions) != 0 {
		t.Fatalf("after reload regions=%v band=%v, want config values", st.Regions, st.BottomBand)
	}
}

func TestController_CheckPlacement(t *testing.T) {
	h := newHarness(t, newFakeHost(900, 100), DefaultOptions())

	if !h.ctrl.CheckPlacement() {
		t.Fatal("off-screen panel not snapped back")
	}
	h.settle(400)
	if got := h.host.frame.Origin(); got != (geom.Point{X: 684, Y: 16}) {
		t.Fatalf("origin = %+v, want (684,16)", got)
	}
	if h.ctrl.CheckPlacement() {
		t.Fatal("placed panel snapped again")
	}
}

func TestController_MoveErrorsAreTolerated(t *testing.T) {
	host := newFakeHost(100, 100)
	host.failMoves = true
	h := newHarness(t, host, DefaultOptions())

	h.ctrl.SnapToNearestCorner()
	h.settle(400)
	if got := h.ctrl.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v, want idle", got)
	}
}

func TestController_SetAccent(t *testing.T) {
	h := newHarness(t, newFakeHost(100, 100), DefaultOptions())
	if err := h.ctrl.SetAccent("#336699"); err != nil {
		t.Fatalf("SetAccent: %v", err)
	}
	if h.host.accent != "#336699" || h.ctrl.Status().Accent != "#336699" {
		t.Fatalf("accent not applied: host %q status %q", h.host.accent, h.ctrl.Status().Accent)
	}
}
