// Package input normalizes pointer drags and scroll gestures into one
// began/moved/ended gesture stream.
package input

import (
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// DefaultClickSlop is the travel (px) below which a pointer gesture is a click.
const DefaultClickSlop = 3

// Kind is the low-level event type.
type Kind int

const (
	KindPointerDown Kind = iota
	KindPointerDrag
	KindPointerUp
	KindScroll
)

// Phase is the lifecycle stage of a scroll event.
type Phase int

const (
	PhaseBegan Phase = iota
	PhaseChanged
	PhaseEnded
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseChanged:
		return "changed"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is one raw input event in screen coordinates.
type Event struct {
	Kind     Kind
	Location geom.Point
	Phase    Phase
	Delta    geom.Vec
	Time     time.Time
}

// Modality identifies which input channel owns the current gesture.
type Modality int

const (
	ModalityNone Modality = iota
	ModalityPointer
	ModalityScroll
)

// String returns the string representation of the modality.
func (m Modality) String() string {
	switch m {
	case ModalityNone:
		return "none"
	case ModalityPointer:
		return "pointer"
	case ModalityScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Disposition tells the caller whether the event was captured.
type Disposition int

const (
	// PassThrough means the event should reach the panel's content unchanged.
	PassThrough Disposition = iota
	// Consumed means the event drove the panel and must not be forwarded.
	Consumed
)

// Gesture describes one began/moved/ended notification.
type Gesture struct {
	Modality Modality
	Location geom.Point
	// Delta is the raw movement since the previous event of this gesture.
	Delta geom.Vec
	Time  time.Time
	// Travel is the largest distance from the gesture start seen so far.
	Travel float64
	// Click is set on the ended notification of a pointer gesture that never
	// travelled ClickSlop.
	Click bool
}

// Sink receives normalized gestures.
type Sink interface {
	EdgeHidden() bool
	RestoreFromEdge()
	GestureBegan(g Gesture)
	GestureMoved(g Gesture)
	GestureEnded(g Gesture)
}

// HitTester reports whether a screen point is over an interactive control
// that must keep receiving its events.
type HitTester interface {
	Interactive(p geom.Point) bool
}

// HitTestFunc adapts a function to HitTester.
type HitTestFunc func(p geom.Point) bool

// Interactive implements HitTester.
func (f HitTestFunc) Interactive(p geom.Point) bool {
	return f(p)
}

// Options configures a Capture.
type Options struct {
	ClickSlop float64
	// ScrollAllowed gates the scroll modality; nil allows it always.
	ScrollAllowed func() bool
	// HitTester vetoes gesture starts over interactive controls; nil vetoes nothing.
	HitTester HitTester
}

// Capture is the per-panel gesture state machine. It is not safe for
// concurrent use.
type Capture struct {
	sink Sink
	opts Options

	active  Modality
	start   geom.Point
	last    geom.Point
	travel  float64
	swallow bool
}

// New creates a Capture that reports to sink.
func New(sink Sink, opts Options) *Capture {
	if opts.ClickSlop <= 0 {
		opts.ClickSlop = DefaultClickSlop
	}
	return &Capture{sink: sink, opts: opts}
}

// SetOptions replaces the options; an active gesture is unaffected.
func (c *Capture) SetOptions(opts Options) {
	if opts.ClickSlop <= 0 {
		opts.ClickSlop = DefaultClickSlop
	}
	c.opts = opts
}

// Active returns the modality of the gesture in progress.
func (c *Capture) Active() Modality {
	return c.active
}

// Reset abandons any gesture in progress without notifying the sink.
func (c *Capture) Reset() {
	c.active = ModalityNone
	c.swallow = false
	c.travel = 0
}

// Handle feeds one event through the state machine.
func (c *Capture) Handle(ev Event) Disposition {
	switch ev.Kind {
	case KindPointerDown:
		return c.pointerDown(ev)
	case KindPointerDrag:
		return c.pointerDrag(ev)
	case KindPointerUp:
		return c.pointerUp(ev)
	case KindScroll:
		return c.scroll(ev)
	default:
		return PassThrough
	}
}

func (c *Capture) pointerDown(ev Event) Disposition {
	// A new press ends a swallowed click whose release never arrived.
	c.swallow = false
	if c.active != ModalityNone {
		return PassThrough
	}
	if c.sink.EdgeHidden() {
		// The restoring click is used up; the rest of it is ignored.
		c.swallow = true
		c.sink.RestoreFromEdge()
		return Consumed
	}
	if c.interactive(ev.Location) {
		return PassThrough
	}
	c.begin(ModalityPointer, ev)
	return Consumed
}

func (c *Capture) pointerDrag(ev Event) Disposition {
	if c.swallow {
		return Consumed
	}
	if c.active != ModalityPointer {
		return PassThrough
	}
	delta := ev.Location.Sub(c.last)
	c.last = ev.Location
	if d := ev.Location.Dist(c.start); d > c.travel {
		c.travel = d
	}
	c.sink.GestureMoved(Gesture{
		Modality: ModalityPointer,
		Location: ev.Location,
		Delta:    delta,
		Time:     ev.Time,
		Travel:   c.travel,
	})
	return Consumed
}

func (c *Capture) pointerUp(ev Event) Disposition {
	if c.swallow {
		c.swallow = false
		return Consumed
	}
	if c.active != ModalityPointer {
		return PassThrough
	}
	if d := ev.Location.Dist(c.start); d > c.travel {
		c.travel = d
	}
	click := c.travel < c.opts.ClickSlop
	c.active = ModalityNone
	c.sink.GestureEnded(Gesture{
		Modality: ModalityPointer,
		Location: ev.Location,
		Delta:    ev.Location.Sub(c.last),
		Time:     ev.Time,
		Travel:   c.travel,
		Click:    click,
	})
	if click {
		return PassThrough
	}
	return Consumed
}

func (c *Capture) scroll(ev Event) Disposition {
	switch ev.Phase {
	case PhaseBegan:
		if c.active != ModalityNone || c.swallow {
			return PassThrough
		}
		if !c.scrollAllowed() || c.sink.EdgeHidden() || c.interactive(ev.Location) {
			return PassThrough
		}
		c.begin(ModalityScroll, ev)
		return Consumed

	case PhaseChanged:
		if c.active != ModalityScroll {
			return PassThrough
		}
		c.travel += ev.Delta.Len()
		c.last = ev.Location
		c.sink.GestureMoved(Gesture{
			Modality: ModalityScroll,
			Location: ev.Location,
			Delta:    ev.Delta,
			Time:     ev.Time,
			Travel:   c.travel,
		})
		return Consumed

	case PhaseEnded:
		if c.active != ModalityScroll {
			return PassThrough
		}
		c.active = ModalityNone
		c.sink.GestureEnded(Gesture{
			Modality: ModalityScroll,
			Location: ev.Location,
			Delta:    ev.Delta,
			Time:     ev.Time,
			Travel:   c.travel,
		})
		return Consumed
	}
	return PassThrough
}

func (c *Capture) begin(m Modality, ev Event) {
	c.active = m
	c.start = ev.Location
	c.last = ev.Location
	c.travel = 0
	c.sink.GestureBegan(Gesture{
		Modality: m,
		Location: ev.Location,
		Time:     ev.Time,
	})
}

func (c *Capture) interactive(p geom.Point) bool {
	return c.opts.HitTester != nil && c.opts.HitTester.Interactive(p)
}

func (c *Capture) scrollAllowed() bool {
	return c.opts.ScrollAllowed == nil || c.opts.ScrollAllowed()
}
