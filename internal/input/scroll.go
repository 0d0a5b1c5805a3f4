package input

import (
	"sync"
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// DefaultScrollEndDelay is how long the phaser waits for another notch
// before ending a scroll gesture.
const DefaultScrollEndDelay = 120 * time.Millisecond

// ScrollPhaser turns phase-less scroll notches into began/changed/ended
// scroll events. The ended event is emitted from a timer goroutine once no
// notch has arrived for the configured delay. A began event that is passed
// through does not open a gesture; the next notch tries again.
type ScrollPhaser struct {
	mu     sync.Mutex
	delay  time.Duration
	emit   func(Event) Disposition
	now    func() time.Time
	timer  *time.Timer
	active bool
	seq    uint64
	last   geom.Point
}

// NewScrollPhaser creates a phaser that reports to emit.
func NewScrollPhaser(delay time.Duration, emit func(Event) Disposition) *ScrollPhaser {
	if delay <= 0 {
		delay = DefaultScrollEndDelay
	}
	return &ScrollPhaser{delay: delay, emit: emit, now: time.Now}
}

// SetDelay changes the idle delay for subsequent notches.
func (s *ScrollPhaser) SetDelay(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultScrollEndDelay
	}
	s.mu.Lock()
	s.delay = delay
	s.mu.Unlock()
}

// Notch reports one scroll step at location with the given delta and
// returns whether the step was captured.
func (s *ScrollPhaser) Notch(at geom.Point, delta geom.Vec, t time.Time) Disposition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		if s.emit(Event{Kind: KindScroll, Phase: PhaseBegan, Location: at, Time: t}) != Consumed {
			return PassThrough
		}
		s.active = true
	}
	s.last = at
	d := s.emit(Event{Kind: KindScroll, Phase: PhaseChanged, Location: at, Delta: delta, Time: t})

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.expire(seq) })
	return d
}

// Flush ends the current scroll gesture immediately, if any.
func (s *ScrollPhaser) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked()
}

func (s *ScrollPhaser) expire(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.endLocked()
}

func (s *ScrollPhaser) endLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.active {
		return
	}
	s.active = false
	s.seq++
	s.emit(Event{Kind: KindScroll, Phase: PhaseEnded, Location: s.last, Time: s.now()})
}
