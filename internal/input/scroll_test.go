package input

import (
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
)

type eventLog struct {
	mu      sync.Mutex
	events  []Event
	ended   chan struct{}
	decline bool
}

func (l *eventLog) emit(ev Event) Disposition {
	l.mu.Lock()
	l.events = append(l.events, ev)
	decline := l.decline
	l.mu.Unlock()
	if ev.Phase == PhaseEnded {
		l.ended <- struct{}{}
	}
	if decline {
		return PassThrough
	}
	return Consumed
}

func (l *eventLog) phases() []Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Phase, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Phase
	}
	return out
}

func TestScrollPhaser_SynthesizesPhases(t *testing.T) {
	log := &eventLog{ended: make(chan struct{}, 1)}
	s := NewScrollPhaser(20*time.Millisecond, log.emit)

	if d := s.Notch(pt(5, 5), geom.Vec{Y: 12}, t0); d != Consumed {
		t.Fatalf("first notch disposition = %v, want consumed", d)
	}
	s.Notch(pt(5, 5), geom.Vec{Y: 12}, t0.Add(10*time.Millisecond))

	select {
	case <-log.ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("scroll gesture never ended")
	}

	want := []Phase{PhaseBegan, PhaseChanged, PhaseChanged, PhaseEnded}
	got := log.phases()
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phases = %v, want %v", got, want)
		}
	}
}

func TestScrollPhaser_FlushEndsOnce(t *testing.T) {
	log := &eventLog{ended: make(chan struct{}, 4)}
	s := NewScrollPhaser(time.Hour, log.emit)

	s.Notch(pt(5, 5), geom.Vec{X: 12}, t0)
	s.Flush()
	s.Flush()

	got := log.phases()
	if len(got) != 3 || got[2] != PhaseEnded {
		t.Fatalf("phases = %v, want began, changed, ended", got)
	}
}

func TestScrollPhaser_DeclinedBeganOpensNothing(t *testing.T) {
	log := &eventLog{ended: make(chan struct{}, 4), decline: true}
	s := NewScrollPhaser(time.Hour, log.emit)

	if d := s.Notch(pt(5, 5), geom.Vec{Y: 12}, t0); d != PassThrough {
		t.Fatalf("disposition = %v, want pass-through", d)
	}
	s.Notch(pt(5, 5), geom.Vec{Y: 12}, t0)
	s.Flush()

	got := log.phases()
	if len(got) != 2 || got[0] != PhaseBegan || got[1] != PhaseBegan {
		t.Fatalf("phases = %v, want two declined began events", got)
	}
}
