package velocity

import "github.com/1broseidon/flickpanel/internal/geom"

// ScrollEventRate is the nominal scroll event rate used to turn a per-event
// delta into px/s.
const ScrollEventRate = 60

// ScrollTracker derives velocity straight from scroll deltas. Each update
// replaces the previous value; the last one is the release velocity.
type ScrollTracker struct {
	sensitivity float64
	v           geom.Vec
}

// NewScrollTracker creates a tracker with the given delta sensitivity.
func NewScrollTracker(sensitivity float64) *ScrollTracker {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return &ScrollTracker{sensitivity: sensitivity}
}

// Sensitivity returns the scale applied to raw deltas.
func (s *ScrollTracker) Sensitivity() float64 {
	return s.sensitivity
}

// Update records one scroll delta and returns the displacement the panel
// should move by for it.
func (s *ScrollTracker) Update(delta geom.Vec) geom.Vec {
	moved := delta.Scale(s.sensitivity)
	s.v = moved.Scale(ScrollEventRate)
	return moved
}

// Velocity returns the most recent scroll velocity in px/s.
func (s *ScrollTracker) Velocity() geom.Vec {
	return s.v
}

// Reset zeroes the tracked velocity.
func (s *ScrollTracker) Reset() {
	s.v = geom.Vec{}
}
