// Package velocity turns pointer samples and scroll deltas into a release
// velocity in px/s.
package velocity

import (
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
)

const (
	// DefaultHistorySize is the number of samples kept per gesture.
	DefaultHistorySize = 5
	// DefaultWindow is how many of the newest samples the estimate spans.
	DefaultWindow = 3
	// DefaultMinInterval is the shortest sample span that yields a velocity.
	DefaultMinInterval = time.Millisecond
)

// Sample is one recorded pointer position.
type Sample struct {
	Position geom.Point
	Time     time.Time
}

// Estimator keeps a bounded history of samples and derives the release
// velocity by finite differencing over the newest few.
type Estimator struct {
	data   []Sample
	pos    int
	full   bool
	window int
	minDt  time.Duration
}

// NewEstimator creates an estimator holding size samples and differencing
// over the newest window of them. Non-positive arguments fall back to the
// defaults.
func NewEstimator(size, window int, minInterval time.Duration) *Estimator {
	if size <= 0 {
		size = DefaultHistorySize
	}
	if window < 2 {
		window = DefaultWindow
	}
	if window > size {
		window = size
	}
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Estimator{
		data:   make([]Sample, size),
		window: window,
		minDt:  minInterval,
	}
}

// Record appends s, evicting the oldest sample once the history is full.
func (e *Estimator) Record(s Sample) {
	e.data[e.pos] = s
	e.pos++
	if e.pos >= len(e.data) {
		e.pos = 0
		e.full = true
	}
}

// Reset drops all samples.
func (e *Estimator) Reset() {
	e.pos = 0
	e.full = false
}

// Len returns the number of samples held.
func (e *Estimator) Len() int {
	if e.full {
		return len(e.data)
	}
	return e.pos
}

// Samples returns the history in insertion order, oldest first.
func (e *Estimator) Samples() []Sample {
	n := e.Len()
	out := make([]Sample, n)
	if e.full {
		copy(out, e.data[e.pos:])
		copy(out[len(e.data)-e.pos:], e.data[:e.pos])
	} else {
		copy(out, e.data[:e.pos])
	}
	return out
}

// Estimate returns the release velocity in px/s. It is zero with fewer than
// two samples or when the differenced samples are closer than the minimum
// interval.
func (e *Estimator) Estimate() geom.Vec {
	samples := e.Samples()
	if len(samples) < 2 {
		return geom.Vec{}
	}
	if len(samples) > e.window {
		samples = samples[len(samples)-e.window:]
	}
	first := samples[0]
	last := samples[len(samples)-1]

	dt := last.Time.Sub(first.Time)
	if dt < e.minDt {
		return geom.Vec{}
	}
	d := last.Position.Sub(first.Position)
	secs := dt.Seconds()
	return geom.Vec{X: d.X / secs, Y: d.Y / secs}
}
