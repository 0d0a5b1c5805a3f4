// Package spring animates a window origin toward a target with a damped
// spring integrated at a fixed timestep.
package spring

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// Integrator selects how a tick advances the spring.
type Integrator string

const (
	// IntegratorEuler applies force = k(t-p) - cv with semi-implicit Euler.
	IntegratorEuler Integrator = "euler"
	// IntegratorAnalytic uses the closed-form damped harmonic oscillator for
	// the same k, c and m.
	IntegratorAnalytic Integrator = "analytic"
)

// Params holds the physical constants of the spring.
type Params struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	// TickRate is the integration rate in Hz; the timestep is 1/TickRate.
	TickRate float64
	// RestDistance and RestSpeed are the convergence tolerances (px, px/s).
	RestDistance float64
	RestSpeed    float64
	// Integrator defaults to IntegratorEuler when empty.
	Integrator Integrator
}

// DefaultParams returns the stock spring constants.
func DefaultParams() Params {
	return Params{
		Stiffness:    280,
		Damping:      24,
		Mass:         1.0,
		TickRate:     120,
		RestDistance: 0.3,
		RestSpeed:    2,
		Integrator:   IntegratorEuler,
	}
}

// Timestep returns the integration step.
func (p Params) Timestep() float64 {
	return 1 / p.TickRate
}

// AngularFrequency returns sqrt(k/m).
func (p Params) AngularFrequency() float64 {
	return math.Sqrt(p.Stiffness / p.Mass)
}

// DampingRatio returns c / (2*sqrt(k*m)); 1 is critical damping.
func (p Params) DampingRatio() float64 {
	return p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))
}

// minInterval is the shortest ticker period handed to a scheduler.
const minInterval = time.Millisecond

// Interval returns the timestep as a duration for schedulers, never shorter
// than a millisecond.
func (p Params) Interval() time.Duration {
	return max(time.Duration(float64(time.Second)/p.TickRate), minInterval)
}

// Window is the capability the driver needs from the thing it moves.
type Window interface {
	Origin() (geom.Point, bool)
	SetOrigin(geom.Point)
}

// Scheduler runs fn every interval until the returned stop func is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Driver owns the spring state and the animating/at-rest state machine.
// It is not safe for concurrent use; callers serialize access (see
// LockedScheduler).
type Driver struct {
	win    Window
	sched  Scheduler
	params Params

	pos       geom.Point
	vel       geom.Vec
	target    geom.Point
	animating bool

	run  uint64
	stop func()

	// analytic caches the closed-form coefficients for analyticFor.
	analytic    harmonica.Spring
	analyticFor Params

	// OnSettled is called after the driver snaps to its target and stops.
	OnSettled func(target geom.Point)
}

// NewDriver creates an idle driver.
func NewDriver(win Window, sched Scheduler, params Params) *Driver {
	return &Driver{win: win, sched: sched, params: params}
}

// SetParams replaces the spring constants. A run in progress keeps its
// ticker interval and picks up the new constants on its next tick.
func (d *Driver) SetParams(p Params) {
	d.params = p
}

// Params returns the current spring constants.
func (d *Driver) Params() Params {
	return d.params
}

// IsAnimating reports whether a run is in progress.
func (d *Driver) IsAnimating() bool {
	return d.animating
}

// Target returns the current spring target. It is meaningless at rest.
func (d *Driver) Target() geom.Point {
	return d.target
}

// Velocity returns the current spring velocity.
func (d *Driver) Velocity() geom.Vec {
	return d.vel
}

// AnimateTo starts a run from the window's current origin toward target
// with initial velocity v. Any previous run is cancelled first. When the
// window origin cannot be read the call is a no-op.
func (d *Driver) AnimateTo(target geom.Point, v geom.Vec) {
	d.Cancel()

	origin, ok := d.win.Origin()
	if !ok {
		return
	}

	d.pos = origin
	d.vel = v
	d.target = target
	d.animating = true
	d.run++

	run := d.run
	d.stop = d.sched.Every(d.params.Interval(), func() {
		if run != d.run {
			return
		}
		d.Step()
	})
}

// Retarget moves the target of a run in progress, keeping its velocity.
// At rest it behaves like AnimateTo with zero velocity.
func (d *Driver) Retarget(target geom.Point) {
	if !d.animating {
		d.AnimateTo(target, geom.Vec{})
		return
	}
	d.target = target
}

// Cancel stops ticking and leaves the window where it is.
func (d *Driver) Cancel() {
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
	d.run++
	d.animating = false
	d.vel = geom.Vec{}
}

// Step advances the spring by one timestep and writes the new origin to the
// window. It returns true while the run is still going. At rest it does
// nothing.
func (d *Driver) Step() bool {
	if !d.animating {
		return false
	}

	p := d.params
	dt := p.Timestep()

	switch p.Integrator {
	case IntegratorAnalytic:
		if d.analyticFor != p {
			d.analytic = harmonica.NewSpring(dt, p.AngularFrequency(), p.DampingRatio())
			d.analyticFor = p
		}
		d.pos.X, d.vel.X = d.analytic.Update(d.pos.X, d.vel.X, d.target.X)
		d.pos.Y, d.vel.Y = d.analytic.Update(d.pos.Y, d.vel.Y, d.target.Y)
	default:
		fx := p.Stiffness*(d.target.X-d.pos.X) - p.Damping*d.vel.X
		fy := p.Stiffness*(d.target.Y-d.pos.Y) - p.Damping*d.vel.Y

		// Semi-implicit Euler: velocity first, then position with the new velocity.
		d.vel.X += fx / p.Mass * dt
		d.vel.Y += fy / p.Mass * dt
		d.pos.X += d.vel.X * dt
		d.pos.Y += d.vel.Y * dt
	}

	if Settled(d.pos, d.target, d.vel, p) {
		target := d.target
		d.pos = target
		d.win.SetOrigin(target)
		d.Cancel()
		if d.OnSettled != nil {
			d.OnSettled(target)
		}
		return false
	}

	d.win.SetOrigin(d.pos)
	return true
}

// Settled reports whether pos/vel are inside the rest tolerances of target.
func Settled(pos, target geom.Point, vel geom.Vec, p Params) bool {
	return pos.Dist(target) < p.RestDistance && vel.Len() < p.RestSpeed
}
