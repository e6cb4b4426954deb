// Package anim provides explicit animation state that is advanced by the caller with
// frame timestamps rather than by timers.
package anim

import (
	"math"
	"time"
)

// Interpolator maps linear progress in [0, 1] onto eased progress.
type Interpolator func(t float32) float32

// Linear performs no easing.
func Linear(t float32) float32 { return t }

// AccelerateDecelerate starts and ends slowly and is fastest in the middle.
func AccelerateDecelerate(t float32) float32 {
	return float32(math.Cos(float64(t+1)*math.Pi)/2 + .5)
}

// Holder describes one animated property.
type Holder struct {
	From, To float32
}

// Animation interpolates a set of named properties over Duration. The zero value is
// an idle animation; set Duration before starting it. A nil Interpolator means
// AccelerateDecelerate.
type Animation struct {
	Duration     time.Duration
	Interpolator Interpolator

	holders  map[string]Holder
	start    time.Time
	latched  bool
	running  bool
	fraction float32
}

// Start (re)starts the animation at time zero with the given holders, replacing any
// previous ones. The start time is taken from the next call to Advance.
func (a *Animation) Start(holders map[string]Holder) {
	a.holders = holders
	a.latched = false
	a.running = true
	a.fraction = 0
}

// Advance moves the animation to the given frame time and reports whether it reached
// its end during this call. Advancing an animation that is not running does nothing.
func (a *Animation) Advance(now time.Time) (finished bool) {
	if !a.running {
		return false
	}
	if !a.latched {
		a.start = now
		a.latched = true
	}
	elapsed := now.Sub(a.start)
	if a.Duration <= 0 || elapsed >= a.Duration {
		a.fraction = 1
		a.running = false
		return true
	}
	a.fraction = max(0, float32(elapsed)/float32(a.Duration))
	return false
}

// Finish jumps to the end of the animation.
func (a *Animation) Finish() {
	a.fraction = 1
	a.running = false
}

// Cancel stops the animation where it is. Values keep reporting the state at the
// moment of cancellation.
func (a *Animation) Cancel() {
	a.running = false
}

// Running reports whether the animation has been started and has neither finished nor
// been cancelled.
func (a *Animation) Running() bool {
	return a.running
}

// Fraction returns the linear progress in [0, 1].
func (a *Animation) Fraction() float32 {
	return a.fraction
}

// Has reports whether the animation drives the named property.
func (a *Animation) Has(name string) bool {
	_, ok := a.holders[name]
	return ok
}

// Value returns the current value of the named property, or zero if the animation
// does not drive it.
func (a *Animation) Value(name string) float32 {
	h, ok := a.holders[name]
	if !ok {
		return 0
	}
	interp := a.Interpolator
	if interp == nil {
		interp = AccelerateDecelerate
	}
	return h.From + (h.To-h.From)*interp(a.fraction)
}
