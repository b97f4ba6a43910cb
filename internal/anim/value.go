package anim

import (
	"time"

	"github.com/0bVdnt/PixlFX/internal/loop"
)

// Value is an animated scalar. All methods must be called on the loop.
type Value struct {
	sched loop.Scheduler

	from, to float64
	start    time.Time
	duration time.Duration
	easing   EasingFunc
	done     *loop.Timer
}

func NewValue(sched loop.Scheduler, initial float64) *Value {
	return &Value{sched: sched, from: initial, to: initial}
}

// Set jumps to v, cancelling any running tween.
func (v *Value) Set(x float64) {
	v.cancel()
	v.from, v.to = x, x
	v.duration = 0
}

// Animate tweens from the current value to target. A tween that is
// superseded before it finishes never calls its onDone.
func (v *Value) Animate(target float64, duration time.Duration, easing EasingFunc, onDone func()) {
	now := v.sched.Now()
	current := v.At(now)
	v.cancel()

	if easing == nil {
		easing = Linear
	}
	v.from, v.to = current, target
	v.start = now
	v.duration = duration
	v.easing = easing

	v.done = v.sched.AfterFunc(duration, func() {
		v.done = nil
		v.from = v.to
		v.duration = 0
		if onDone != nil {
			onDone()
		}
	})
}

// At samples the value at the given instant.
func (v *Value) At(now time.Time) float64 {
	if v.duration <= 0 {
		return v.to
	}
	p := float64(now.Sub(v.start)) / float64(v.duration)
	if p >= 1 {
		return v.to
	}
	if p <= 0 {
		return v.from
	}
	return v.from + (v.to-v.from)*v.easing(p)
}

// Current samples the value at the scheduler's clock.
func (v *Value) Current() float64 {
	return v.At(v.sched.Now())
}

func (v *Value) Running() bool {
	return v.done != nil
}

// Target is where the value ends up once any running tween finishes.
func (v *Value) Target() float64 {
	return v.to
}

// Stop freezes the value where it is.
func (v *Value) Stop() {
	if v.done == nil {
		return
	}
	v.Set(v.Current())
}

func (v *Value) cancel() {
	if v.done != nil {
		v.done.Stop()
		v.done = nil
	}
}
