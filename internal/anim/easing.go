// Package anim holds easing curves and loop-driven tweens.
package anim

import "math"

// EasingFunc maps linear progress in [0,1] to eased progress.
type EasingFunc func(t float64) float64

func Linear(t float64) float64 {
	return clamp01(t)
}

// Ease is the inertial curve cubic-bezier(0.42, 0, 1, 1).
var Ease = Bezier(0.42, 0, 1, 1)

// Bezier builds a CSS-style cubic bezier easing with end points (0,0) and (1,1).
func Bezier(x1, y1, x2, y2 float64) EasingFunc {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(t float64) float64 { return ((ax*t+bx)*t + cx) * t }
	sampleY := func(t float64) float64 { return ((ay*t+by)*t + cy) * t }
	slopeX := func(t float64) float64 { return (3*ax*t+2*bx)*t + cx }

	solve := func(x float64) float64 {
		// Newton first, bisection if the slope flattens out.
		t := x
		for range 8 {
			err := sampleX(t) - x
			if math.Abs(err) < 1e-6 {
				return t
			}
			d := slopeX(t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= err / d
		}

		lo, hi := 0.0, 1.0
		t = x
		for range 32 {
			v := sampleX(t)
			if math.Abs(v-x) < 1e-6 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return t
	}

	return func(x float64) float64 {
		x = clamp01(x)
		if x == 0 || x == 1 {
			return x
		}
		return sampleY(solve(x))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
