package anim

import "time"

// Tween is one leg of a Parallel animation.
type Tween struct {
	Value    *Value
	To       float64
	Duration time.Duration
	Easing   EasingFunc
}

// Parallel starts every tween at once and calls onDone after the last one ends.
func Parallel(tweens []Tween, onDone func()) {
	if len(tweens) == 0 {
		if onDone != nil {
			onDone()
		}
		return
	}

	remaining := len(tweens)
	for _, tw := range tweens {
		tw.Value.Animate(tw.To, tw.Duration, tw.Easing, func() {
			remaining--
			if remaining == 0 && onDone != nil {
				onDone()
			}
		})
	}
}
