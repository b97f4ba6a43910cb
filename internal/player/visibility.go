package player

import (
	"time"

	"github.com/0bVdnt/PixlFX/internal/anim"
	"github.com/0bVdnt/PixlFX/internal/loop"
)

const (
	DefaultHideDelay    = 5 * time.Second
	DefaultShowDuration = 300 * time.Millisecond
	DefaultHideDuration = 200 * time.Millisecond
)

// visibility owns the control overlay: whether it is shown, its fade
// progress, and the auto-hide deadline.
type visibility struct {
	sched    loop.Scheduler
	visible  bool
	progress *anim.Value
	deadline *loop.Timer

	hideDelay    time.Duration
	showDuration time.Duration
	hideDuration time.Duration
}

func newVisibility(sched loop.Scheduler, hideDelay, showDur, hideDur time.Duration) *visibility {
	return &visibility{
		sched:        sched,
		progress:     anim.NewValue(sched, 0),
		hideDelay:    hideDelay,
		showDuration: showDur,
		hideDuration: hideDur,
	}
}

// show fades the overlay in (or back in, if it was fading out) and re-arms the deadline.
func (v *visibility) show() {
	if !v.visible || v.progress.Target() < 1 {
		v.visible = true
		v.progress.Animate(1, v.showDuration, anim.Linear, nil)
	}
	v.reset()
}

func (v *visibility) reset() {
	v.deadline.Stop()
	v.deadline = v.sched.AfterFunc(v.hideDelay, v.hide)
}

func (v *visibility) hide() {
	v.deadline = nil
	if !v.visible {
		return
	}
	v.progress.Animate(0, v.hideDuration, anim.Linear, func() {
		v.visible = false
	})
}

func (v *visibility) deadlineAt() time.Time {
	if !v.deadline.Active() {
		return time.Time{}
	}
	return v.deadline.Deadline()
}

func (v *visibility) stop() {
	v.deadline.Stop()
	v.deadline = nil
	v.progress.Stop()
}
