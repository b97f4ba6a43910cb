package player

import (
	"context"
	"time"

	"github.com/samber/lo"
)

// TogglePlayback flips between playing and paused.
func (c *Controller) TogglePlayback() error {
	if c.engine == nil {
		return ErrEngineUnavailable
	}

	c.playing = !c.playing
	if c.playing {
		c.call("play", func(ctx context.Context) error { return c.engine.Play(ctx) })
	} else {
		c.call("pause", func(ctx context.Context) error { return c.engine.Pause(ctx) })
	}
	c.ResetControlsTimeout()
	return nil
}

func (c *Controller) ToggleMute() {
	c.muted = !c.muted
	muted := c.muted
	c.call("mute", func(ctx context.Context) error { return c.engine.SetMuted(ctx, muted) })
	c.ResetControlsTimeout()
}

// HandleSlidingStart hides the playing state while the user drags the
// slider so engine position updates do not fight the thumb. The engine
// keeps playing.
func (c *Controller) HandleSlidingStart() {
	c.seeking = true
	c.ResetControlsTimeout()
}

// HandleSlidingComplete seeks to fraction of duration and resumes playback.
func (c *Controller) HandleSlidingComplete(fraction float64, duration time.Duration) error {
	if c.engine == nil {
		c.seeking = false
		return ErrEngineUnavailable
	}
	if !c.mounted {
		c.seeking = false
		return ErrNotMounted
	}

	target := time.Duration(lo.Clamp(fraction, 0, 1) * float64(duration))
	gen := c.gen.Load()
	c.log.Debug("seek", "fraction", fraction, "target", target)

	c.enqueue(op{
		name: "seek",
		gen:  gen,
		run:  func(ctx context.Context) error { return c.engine.Seek(ctx, target) },
		done: func(err error) {
			// a source change already cleared seeking for the new source
			if gen != c.gen.Load() {
				return
			}
			c.seeking = false
			if err != nil {
				c.log.Warn("seek failed", "target", target, "error", err)
				return
			}
			c.playing = true
			c.call("play", func(ctx context.Context) error { return c.engine.Play(ctx) })
		},
	})
	c.ResetControlsTimeout()
	return nil
}

func (c *Controller) HandleNextTrack() {
	n := len(c.sources)
	c.setSource((c.index + 1) % n)
	c.ResetControlsTimeout()
}

func (c *Controller) HandlePreviousTrack() {
	n := len(c.sources)
	c.setSource((c.index - 1 + n) % n)
	c.ResetControlsTimeout()
}

// ShowControls reveals the overlay after a tap. Nothing happens until the
// engine has reported at least one status.
func (c *Controller) ShowControls() {
	if !c.status.IsPresent() {
		return
	}
	c.controls.show()
}

// ResetControlsTimeout pushes the auto-hide deadline out by the full delay.
func (c *Controller) ResetControlsTimeout() {
	if !c.mounted {
		return
	}
	c.controls.reset()
}
