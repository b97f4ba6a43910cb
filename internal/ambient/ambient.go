// Package ambient fades in a blurred copy of the video behind the player,
// topped with a dark gradient, once after a delay.
package ambient

import (
	"time"

	"github.com/0bVdnt/PixlFX/internal/anim"
	"github.com/0bVdnt/PixlFX/internal/loop"
)

const (
	DefaultImageFade    = 4000 * time.Millisecond
	DefaultGradientFade = 2000 * time.Millisecond
)

type Options struct {
	Delay        time.Duration
	ImageFade    time.Duration
	GradientFade time.Duration
	Easing       anim.EasingFunc
}

// Controller runs the one-shot reveal. Call its methods on the loop.
type Controller struct {
	sched loop.Scheduler
	opts  Options

	image    *anim.Value
	gradient *anim.Value

	delay   *loop.Timer
	started bool
	done    bool
	onDone  func()
}

func NewController(sched loop.Scheduler, opts Options) *Controller {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.ImageFade <= 0 {
		opts.ImageFade = DefaultImageFade
	}
	if opts.GradientFade <= 0 {
		opts.GradientFade = DefaultGradientFade
	}
	if opts.Easing == nil {
		opts.Easing = anim.Ease
	}
	return &Controller{
		sched:    sched,
		opts:     opts,
		image:    anim.NewValue(sched, 0),
		gradient: anim.NewValue(sched, 0),
	}
}

// Start arms the delay. Later calls do nothing, even after Stop.
func (c *Controller) Start(onDone func()) {
	if c.started {
		return
	}
	c.started = true
	c.onDone = onDone
	c.delay = c.sched.AfterFunc(c.opts.Delay, c.reveal)
}

func (c *Controller) reveal() {
	c.delay = nil
	anim.Parallel([]anim.Tween{
		{Value: c.image, To: 1, Duration: c.opts.ImageFade, Easing: c.opts.Easing},
		{Value: c.gradient, To: 1, Duration: c.opts.GradientFade, Easing: c.opts.Easing},
	}, func() {
		c.done = true
		if c.onDone != nil {
			c.onDone()
		}
	})
}

// Stop cancels a delay that has not fired and freezes running fades.
func (c *Controller) Stop() {
	c.delay.Stop()
	c.delay = nil
	c.image.Stop()
	c.gradient.Stop()
}

// Opacities of the image and the gradient at now.
func (c *Controller) Opacities(now time.Time) (image, gradient float64) {
	return c.image.At(now), c.gradient.At(now)
}

// Pending reports whether the delay is still armed.
func (c *Controller) Pending() bool {
	return c.delay.Active()
}

func (c *Controller) Done() bool {
	return c.done
}
