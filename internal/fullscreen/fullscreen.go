// Package fullscreen owns the fullscreen flag, the orientation lock that
// follows it, the back action while fullscreen, and periodic frame capture.
//
// All methods must be called on the loop.
package fullscreen

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/samber/mo"

	"github.com/0bVdnt/PixlFX/internal/capture"
	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/media"
	"github.com/0bVdnt/PixlFX/internal/orientation"
)

// Activity is told about user activity so the control overlay stays up.
type Activity interface {
	ResetControlsTimeout()
}

type Config struct {
	// FrameInterval is the capture period; zero disables capture.
	FrameInterval time.Duration
	// SerializeCapture skips a tick while the previous capture is running.
	SerializeCapture bool

	OnFullScreenUpdate func(fullscreen bool)
	OnVideoFrame       func(uri string)

	Logger hclog.Logger
}

type Controller struct {
	sched    loop.Scheduler
	locker   orientation.Locker
	capturer capture.Capturer
	surface  media.Surface
	activity Activity
	cfg      Config
	log      hclog.Logger

	fullscreen bool

	locking  bool
	queued   mo.Option[orientation.Orientation]
	lastLock mo.Option[orientation.Orientation]
	locks    int

	captureTimer *loop.Timer
	inFlight     int

	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool
}

// New wires the controller. locker, capturer, surface and activity may be
// nil; the matching side effect is then skipped.
func New(cfg Config, sched loop.Scheduler, locker orientation.Locker, capturer capture.Capturer, surface media.Surface, activity Activity) *Controller {
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Controller{
		sched:    sched,
		locker:   locker,
		capturer: capturer,
		surface:  surface,
		activity: activity,
		cfg:      cfg,
		log:      log,
		ctx:      context.Background(),
	}
}

// Mount starts frame capture if an interval is configured.
func (c *Controller) Mount(ctx context.Context) {
	if c.mounted {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mounted = true
	c.startCapture()
}

// Unmount stops capture, drops queued locks and leaves fullscreen.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.stopCapture()
	c.queued = mo.None[orientation.Orientation]()

	if c.fullscreen {
		c.fullscreen = false
		c.notify()
		if c.locker != nil {
			ctx := context.WithoutCancel(c.ctx)
			locker := c.locker
			c.sched.Go(func() {
				if err := locker.Lock(ctx, orientation.Portrait); err != nil {
					c.log.Warn("orientation restore failed", "error", err)
				}
			})
		}
	}

	c.mounted = false
	c.cancel()
}

func (c *Controller) IsFullscreen() bool {
	return c.fullscreen
}

// Toggle flips fullscreen right away; the orientation lock follows
// asynchronously and its failure does not undo the flip.
func (c *Controller) Toggle() {
	c.fullscreen = !c.fullscreen
	target := orientation.Portrait
	if c.fullscreen {
		target = orientation.Landscape
	}
	c.log.Debug("fullscreen toggled", "fullscreen", c.fullscreen)

	c.requestLock(target)
	c.notify()
	if c.activity != nil {
		c.activity.ResetControlsTimeout()
	}
}

// HandleBackAction consumes the back action while fullscreen by leaving
// fullscreen. It returns false otherwise so the default back runs.
func (c *Controller) HandleBackAction() bool {
	if !c.fullscreen {
		return false
	}
	c.Toggle()
	return true
}

func (c *Controller) notify() {
	if c.cfg.OnFullScreenUpdate != nil {
		c.cfg.OnFullScreenUpdate(c.fullscreen)
	}
}

// requestLock runs one lock at a time. While one is in flight only the most
// recent request is kept.
func (c *Controller) requestLock(o orientation.Orientation) {
	if c.locker == nil || !c.mounted {
		return
	}
	if c.locking {
		c.queued = mo.Some(o)
		return
	}

	c.locking = true
	c.lastLock = mo.Some(o)
	c.locks++
	ctx := c.ctx
	locker := c.locker
	loop.Async(c.sched, func() (struct{}, error) {
		return struct{}{}, locker.Lock(ctx, o)
	}, func(_ struct{}, err error) {
		c.locking = false
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("orientation lock failed", "orientation", o, "error", err)
		}
		if !c.mounted {
			return
		}
		next, ok := c.queued.Get()
		if !ok {
			return
		}
		c.queued = mo.None[orientation.Orientation]()
		if last, ok := c.lastLock.Get(); ok && last == next && err == nil {
			return
		}
		c.requestLock(next)
	})
}

// LockRequests counts the lock calls issued so far.
func (c *Controller) LockRequests() int {
	return c.locks
}

// SetFrameInterval replaces the capture period, restarting the timer.
func (c *Controller) SetFrameInterval(d time.Duration) {
	if d == c.cfg.FrameInterval {
		return
	}
	c.cfg.FrameInterval = d
	if !c.mounted {
		return
	}
	c.stopCapture()
	c.startCapture()
}

func (c *Controller) FrameInterval() time.Duration {
	return c.cfg.FrameInterval
}

// Capturing reports whether the capture timer is armed.
func (c *Controller) Capturing() bool {
	return c.captureTimer.Active()
}

func (c *Controller) startCapture() {
	if c.cfg.FrameInterval <= 0 || c.capturer == nil {
		return
	}
	c.captureTimer = c.sched.Every(c.cfg.FrameInterval, c.captureTick)
}

func (c *Controller) stopCapture() {
	c.captureTimer.Stop()
	c.captureTimer = nil
}

func (c *Controller) captureTick() {
	if c.cfg.SerializeCapture && c.inFlight > 0 {
		c.log.Trace("capture still running, skipping tick")
		return
	}

	c.inFlight++
	ctx := c.ctx
	capturer, surface := c.capturer, c.surface
	loop.Async(c.sched, func() (string, error) {
		return capturer.Capture(ctx, surface)
	}, func(uri string, err error) {
		c.inFlight--
		if !c.mounted {
			return
		}
		if err != nil {
			if errors.Is(err, capture.ErrNoFrame) {
				c.log.Trace("nothing to capture yet")
			} else {
				c.log.Warn("frame capture failed", "error", err)
			}
			return
		}
		if c.cfg.OnVideoFrame != nil {
			c.cfg.OnVideoFrame(uri)
		}
	})
}
