// Package player is the playback controller: transport state, the source
// list, the control overlay timer and the error overlay.
//
// Every method must be called on the loop. Engine calls run off the loop,
// one at a time, and their results come back through the loop.
package player

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/samber/mo"

	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/media"
)

type Config struct {
	Sources []string

	HideDelay    time.Duration
	ShowDuration time.Duration
	HideDuration time.Duration

	Logger hclog.Logger
}

type Controller struct {
	sched  loop.Scheduler
	engine media.Engine
	log    hclog.Logger

	sources []string
	index   int
	// gen bumps on every source change; async results carry the gen they
	// were issued under and are dropped if it moved on.
	gen atomic.Uint64

	playing    bool
	loading    bool
	muted      bool
	seeking    bool
	everLoaded bool
	failure    mo.Option[error]
	status     mo.Option[media.Status]

	finishLatched bool
	reloading     bool

	controls *visibility
	ops      []op
	busy     bool

	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool
}

// errStaleOp is handed to done when an op is dropped because the source
// changed before it could run.
var errStaleOp = errors.New("engine call superseded by a source change")

// op is one engine call. Ops run strictly one after another. done runs
// exactly once, with errStaleOp if the op was skipped.
type op struct {
	name string
	gen  uint64
	run  func(ctx context.Context) error
	done func(err error)
}

func New(cfg Config, sched loop.Scheduler, engine media.Engine) (*Controller, error) {
	if len(cfg.Sources) == 0 {
		return nil, ErrEmptySources
	}
	if cfg.HideDelay <= 0 {
		cfg.HideDelay = DefaultHideDelay
	}
	if cfg.ShowDuration <= 0 {
		cfg.ShowDuration = DefaultShowDuration
	}
	if cfg.HideDuration <= 0 {
		cfg.HideDuration = DefaultHideDuration
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	sources := make([]string, len(cfg.Sources))
	copy(sources, cfg.Sources)

	return &Controller{
		sched:    sched,
		engine:   engine,
		log:      log,
		sources:  sources,
		controls: newVisibility(sched, cfg.HideDelay, cfg.ShowDuration, cfg.HideDuration),
	}, nil
}

// Mount subscribes to engine events and loads the first source.
func (c *Controller) Mount(ctx context.Context) {
	if c.mounted {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mounted = true
	c.ops = nil
	c.busy = false
	c.controls.reset()

	if c.engine != nil {
		c.subscribe(c.engine)
		c.loadCurrent()
	}
}

// Unmount cancels every timer and pending engine call and stops listening
// to the engine. Callbacks that arrive afterwards are ignored.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.cancel()
	c.controls.stop()
	c.ops = nil
	c.busy = false
	c.reloading = false
	c.gen.Add(1)
}

func (c *Controller) subscribe(engine media.Engine) {
	events := engine.Events()
	if events == nil {
		return
	}
	ctx := c.ctx
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				c.sched.Post(func() { c.handleEvent(ev) })
			}
		}
	}()
}

func (c *Controller) handleEvent(ev media.Event) {
	if !c.mounted {
		return
	}
	if ev.Status.URI != "" && ev.Status.URI != c.Source() {
		c.log.Trace("dropping event for previous source", "kind", ev.Kind, "uri", ev.Status.URI)
		return
	}

	switch ev.Kind {
	case media.EventLoadStart:
		c.HandleLoadStart()
	case media.EventLoaded:
		c.HandleVideoLoad()
	case media.EventStatus:
		c.HandlePlaybackStatusUpdate(ev.Status)
	case media.EventError:
		c.HandleEngineError(ev.Err)
	}
}

// Source is the current element of the source list.
func (c *Controller) Source() string {
	return c.sources[c.index]
}

// Index of the current source.
func (c *Controller) Index() int {
	return c.index
}

// Sources returns a copy of the source list.
func (c *Controller) Sources() []string {
	out := make([]string, len(c.sources))
	copy(out, c.sources)
	return out
}

func (c *Controller) Snapshot() Snapshot {
	errMsg := ""
	var failure error
	if err, ok := c.failure.Get(); ok {
		failure = err
		errMsg = err.Error()
	}
	status, hasStatus := c.status.Get()

	return Snapshot{
		Sources:          c.Sources(),
		Index:            c.index,
		Source:           c.Source(),
		Mode:             deriveMode(failure != nil, c.seeking, c.loading, c.playing, c.everLoaded),
		Playing:          c.playing && !c.seeking,
		Loading:          c.loading,
		Muted:            c.muted,
		Live:             media.IsLive(c.Source()),
		Seeking:          c.seeking,
		Error:            errMsg,
		Failure:          failure,
		Status:           status,
		HasStatus:        hasStatus,
		ControlsVisible:  c.controls.visible,
		ControlsOpacity:  c.controls.progress.Current(),
		ControlsDeadline: c.controls.deadlineAt(),
	}
}

func (c *Controller) setSource(index int) {
	c.reloading = false
	c.seeking = false
	if index == c.index {
		// Same source again (single-item list): still reload it.
		c.gen.Add(1)
		c.loadCurrent()
		return
	}
	c.index = index
	c.gen.Add(1)
	c.log.Info("source changed", "index", index, "uri", c.Source())
	c.loadCurrent()
}

func (c *Controller) loadCurrent() {
	if !c.mounted || c.engine == nil {
		return
	}
	uri := c.Source()
	gen := c.gen.Load()
	c.enqueue(op{
		name: "load",
		gen:  gen,
		run:  func(ctx context.Context) error { return c.engine.Load(ctx, uri) },
		done: func(err error) {
			if err == nil || gen != c.gen.Load() {
				return
			}
			c.log.Warn("load failed", "uri", uri, "error", err)
			c.fail(&LoadFailure{URI: uri, Err: err})
		},
	})
}

// call queues a fire-and-forget engine call; failures are logged.
func (c *Controller) call(name string, run func(ctx context.Context) error) {
	if !c.mounted || c.engine == nil {
		return
	}
	c.enqueue(op{
		name: name,
		gen:  c.gen.Load(),
		run:  run,
		done: func(err error) {
			if err != nil && !errors.Is(err, errStaleOp) {
				c.log.Warn("engine call failed", "op", name, "error", err)
			}
		},
	})
}

func (c *Controller) enqueue(o op) {
	c.ops = append(c.ops, o)
	c.pump()
}

func (c *Controller) pump() {
	for !c.busy && len(c.ops) > 0 {
		o := c.ops[0]
		c.ops = c.ops[1:]
		if o.gen != c.gen.Load() {
			c.log.Trace("skipping stale engine call", "op", o.name)
			if o.done != nil {
				o.done(errStaleOp)
			}
			continue
		}

		c.busy = true
		ctx := c.ctx
		loop.Async(c.sched, func() (struct{}, error) {
			return struct{}{}, o.run(ctx)
		}, func(_ struct{}, err error) {
			if !c.mounted || ctx != c.ctx {
				return
			}
			c.busy = false
			if o.done != nil {
				o.done(err)
			}
			c.pump()
		})
	}
}

func (c *Controller) fail(err error) {
	c.failure = mo.Some(err)
	c.loading = false
}

func (c *Controller) clearFailure() {
	c.failure = mo.None[error]()
}
