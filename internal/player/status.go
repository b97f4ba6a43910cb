package player

import (
	"context"

	"github.com/samber/mo"

	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/media"
)

// HandleLoadStart runs when the engine starts loading a source.
func (c *Controller) HandleLoadStart() {
	c.loading = true
}

// HandleVideoLoad runs when the engine finished loading a source.
func (c *Controller) HandleVideoLoad() {
	c.loading = false
	c.everLoaded = true
	c.playing = true
	if c.mounted {
		c.controls.show()
	}
}

// HandleEngineError records an error event from the engine.
func (c *Controller) HandleEngineError(err error) {
	if err == nil {
		return
	}
	c.log.Error("engine error", "uri", c.Source(), "error", err)
	c.fail(&engineFailure{err: err})
}

// HandlePlaybackStatusUpdate is the single entry point for engine status.
func (c *Controller) HandlePlaybackStatusUpdate(status media.Status) {
	if status.URI != "" && status.URI != c.Source() {
		return
	}

	if !status.Loaded {
		c.fail(&LoadFailure{URI: c.Source()})
		return
	}

	c.status = mo.Some(status)
	c.everLoaded = true
	c.loading = status.ShouldPlay && !status.IsPlaying

	if !status.JustFinished {
		c.finishLatched = false
		return
	}
	// The engine may repeat the end notification; advance once per end.
	if c.finishLatched {
		return
	}
	c.finishLatched = true
	c.log.Debug("source finished", "uri", c.Source())
	c.HandleNextTrack()
}

// HandleVideoReload reloads the current source and resumes from the last
// known position. It is the only way out of the error overlay.
func (c *Controller) HandleVideoReload() error {
	if c.engine == nil {
		c.fail(ErrEngineUnavailable)
		return ErrEngineUnavailable
	}
	if !c.mounted {
		return ErrNotMounted
	}
	if c.reloading {
		return nil
	}

	c.reloading = true
	gen := c.gen.Load()
	uri := c.Source()
	engine := c.engine
	ctx := c.ctx

	loop.Async(c.sched, func() (media.Status, error) {
		return engine.Status(ctx)
	}, func(st media.Status, err error) {
		if !c.mounted {
			return
		}
		if gen != c.gen.Load() {
			// A track change won; its own load covers the new source.
			c.reloading = false
			return
		}
		if err != nil {
			c.reloading = false
			c.reloadFailed(uri, err)
			return
		}

		c.loading = true
		c.clearFailure()
		resumeAt := st.Position

		c.enqueue(op{
			name: "reload",
			gen:  gen,
			run: func(ctx context.Context) error {
				if err := engine.Unload(ctx); err != nil {
					return err
				}
				if err := engine.Load(ctx, uri); err != nil {
					return err
				}
				if err := engine.Seek(ctx, resumeAt); err != nil {
					return err
				}
				return engine.Play(ctx)
			},
			done: func(err error) {
				if gen != c.gen.Load() {
					return
				}
				c.reloading = false
				if err != nil {
					c.reloadFailed(uri, err)
				}
			},
		})
	})
	return nil
}

func (c *Controller) reloadFailed(uri string, err error) {
	c.log.Warn("reload failed", "uri", uri, "error", err)
	c.fail(&ReloadFailure{URI: uri, Err: err})
}
