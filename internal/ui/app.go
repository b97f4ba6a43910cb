// Package ui is the terminal front end: it maps keys to player intents, draws
// the player state and wires every controller to the screen.
package ui

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/samber/lo"

	"github.com/0bVdnt/PixlFX/internal/ambient"
	"github.com/0bVdnt/PixlFX/internal/capture"
	"github.com/0bVdnt/PixlFX/internal/config"
	"github.com/0bVdnt/PixlFX/internal/fullscreen"
	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/media"
	"github.com/0bVdnt/PixlFX/internal/orientation"
	"github.com/0bVdnt/PixlFX/internal/player"
	"github.com/0bVdnt/PixlFX/internal/renderer"
)

const frameInterval = 33 * time.Millisecond

// App wires the controllers to the terminal and the ffmpeg engine.
type App struct {
	settings config.Settings
	log      hclog.Logger

	loop     *loop.Loop
	render   *renderer.Renderer
	engine   *media.FFmpegEngine
	engErr   error
	layout   *orientation.Layout
	player   *player.Controller
	screen   *fullscreen.Controller
	backdrop *ambient.Backdrop
	surface  *Surface

	current Layout
	cached  struct {
		img  *image.RGBA
		w, h int
	}
}

func New(settings config.Settings, log hclog.Logger) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}

	render, err := renderer.New()
	if err != nil {
		return nil, err
	}
	return newApp(settings, log, loop.New(clock.New()), render)
}

func newApp(settings config.Settings, log hclog.Logger, l *loop.Loop, render *renderer.Renderer) (*App, error) {
	a := &App{settings: settings, log: log, loop: l, render: render}

	var engine media.Engine
	var surface media.Surface
	a.engine, a.engErr = media.NewFFmpegEngine(media.Options{
		AutoPlay:     settings.AutoPlay,
		Looping:      settings.Looping,
		PollInterval: settings.PollInterval,
		Width:        settings.ViewportW,
		Height:       settings.ViewportH,
		Logger:       log.Named("media"),
	})
	if a.engErr != nil {
		log.Warn("starting without a video engine", "error", a.engErr)
	} else {
		engine, surface = a.engine, a.engine
	}

	var err error
	a.player, err = player.New(player.Config{
		Sources:   settings.Sources,
		HideDelay: settings.HideDelay,
		Logger:    log.Named("player"),
	}, l, engine)
	if err != nil {
		a.close()
		return nil, err
	}

	// The capturer exists even with capture off so a config reload can start it.
	format, err := capture.ParseFormat(settings.CaptureFormat)
	if err != nil {
		a.close()
		return nil, err
	}
	capturer, err := capture.NewFileCapturer(capture.Options{
		Dir:     settings.CaptureDir,
		Format:  format,
		Quality: settings.CaptureQuality,
		Keep:    settings.CaptureKeep,
		Logger:  log.Named("capture"),
	})
	if err != nil {
		a.close()
		return nil, err
	}

	if settings.AmbientEnabled {
		stops, err := ambient.ParseStops(settings.GradientColors, settings.GradientAlphas)
		if err != nil {
			log.Warn("bad gradient, using the default", "error", err)
			stops = ambient.DefaultStops()
		}
		a.backdrop = ambient.NewBackdrop(l, capture.NewLoader(), ambient.BackdropOptions{
			Options: ambient.Options{
				Delay:        settings.AmbientDelay,
				ImageFade:    settings.AmbientImageFade,
				GradientFade: settings.AmbientGradientFade,
			},
			Crossfade:    lo.Ternary(settings.AmbientCrossfade > 0, settings.AmbientCrossfade, settings.CrossfadeDuration),
			ReverseFade:  settings.CrossfadeReverse,
			BlurSigma:    settings.AmbientBlur,
			Stops:        stops,
			DefaultFrame: settings.DefaultFrame,
			Logger:       log.Named("ambient"),
			OnChange:     a.invalidate,
		})
	}

	a.layout = orientation.NewLayout(func(orientation.Orientation) {
		l.Post(a.relayout)
	})
	a.screen = fullscreen.New(fullscreen.Config{
		FrameInterval:      settings.FrameInterval,
		SerializeCapture:   settings.CaptureSerialize,
		OnFullScreenUpdate: a.onFullscreen,
		OnVideoFrame:       a.onVideoFrame,
		Logger:             log.Named("fullscreen"),
	}, l, a.layout, capturer, surface, a.player)

	a.surface = NewSurface(l, a.player, a.screen, log.Named("ui"))
	return a, nil
}

// Run blocks until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	if s := a.render.Screen(); s != nil {
		s.EnableMouse()
	}

	a.loop.Post(func() {
		a.player.Mount(ctx)
		a.screen.Mount(ctx)
		if a.backdrop != nil {
			a.backdrop.Start(ctx)
		}
		if a.engErr != nil {
			// no engine: the reload fails right away and shows why
			_ = a.player.HandleVideoReload()
		}
		a.relayout()
	})
	a.loop.Every(frameInterval, a.draw)

	go a.pollEvents(ctx, cancel)

	err := a.loop.Run(ctx)
	a.unmount()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ApplySettings takes the parts of a reloaded config that can change live.
// Safe from any goroutine.
func (a *App) ApplySettings(s config.Settings) {
	a.loop.Post(func() {
		a.log.Info("config changed", "video_frame_interval", s.FrameInterval)
		a.screen.SetFrameInterval(s.FrameInterval)
	})
}

func (a *App) pollEvents(ctx context.Context, quit context.CancelFunc) {
	for {
		ev := a.render.PollEvent()
		if ev == nil {
			return
		}
		a.loop.Post(func() {
			if a.handleEvent(ev) == EventQuit {
				quit()
			}
		})
		if ctx.Err() != nil {
			return
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) EventResult {
	if _, ok := ev.(*tcell.EventResize); ok {
		a.render.Sync()
		a.relayout()
		return EventContinue
	}
	return a.surface.HandleEvent(ev)
}

func (a *App) relayout() {
	w, h := a.render.Size()
	a.current = ComputeLayout(w, h, a.layout.Current())
	a.render.Clear()
	a.invalidate()

	if a.engine != nil {
		vw, vh := a.current.Video.Dx(), a.current.Video.Dy()
		engine := a.engine
		a.loop.Go(func() { engine.SetViewport(vw, vh) })
	}
}

func (a *App) onFullscreen(fs bool) {
	if a.backdrop != nil {
		a.backdrop.SetFullscreen(fs)
	}
	a.invalidate()
}

func (a *App) onVideoFrame(uri string) {
	a.log.Trace("frame captured", "uri", uri)
	if a.backdrop != nil {
		a.backdrop.SetFrame(uri)
	}
}

// invalidate drops the cached backdrop.
func (a *App) invalidate() {
	a.cached.img = nil
}

func (a *App) backdropImage(now time.Time) *image.RGBA {
	if a.backdrop == nil || a.backdrop.Hidden() {
		return nil
	}
	w, h := a.current.Cols, a.current.Rows*2
	cached := &a.cached
	if cached.img != nil && cached.w == w && cached.h == h && !a.backdrop.Animating() {
		return cached.img
	}
	cached.img, cached.w, cached.h = a.backdrop.Render(now, w, h), w, h
	return cached.img
}

func (a *App) draw() {
	now := a.loop.Now()
	v := View{
		Now:      now,
		Layout:   a.current,
		Backdrop: a.backdropImage(now),
	}
	if a.engine != nil {
		v.Frame = a.engine.CurrentFrame()
		v.Meta = a.engine.Metadata()
		v.Dropped = a.engine.DroppedFrames()
	}
	a.surface.Draw(a.render, v)
	a.render.Show()
}

func (a *App) unmount() {
	a.surface.Stop()
	a.screen.Unmount()
	a.player.Unmount()
	if a.backdrop != nil {
		a.backdrop.Stop()
	}
}

func (a *App) close() {
	a.loop.Close()
	if a.layout != nil {
		a.layout.Close()
	}
	if a.engine != nil {
		a.engine.Close()
	}
	a.render.Close()
}
