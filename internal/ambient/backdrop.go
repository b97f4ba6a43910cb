package ambient

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/0bVdnt/PixlFX/internal/crossfade"
	"github.com/0bVdnt/PixlFX/internal/loop"
)

const (
	DefaultCrossfade = 4000 * time.Millisecond
	DefaultBlurSigma = 6.0
)

// Stop is one colour stop of the overlay gradient, top to bottom.
type Stop struct {
	Color colorful.Color
	Alpha float64
}

// DefaultStops darkens towards the bottom: black at 0.2, 0.5 and 1.
func DefaultStops() []Stop {
	black := colorful.Color{}
	return []Stop{{black, 0.2}, {black, 0.5}, {black, 1}}
}

// ParseStops builds stops from hex colours and matching alphas.
func ParseStops(colors []string, alphas []float64) ([]Stop, error) {
	if len(colors) != len(alphas) {
		return nil, fmt.Errorf("ambient: %d gradient colours but %d alphas", len(colors), len(alphas))
	}
	if len(colors) < 2 {
		return nil, fmt.Errorf("ambient: gradient needs at least two stops")
	}
	stops := make([]Stop, len(colors))
	for i, hex := range colors {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("ambient: stop %d: %w", i, err)
		}
		stops[i] = Stop{Color: c, Alpha: math.Max(0, math.Min(1, alphas[i]))}
	}
	return stops, nil
}

type BackdropOptions struct {
	Options
	Crossfade    time.Duration
	ReverseFade  bool
	BlurSigma    float64
	Stops        []Stop
	// DefaultFrame is shown until the first captured frame arrives.
	DefaultFrame string
	Logger       hclog.Logger
	OnChange     func()
}

// Backdrop is the ambient view: captured frames crossfade into each other,
// blurred, under the gradient. It hides while the player is fullscreen.
type Backdrop struct {
	ctrl   *Controller
	fade   *crossfade.Renderer
	opts   BackdropOptions
	hidden bool
}

func NewBackdrop(sched loop.Scheduler, loader crossfade.Loader, opts BackdropOptions) *Backdrop {
	if opts.Crossfade <= 0 {
		opts.Crossfade = DefaultCrossfade
	}
	if opts.BlurSigma <= 0 {
		opts.BlurSigma = DefaultBlurSigma
	}
	if len(opts.Stops) < 2 {
		opts.Stops = DefaultStops()
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	return &Backdrop{
		ctrl: NewController(sched, opts.Options),
		fade: crossfade.New(sched, loader, crossfade.Options{
			Duration:    opts.Crossfade,
			ReverseFade: opts.ReverseFade,
			Logger:      log.Named("crossfade"),
			OnChange:    opts.OnChange,
		}),
		opts: opts,
	}
}

func (b *Backdrop) Start(ctx context.Context) {
	b.fade.SetContext(ctx)
	if b.opts.DefaultFrame != "" {
		b.fade.SetTarget(b.opts.DefaultFrame)
	}
	b.ctrl.Start(b.opts.OnChange)
}

func (b *Backdrop) Stop() {
	b.ctrl.Stop()
}

// SetFrame feeds a newly captured frame.
func (b *Backdrop) SetFrame(uri string) {
	b.fade.SetTarget(uri)
}

func (b *Backdrop) SetFullscreen(fullscreen bool) {
	b.hidden = fullscreen
}

func (b *Backdrop) Hidden() bool {
	return b.hidden
}

// Animating reports whether a redraw would differ from the last one.
func (b *Backdrop) Animating() bool {
	return b.ctrl.Pending() || (b.ctrl.started && !b.ctrl.Done()) || b.fade.InTransition()
}

// Render draws the backdrop at w x h pixels, or returns nil while hidden.
func (b *Backdrop) Render(now time.Time, w, h int) *image.RGBA {
	if b.hidden || w <= 0 || h <= 0 {
		return nil
	}
	imageA, gradientA := b.ctrl.Opacities(now)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if base := b.fade.Compose(now, w, h); base != nil && imageA > 0 {
		blurred := imaging.Blur(base, b.opts.BlurSigma)
		for i := 0; i < len(out.Pix); i += 4 {
			out.Pix[i] = uint8(float64(blurred.Pix[i]) * imageA)
			out.Pix[i+1] = uint8(float64(blurred.Pix[i+1]) * imageA)
			out.Pix[i+2] = uint8(float64(blurred.Pix[i+2]) * imageA)
		}
	}

	for y := 0; y < h; y++ {
		var f float64
		if h > 1 {
			f = float64(y) / float64(h-1)
		}
		stop := b.stopAt(f)
		a := stop.Alpha * gradientA
		sr, sg, sb := stop.Color.R*255, stop.Color.G*255, stop.Color.B*255

		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = uint8(float64(row[i])*(1-a) + sr*a + 0.5)
			row[i+1] = uint8(float64(row[i+1])*(1-a) + sg*a + 0.5)
			row[i+2] = uint8(float64(row[i+2])*(1-a) + sb*a + 0.5)
			row[i+3] = 0xff
		}
	}
	return out
}

// stopAt interpolates the gradient at f in [0,1]; stops are evenly spaced.
func (b *Backdrop) stopAt(f float64) Stop {
	stops := b.opts.Stops
	seg := f * float64(len(stops)-1)
	i := int(seg)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	t := seg - float64(i)
	return Stop{
		Color: stops[i].Color.BlendRgb(stops[i+1].Color, t).Clamped(),
		Alpha: stops[i].Alpha + (stops[i+1].Alpha-stops[i].Alpha)*t,
	}
}
