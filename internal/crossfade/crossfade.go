// Package crossfade blends between the two most recent images without a
// hard cut. The old image stays up until the new one has loaded and faded
// in; targets that arrive mid-transition collapse into a single pending one.
//
// All methods must be called on the loop.
package crossfade

import (
	"context"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/samber/mo"

	"github.com/0bVdnt/PixlFX/internal/anim"
	"github.com/0bVdnt/PixlFX/internal/loop"
)

const DefaultDuration = 500 * time.Millisecond

// Loader fetches and decodes an image. It runs off the loop.
type Loader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
}

type Options struct {
	Duration time.Duration
	Easing   anim.EasingFunc
	// ReverseFade fades the old layer out while the new one fades in.
	ReverseFade bool
	Logger      hclog.Logger
	// OnChange runs after any state change worth redrawing for.
	OnChange func()
}

type layer struct {
	uri string
	img image.Image
}

type Renderer struct {
	sched  loop.Scheduler
	loader Loader
	opts   Options
	log    hclog.Logger
	ctx    context.Context

	old      mo.Option[layer]
	next     mo.Option[layer]
	pending  mo.Option[string]
	progress *anim.Value

	// id of the transition in flight; load results for older ids are dropped
	id          uint64
	transitions int

	cache scaled
}

func New(sched loop.Scheduler, loader Loader, opts Options) *Renderer {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Easing == nil {
		opts.Easing = anim.Ease
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Renderer{
		sched:    sched,
		loader:   loader,
		opts:     opts,
		log:      log,
		ctx:      context.Background(),
		progress: anim.NewValue(sched, 0),
	}
}

// SetContext bounds future loads; cancelling it abandons them.
func (r *Renderer) SetContext(ctx context.Context) {
	r.ctx = ctx
}

// SetTarget requests uri as the displayed image.
func (r *Renderer) SetTarget(uri string) {
	if n, ok := r.next.Get(); ok {
		if uri == n.uri {
			r.pending = mo.None[string]()
		} else {
			r.pending = mo.Some(uri)
		}
		return
	}
	if o, ok := r.old.Get(); ok && o.uri == uri {
		return
	}
	r.begin(uri)
}

func (r *Renderer) begin(uri string) {
	r.id++
	id := r.id
	r.next = mo.Some(layer{uri: uri})
	r.progress.Set(0)
	r.transitions++
	r.log.Trace("transition started", "uri", uri)

	ctx := r.ctx
	loop.Async(r.sched, func() (image.Image, error) {
		return r.loader.Load(ctx, uri)
	}, func(img image.Image, err error) {
		n, ok := r.next.Get()
		if id != r.id || !ok || n.uri != uri {
			return
		}
		if err != nil {
			r.log.Warn("image load failed", "uri", uri, "error", err)
			r.next = mo.None[layer]()
			r.drain()
			r.changed()
			return
		}
		r.next = mo.Some(layer{uri: uri, img: img})
		r.progress.Animate(1, r.opts.Duration, r.opts.Easing, func() { r.complete(id) })
		r.changed()
	})
}

func (r *Renderer) complete(id uint64) {
	if id != r.id {
		return
	}
	n, ok := r.next.Get()
	if !ok {
		return
	}
	if o, ok := r.old.Get(); !ok || o.uri != n.uri {
		r.old = mo.Some(n)
	}
	r.next = mo.None[layer]()
	r.progress.Set(0)
	r.drain()
	r.changed()
}

func (r *Renderer) drain() {
	p, ok := r.pending.Get()
	if !ok {
		return
	}
	r.pending = mo.None[string]()
	if o, ok := r.old.Get(); ok && o.uri == p {
		return
	}
	r.begin(p)
}

func (r *Renderer) changed() {
	if r.opts.OnChange != nil {
		r.opts.OnChange()
	}
}

// Layers reports the identities on screen; next is empty when stable.
func (r *Renderer) Layers() (old, next string) {
	if o, ok := r.old.Get(); ok {
		old = o.uri
	}
	if n, ok := r.next.Get(); ok {
		next = n.uri
	}
	return old, next
}

// Pending is the target queued behind the transition in flight.
func (r *Renderer) Pending() (string, bool) {
	return r.pending.Get()
}

// Transitions counts transitions started so far.
func (r *Renderer) Transitions() int {
	return r.transitions
}

func (r *Renderer) InTransition() bool {
	return r.next.IsPresent()
}

// Opacities of the old and new layers at now. The new layer stays
// transparent until its image has loaded.
func (r *Renderer) Opacities(now time.Time) (old, next float64) {
	if r.old.IsPresent() {
		old = 1
	}
	n, ok := r.next.Get()
	if !ok || n.img == nil {
		return old, 0
	}
	p := r.progress.At(now)
	if r.opts.ReverseFade && r.old.IsPresent() {
		old = 1 - p
	}
	return old, p
}
