package crossfade

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0bVdnt/PixlFX/internal/anim"
	"github.com/0bVdnt/PixlFX/internal/loop"
)

type fakeLoader struct {
	mu     sync.Mutex
	loaded []string
	colors map[string]color.NRGBA
	fail   map[string]bool
}

func (f *fakeLoader) Load(_ context.Context, uri string) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, uri)
	if f.fail[uri] {
		return nil, errors.New("not found")
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	c, ok := f.colors[uri]
	if !ok {
		c = color.NRGBA{A: 255}
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

func (f *fakeLoader) Loaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loaded...)
}

func setup(opts Options) (*clock.Mock, *loop.Loop, *fakeLoader, *Renderer) {
	clk := clock.NewMock()
	l := loop.New(clk)
	ld := &fakeLoader{
		colors: map[string]color.NRGBA{
			"red":  {R: 255, A: 255},
			"blue": {B: 255, A: 255},
		},
		fail: map[string]bool{},
	}
	if opts.Easing == nil {
		opts.Easing = anim.Linear
	}
	return clk, l, ld, New(l, ld, opts)
}

func TestFirstImageFadesIn(t *testing.T) {
	clk, l, _, r := setup(Options{})

	r.SetTarget("a")
	old, next := r.Layers()
	assert.Empty(t, old)
	assert.Equal(t, "a", next)

	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()

	old, next = r.Layers()
	assert.Equal(t, "a", old)
	assert.Empty(t, next)
	assert.False(t, r.InTransition())
	assert.Equal(t, 1, r.Transitions())
}

func TestSameTargetIsNoop(t *testing.T) {
	clk, l, _, r := setup(Options{})
	r.SetTarget("a")
	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()

	r.SetTarget("a")
	assert.False(t, r.InTransition())
	assert.Equal(t, 1, r.Transitions())
}

func TestMidTransitionTargetsCoalesce(t *testing.T) {
	clk, l, ld, r := setup(Options{})
	r.SetTarget("a")
	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()

	r.SetTarget("b")
	l.Settle()
	r.SetTarget("c")
	r.SetTarget("d")
	r.SetTarget("e")
	pending, ok := r.Pending()
	require.True(t, ok)
	assert.Equal(t, "e", pending)

	clk.Add(DefaultDuration)
	l.Settle()
	old, next := r.Layers()
	assert.Equal(t, "b", old)
	assert.Equal(t, "e", next)

	clk.Add(DefaultDuration)
	l.Settle()
	old, next = r.Layers()
	assert.Equal(t, "e", old)
	assert.Empty(t, next)

	assert.Equal(t, 3, r.Transitions())
	assert.Equal(t, []string{"a", "b", "e"}, ld.Loaded())
}

func TestPendingEqualToPromotedIsDropped(t *testing.T) {
	clk, l, _, r := setup(Options{})
	r.SetTarget("a")
	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()

	r.SetTarget("b")
	r.SetTarget("c")
	r.SetTarget("b")
	_, ok := r.Pending()
	assert.False(t, ok)

	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()
	assert.False(t, r.InTransition())
	assert.Equal(t, 2, r.Transitions())
}

func TestFailedLoadKeepsOldAndDrains(t *testing.T) {
	clk, l, ld, r := setup(Options{})
	ld.fail["broken"] = true

	r.SetTarget("a")
	l.Settle()
	clk.Add(DefaultDuration)
	l.Settle()

	r.SetTarget("broken")
	r.SetTarget("c")
	l.Settle()

	old, next := r.Layers()
	assert.Equal(t, "a", old)
	assert.Equal(t, "c", next)

	clk.Add(DefaultDuration)
	l.Settle()
	old, _ = r.Layers()
	assert.Equal(t, "c", old)
}

func TestOpacities(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		clk, l, _, r := setup(Options{ReverseFade: reverse})
		r.SetTarget("a")
		l.Settle()
		clk.Add(DefaultDuration)
		l.Settle()

		r.SetTarget("b")
		oldA, nextA := r.Opacities(clk.Now())
		assert.Equal(t, 1.0, oldA)
		assert.Equal(t, 0.0, nextA, "new layer hidden until loaded")

		l.Settle()
		clk.Add(DefaultDuration / 2)
		oldA, nextA = r.Opacities(clk.Now())
		assert.InDelta(t, 0.5, nextA, 1e-9)
		if reverse {
			assert.InDelta(t, 0.5, oldA, 1e-9)
		} else {
			assert.Equal(t, 1.0, oldA)
		}
	}
}

func TestComposeBlends(t *testing.T) {
	clk, l, _, r := setup(Options{Duration: time.Second})
	assert.Nil(t, r.Compose(clk.Now(), 4, 4))

	r.SetTarget("red")
	l.Settle()
	clk.Add(time.Second)
	l.Settle()

	img := r.Compose(clk.Now(), 2, 2)
	require.NotNil(t, img)
	px := img.RGBAAt(0, 0)
	assert.InDelta(t, 255, int(px.R), 1)
	assert.Equal(t, uint8(0), px.B)

	r.SetTarget("blue")
	l.Settle()
	clk.Add(500 * time.Millisecond)
	img = r.Compose(clk.Now(), 2, 2)
	px = img.RGBAAt(1, 1)
	assert.InDelta(t, 128, int(px.R), 1)
	assert.InDelta(t, 128, int(px.B), 1)
}
