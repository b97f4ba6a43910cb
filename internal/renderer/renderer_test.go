package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T, w, h int) (*Renderer, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	r, err := NewWithScreen(sim)
	require.NoError(t, err)
	sim.SetSize(w, h)
	t.Cleanup(r.Close)
	return r, sim
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderImageHalfBlocks(t *testing.T) {
	r, sim := newSim(t, 4, 2)

	img := solid(4, 4, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	r.RenderImage(img, 0, 0)
	r.Show()

	ch, _, style, _ := sim.GetContent(0, 0)
	assert.Equal(t, '▀', ch)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
	assert.Len(t, r.cache.cells, 8)
}

func TestWidgetsInvalidateImageCache(t *testing.T) {
	r, sim := newSim(t, 6, 3)
	img := solid(6, 6, color.RGBA{G: 200, A: 255})

	r.RenderImage(img, 0, 0)
	r.DrawText(1, 1, "hi", tcell.StyleDefault)
	ch, _, _, _ := sim.GetContent(1, 1)
	assert.Equal(t, 'h', ch)

	r.RenderImage(img, 0, 0)
	ch, _, _, _ = sim.GetContent(1, 1)
	assert.Equal(t, '▀', ch, "image repaints the cell the text covered")
}

func TestProgressBar(t *testing.T) {
	r, sim := newSim(t, 12, 1)
	r.ProgressBar(1, 11, 0, 0.5, tcell.StyleDefault, tcell.StyleDefault, tcell.StyleDefault)

	ch, _, _, _ := sim.GetContent(1, 0)
	assert.Equal(t, '━', ch)
	ch, _, _, _ = sim.GetContent(5, 0)
	assert.Equal(t, '●', ch)
	ch, _, _, _ = sim.GetContent(10, 0)
	assert.Equal(t, '─', ch)
}

func TestDrawTextClips(t *testing.T) {
	r, sim := newSim(t, 3, 1)
	r.DrawText(-1, 0, "abcde", tcell.StyleDefault)

	ch, _, _, _ := sim.GetContent(0, 0)
	assert.Equal(t, 'b', ch)
	ch, _, _, _ = sim.GetContent(2, 0)
	assert.Equal(t, 'd', ch)
}

func TestFade(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}

	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), Fade(white, black, 1))
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), Fade(white, black, 0))
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), Fade(white, black, -2))
}

func TestClosedRendererIsInert(t *testing.T) {
	r, _ := newSim(t, 3, 1)
	r.Close()
	assert.True(t, r.IsClosed())
	assert.Nil(t, r.PollEvent())

	r.DrawText(0, 0, "x", tcell.StyleDefault)
	r.RenderImage(solid(2, 2, color.RGBA{A: 255}), 0, 0)
	w, h := r.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

func TestRenderImageHonoursBoundsOrigin(t *testing.T) {
	r, sim := newSim(t, 2, 1)

	img := solid(4, 2, color.RGBA{A: 255})
	img.SetRGBA(2, 0, color.RGBA{G: 255, A: 255})
	r.RenderImage(img.SubImage(image.Rect(2, 0, 4, 2)).(*image.RGBA), 0, 0)
	r.Show()

	_, _, style, _ := sim.GetContent(0, 0)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg)
}

func TestUnchangedCellsAreSkipped(t *testing.T) {
	r, sim := newSim(t, 2, 1)
	img := solid(2, 2, color.RGBA{R: 10, A: 255})

	r.RenderImage(img, 0, 0)
	sim.SetContent(0, 0, 'x', nil, tcell.StyleDefault)
	r.RenderImage(img, 0, 0)
	ch, _, _, _ := sim.GetContent(0, 0)
	assert.Equal(t, 'x', ch, "cache still holds the cell")

	r.Clear()
	r.RenderImage(img, 0, 0)
	ch, _, _, _ = sim.GetContent(0, 0)
	assert.Equal(t, '▀', ch)
}
