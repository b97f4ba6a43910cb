package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// setLocked writes one widget cell; the image under it is repainted next time.
func (r *Renderer) setLocked(x, y int, ch rune, style tcell.Style) {
	r.screen.SetContent(x, y, ch, nil, style)
	r.cache.forget(x, y)
}

// rowLocked reports the screen width if row y is on screen.
func (r *Renderer) rowLocked(y int) (int, bool) {
	if !r.liveLocked() {
		return 0, false
	}
	w, h := r.screen.Size()
	return w, y >= 0 && y < h
}

// DrawText writes text from (x, y), clipped to the screen.
func (r *Renderer) DrawText(x, y int, text string, style tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rowLocked(y)
	if !ok {
		return
	}
	for _, ch := range text {
		if x >= 0 && x < w {
			r.setLocked(x, y, ch, style)
		}
		x++
	}
}

func (r *Renderer) DrawCentered(y int, text string, style tcell.Style) {
	w, _ := r.Size()
	r.DrawText(max((w-len([]rune(text)))/2, 0), y, text, style)
}

// FillLine paints row y with blanks in style.
func (r *Renderer) FillLine(y int, style tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rowLocked(y)
	if !ok {
		return
	}
	for x := range w {
		r.setLocked(x, y, ' ', style)
	}
}

// RenderMessage shows msg centred on a full-width band.
func (r *Renderer) RenderMessage(y int, msg string, bg tcell.Color) {
	style := tcell.StyleDefault.Background(bg).Foreground(tcell.ColorWhite)
	r.FillLine(y, style)
	r.DrawCentered(y, msg, style)
}

// ProgressBar draws a bar over columns [x0, x1) with a marker at progress.
func (r *Renderer) ProgressBar(x0, x1, y int, progress float64, filled, empty, marker tcell.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rowLocked(y)
	if !ok {
		return
	}
	x0, x1 = max(x0, 0), min(x1, w)
	width := x1 - x0
	if width < 2 {
		return
	}

	at := x0 + int(float64(width-1)*lo.Clamp(progress, 0, 1))
	for x := x0; x < x1; x++ {
		switch {
		case x == at:
			r.setLocked(x, y, '●', marker)
		case x < at:
			r.setLocked(x, y, '━', filled)
		default:
			r.setLocked(x, y, '─', empty)
		}
	}
}

// Fade blends fg over bg at alpha, clamped to [0, 1].
func Fade(fg, bg colorful.Color, alpha float64) tcell.Color {
	c := bg.BlendRgb(fg, lo.Clamp(alpha, 0, 1)).Clamped()
	cr, cg, cb := c.RGB255()
	return tcell.NewRGBColor(int32(cr), int32(cg), int32(cb))
}
