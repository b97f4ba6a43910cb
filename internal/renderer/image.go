package renderer

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// cellCache remembers the two packed pixel colours last drawn into every
// screen cell, so unchanged cells are not sent to the terminal again.
type cellCache struct {
	w, h  int
	cells []uint64
}

// unknown never equals a packed colour pair, which only uses 48 bits.
const unknown = ^uint64(0)

func (c *cellCache) fit(w, h int) {
	if c.w == w && c.h == h && len(c.cells) == w*h {
		return
	}
	c.w, c.h = w, h
	c.cells = make([]uint64, w*h)
	c.reset()
}

func (c *cellCache) reset() {
	for i := range c.cells {
		c.cells[i] = unknown
	}
}

// swap stores v for (x, y) and reports whether it differs from before.
func (c *cellCache) swap(x, y int, v uint64) bool {
	i := y*c.w + x
	if c.cells[i] == v {
		return false
	}
	c.cells[i] = v
	return true
}

func (c *cellCache) forget(x, y int) {
	if x >= 0 && y >= 0 && x < c.w && y < c.h {
		c.cells[y*c.w+x] = unknown
	}
}

// RenderImage draws img with its top-left pixel at cell (x0, y0). Each cell
// shows two pixel rows: the top as foreground of a half block, the bottom as
// background.
func (r *Renderer) RenderImage(img *image.RGBA, x0, y0 int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img == nil || !r.liveLocked() {
		return
	}

	b := img.Bounds()
	sw, sh := r.screen.Size()
	if b.Empty() || sw <= 0 || sh <= 0 {
		return
	}
	r.cache.fit(sw, sh)

	for py := b.Min.Y; py < b.Max.Y; py += 2 {
		cy := y0 + (py-b.Min.Y)/2
		if cy < 0 || cy >= sh {
			continue
		}
		for px := b.Min.X; px < b.Max.X; px++ {
			cx := x0 + px - b.Min.X
			if cx < 0 || cx >= sw {
				continue
			}

			top := img.Pix[img.PixOffset(px, py):]
			bot := top
			if py+1 < b.Max.Y {
				bot = img.Pix[img.PixOffset(px, py+1):]
			}
			if !r.cache.swap(cx, cy, pack(top, bot)) {
				continue
			}

			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top[0]), int32(top[1]), int32(top[2]))).
				Background(tcell.NewRGBColor(int32(bot[0]), int32(bot[1]), int32(bot[2])))
			r.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
}

func pack(top, bot []uint8) uint64 {
	return uint64(top[0])<<40 | uint64(top[1])<<32 | uint64(top[2])<<24 |
		uint64(bot[0])<<16 | uint64(bot[1])<<8 | uint64(bot[2])
}
