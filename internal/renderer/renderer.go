// Package renderer draws half-block images and text widgets into a tcell
// screen. All methods are safe for concurrent use; after Close they do
// nothing.
package renderer

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Size reported once the screen is gone.
const (
	fallbackCols = 80
	fallbackRows = 24
)

type Renderer struct {
	mu     sync.Mutex
	screen tcell.Screen
	cache  cellCache
}

// New opens the controlling terminal.
func New() (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen)
}

// NewWithScreen takes over screen; tests pass a simulation screen.
func NewWithScreen(screen tcell.Screen) (*Renderer, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.HideCursor()
	screen.Clear()
	return &Renderer{screen: screen}, nil
}

func (r *Renderer) liveLocked() bool {
	return r.screen != nil
}

// Screen is nil once closed.
func (r *Renderer) Screen() tcell.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Size in cells.
func (r *Renderer) Size() (cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.liveLocked() {
		return fallbackCols, fallbackRows
	}
	return r.screen.Size()
}

// PixelSize is Size with two pixels per cell vertically.
func (r *Renderer) PixelSize() (w, h int) {
	cols, rows := r.Size()
	return cols, rows * 2
}

// Clear blanks the screen; the next image repaints every cell.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liveLocked() {
		r.screen.Clear()
	}
	r.cache.reset()
}

// Sync redraws the whole terminal, e.g. after a resize.
func (r *Renderer) Sync() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liveLocked() {
		r.screen.Sync()
	}
	r.cache.reset()
}

func (r *Renderer) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liveLocked() {
		r.screen.Show()
	}
}

func (r *Renderer) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.liveLocked()
}

// PollEvent blocks for the next terminal event and returns nil once the
// renderer is closed.
func (r *Renderer) PollEvent() tcell.Event {
	screen := r.Screen()
	if screen == nil {
		return nil
	}
	return screen.PollEvent()
}

// Close restores the terminal.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen != nil {
		r.screen.Fini()
		r.screen = nil
	}
}
