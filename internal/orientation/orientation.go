// Package orientation locks the player layout to portrait or landscape.
package orientation

import (
	"context"
	"errors"
	"sync"
)

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

var ErrClosed = errors.New("orientation: layout closed")

// Locker applies an orientation lock. Locks are best-effort; callers log
// failures and carry on.
type Locker interface {
	Lock(ctx context.Context, o Orientation) error
}

// LockerFunc adapts a function to Locker.
type LockerFunc func(ctx context.Context, o Orientation) error

func (f LockerFunc) Lock(ctx context.Context, o Orientation) error {
	return f(ctx, o)
}

// Layout is the terminal's version of a device orientation lock: portrait
// shows the video above an info panel, landscape gives the video the whole
// screen.
type Layout struct {
	mu       sync.Mutex
	current  Orientation
	closed   bool
	onChange func(Orientation)
}

// NewLayout starts in portrait. onChange runs after every applied lock,
// on the caller's goroutine.
func NewLayout(onChange func(Orientation)) *Layout {
	return &Layout{onChange: onChange}
}

func (l *Layout) Lock(ctx context.Context, o Orientation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	changed := l.current != o
	l.current = o
	cb := l.onChange
	l.mu.Unlock()

	if changed && cb != nil {
		cb(o)
	}
	return nil
}

func (l *Layout) Current() Orientation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Close makes later locks fail.
func (l *Layout) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
