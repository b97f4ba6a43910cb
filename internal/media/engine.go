// Package media is the playback engine the player controller drives.
//
// The controller only sees the Engine interface; FFmpegEngine is the
// implementation used by the terminal player.
package media

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNoVideoStream = errors.New("no video stream found")
	ErrDecodeFailed  = errors.New("decode failed")
	ErrNotLoaded     = errors.New("no media loaded")
)

// Status is one snapshot of the engine's playback state.
type Status struct {
	URI          string
	Loaded       bool
	Position     time.Duration
	Duration     time.Duration
	IsPlaying    bool
	ShouldPlay   bool
	IsMuted      bool
	IsLooping    bool
	JustFinished bool
}

type EventKind int

const (
	EventStatus EventKind = iota
	EventLoadStart
	EventLoaded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventLoadStart:
		return "load-start"
	case EventLoaded:
		return "loaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification from the engine. Status is set for every kind;
// Err only for EventError.
type Event struct {
	Kind   EventKind
	Status Status
	Err    error
}

// Engine decodes and plays one source at a time. Calls may block; callers
// run them off the UI thread.
type Engine interface {
	Load(ctx context.Context, uri string) error
	Unload(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
	Seek(ctx context.Context, pos time.Duration) error
	Status(ctx context.Context) (Status, error)
	Events() <-chan Event
}

// Surface is the rendered output of an engine, used for frame capture.
type Surface interface {
	CurrentFrame() *Frame
}

// IsLive reports whether uri names a continuous stream rather than a finite asset.
func IsLive(uri string) bool {
	return strings.HasPrefix(uri, "rtmp://") || strings.Contains(uri, ".m3u8")
}
