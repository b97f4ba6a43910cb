package player

import (
	"time"

	"github.com/0bVdnt/PixlFX/internal/media"
)

// Mode is the transport mode shown to the user.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoading
	ModePlaying
	ModePaused
	ModeSeeking
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeLoading:
		return "loading"
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	case ModeSeeking:
		return "seeking"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

func (m Mode) Icon() string {
	switch m {
	case ModePlaying:
		return "▶"
	case ModePaused:
		return "⏸"
	case ModeLoading:
		return "⏳"
	case ModeSeeking:
		return "⇆"
	case ModeError:
		return "⚠"
	default:
		return "○"
	}
}

// Snapshot is a read-only copy of the controller state for the control surface.
type Snapshot struct {
	Sources []string
	Index   int
	Source  string
	Mode    Mode

	Playing bool
	Loading bool
	Muted   bool
	Live    bool
	Seeking bool

	// Error is the user-facing message, empty when playback is healthy.
	Error   string
	Failure error

	Status    media.Status
	HasStatus bool

	ControlsVisible  bool
	ControlsOpacity  float64
	ControlsDeadline time.Time
}

// Progress is the playback position as a fraction of the duration.
func (s Snapshot) Progress() float64 {
	if !s.HasStatus || s.Status.Duration <= 0 {
		return 0
	}
	p := float64(s.Status.Position) / float64(s.Status.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func deriveMode(hasError, seeking, loading, playing, everLoaded bool) Mode {
	switch {
	case hasError:
		return ModeError
	case seeking:
		return ModeSeeking
	case loading:
		return ModeLoading
	case playing:
		return ModePlaying
	case everLoaded:
		return ModePaused
	default:
		return ModeIdle
	}
}
