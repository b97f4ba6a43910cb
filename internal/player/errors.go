package player

import (
	"errors"
	"fmt"
)

// LoadFailureMessage is shown whenever the engine reports the source is not loaded.
const LoadFailureMessage = "The video could not be loaded. Please check your internet connection and try reloading the player. You can also try again later."

var (
	ErrEngineUnavailable = errors.New("video engine is not available")
	ErrEmptySources      = errors.New("source list is empty")
	ErrNotMounted        = errors.New("player is not mounted")
)

// LoadFailure means the engine could not load the current source.
type LoadFailure struct {
	URI string
	Err error
}

func (e *LoadFailure) Error() string {
	return LoadFailureMessage
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}

// ReloadFailure means the reload sequence itself failed.
type ReloadFailure struct {
	URI string
	Err error
}

func (e *ReloadFailure) Error() string {
	if e.Err == nil {
		return "reload failed"
	}
	return e.Err.Error()
}

func (e *ReloadFailure) Unwrap() error {
	return e.Err
}

// engineFailure wraps an error reported by the engine's error event.
type engineFailure struct {
	err error
}

func (e *engineFailure) Error() string {
	return fmt.Sprintf("playback error: %v", e.err)
}

func (e *engineFailure) Unwrap() error {
	return e.err
}
