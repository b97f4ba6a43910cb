package ui

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/player"
)

const (
	NudgeStep        = 0.05
	NudgeCommitDelay = 600 * time.Millisecond
)

// Playback is what the surface needs from the playback controller.
type Playback interface {
	Snapshot() player.Snapshot
	TogglePlayback() error
	ToggleMute()
	HandleSlidingStart()
	HandleSlidingComplete(fraction float64, duration time.Duration) error
	HandleNextTrack()
	HandlePreviousTrack()
	HandleVideoReload() error
	ShowControls()
}

// Fullscreen is what the surface needs from the fullscreen controller.
type Fullscreen interface {
	Toggle()
	HandleBackAction() bool
	IsFullscreen() bool
}

type EventResult int

const (
	EventContinue EventResult = iota
	EventQuit
)

// Surface turns terminal input into player intents and draws the player
// state. It holds no playback state of its own apart from an in-progress
// slider drag.
type Surface struct {
	sched    loop.Scheduler
	playback Playback
	screen   Fullscreen
	log      hclog.Logger

	nudge  mo.Option[float64]
	commit *loop.Timer
}

func NewSurface(sched loop.Scheduler, playback Playback, screen Fullscreen, log hclog.Logger) *Surface {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Surface{sched: sched, playback: playback, screen: screen, log: log}
}

func (s *Surface) HandleEvent(ev tcell.Event) EventResult {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return s.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			s.playback.ShowControls()
		}
	}
	return EventContinue
}

func (s *Surface) handleKey(ev *tcell.EventKey) EventResult {
	if ev.Key() == tcell.KeyCtrlC {
		return EventQuit
	}
	s.playback.ShowControls()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		if !s.screen.HandleBackAction() {
			return EventQuit
		}
	case tcell.KeyLeft:
		s.nudgeSlider(-1)
	case tcell.KeyRight:
		s.nudgeSlider(1)
	case tcell.KeyRune:
		return s.handleRune(ev.Rune())
	}
	return EventContinue
}

func (s *Surface) handleRune(r rune) EventResult {
	switch r {
	case 'q', 'Q':
		return EventQuit
	case ' ':
		s.report("toggle playback", s.playback.TogglePlayback())
	case 'm', 'M':
		s.playback.ToggleMute()
	case 'n', 'N':
		s.playback.HandleNextTrack()
	case 'p', 'P':
		s.playback.HandlePreviousTrack()
	case 'f', 'F':
		s.screen.Toggle()
	case 'r', 'R':
		s.report("reload", s.playback.HandleVideoReload())
	}
	return EventContinue
}

// nudgeSlider moves the slider thumb. The first nudge starts a drag; the
// seek is committed once the keys have been idle for NudgeCommitDelay.
func (s *Surface) nudgeSlider(dir float64) {
	snap := s.playback.Snapshot()
	if snap.Live || !snap.HasStatus || snap.Status.Duration <= 0 {
		return
	}

	f, dragging := s.nudge.Get()
	if !dragging {
		f = snap.Progress()
		s.playback.HandleSlidingStart()
	}
	f = lo.Clamp(f+dir*NudgeStep, 0, 1)
	s.nudge = mo.Some(f)

	duration := snap.Status.Duration
	s.commit.Stop()
	s.commit = s.sched.AfterFunc(NudgeCommitDelay, func() {
		s.commit = nil
		s.nudge = mo.None[float64]()
		s.report("seek", s.playback.HandleSlidingComplete(f, duration))
	})
}

// Scrub is the slider position while dragging.
func (s *Surface) Scrub() (float64, bool) {
	return s.nudge.Get()
}

// Stop drops an uncommitted drag.
func (s *Surface) Stop() {
	s.commit.Stop()
	s.commit = nil
	s.nudge = mo.None[float64]()
}

func (s *Surface) report(intent string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, player.ErrEngineUnavailable) {
		s.log.Warn("no engine", "intent", intent)
		return
	}
	s.log.Warn("intent failed", "intent", intent, "error", err)
}
