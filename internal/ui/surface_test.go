package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0bVdnt/PixlFX/internal/loop"
	"github.com/0bVdnt/PixlFX/internal/media"
	"github.com/0bVdnt/PixlFX/internal/orientation"
	"github.com/0bVdnt/PixlFX/internal/player"
	"github.com/0bVdnt/PixlFX/internal/renderer"
)

type fakePlayback struct {
	snap    player.Snapshot
	intents []string
	shown   int
	seeks   []float64
}

func (f *fakePlayback) Snapshot() player.Snapshot { return f.snap }
func (f *fakePlayback) TogglePlayback() error     { f.intents = append(f.intents, "toggle"); return nil }
func (f *fakePlayback) ToggleMute()               { f.intents = append(f.intents, "mute") }
func (f *fakePlayback) HandleSlidingStart()       { f.intents = append(f.intents, "slide") }
func (f *fakePlayback) HandleNextTrack()          { f.intents = append(f.intents, "next") }
func (f *fakePlayback) HandlePreviousTrack()      { f.intents = append(f.intents, "previous") }
func (f *fakePlayback) ShowControls()             { f.shown++ }

func (f *fakePlayback) HandleSlidingComplete(fraction float64, _ time.Duration) error {
	f.intents = append(f.intents, "commit")
	f.seeks = append(f.seeks, fraction)
	return nil
}

func (f *fakePlayback) HandleVideoReload() error {
	f.intents = append(f.intents, "reload")
	return player.ErrEngineUnavailable
}

type fakeFullscreen struct {
	on      bool
	toggles int
}

func (f *fakeFullscreen) Toggle()            { f.on = !f.on; f.toggles++ }
func (f *fakeFullscreen) IsFullscreen() bool { return f.on }

func (f *fakeFullscreen) HandleBackAction() bool {
	if !f.on {
		return false
	}
	f.Toggle()
	return true
}

type surfaceHarness struct {
	clk      *clock.Mock
	loop     *loop.Loop
	playback *fakePlayback
	screen   *fakeFullscreen
	surface  *Surface
}

func newSurfaceHarness() *surfaceHarness {
	clk := clock.NewMock()
	l := loop.New(clk)
	h := &surfaceHarness{
		clk:      clk,
		loop:     l,
		playback: &fakePlayback{},
		screen:   &fakeFullscreen{},
	}
	h.surface = NewSurface(l, h.playback, h.screen, nil)
	return h
}

func (h *surfaceHarness) advance(d time.Duration) {
	h.clk.Add(d)
	h.loop.Settle()
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func withStatus(pos, dur time.Duration) player.Snapshot {
	return player.Snapshot{
		Sources:   []string{"a.mp4"},
		Source:    "a.mp4",
		HasStatus: true,
		Status:    media.Status{Loaded: true, Position: pos, Duration: dur},
	}
}

func TestKeysMapToIntents(t *testing.T) {
	h := newSurfaceHarness()

	for _, r := range " mnpr" {
		assert.Equal(t, EventContinue, h.surface.HandleEvent(runeKey(r)))
	}
	assert.Equal(t, []string{"toggle", "mute", "next", "previous", "reload"}, h.playback.intents)
	assert.Equal(t, 5, h.playback.shown)

	h.surface.HandleEvent(runeKey('f'))
	assert.True(t, h.screen.IsFullscreen())
}

func TestBackActionLeavesFullscreenBeforeQuitting(t *testing.T) {
	h := newSurfaceHarness()
	h.screen.on = true

	assert.Equal(t, EventContinue, h.surface.HandleEvent(key(tcell.KeyEscape)))
	assert.False(t, h.screen.on)
	assert.Equal(t, EventQuit, h.surface.HandleEvent(key(tcell.KeyEscape)))
}

func TestQuitKeys(t *testing.T) {
	h := newSurfaceHarness()

	assert.Equal(t, EventQuit, h.surface.HandleEvent(key(tcell.KeyCtrlC)))
	assert.Zero(t, h.playback.shown)
	assert.Equal(t, EventQuit, h.surface.HandleEvent(runeKey('q')))
}

func TestMouseShowsControls(t *testing.T) {
	h := newSurfaceHarness()

	h.surface.HandleEvent(tcell.NewEventMouse(3, 3, tcell.Button1, tcell.ModNone))
	h.surface.HandleEvent(tcell.NewEventMouse(3, 3, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, 1, h.playback.shown)
}

func TestNudgesCommitOnceIdle(t *testing.T) {
	h := newSurfaceHarness()
	h.playback.snap = withStatus(30*time.Second, 100*time.Second)

	h.surface.HandleEvent(key(tcell.KeyRight))
	h.advance(NudgeCommitDelay / 2)
	h.surface.HandleEvent(key(tcell.KeyRight))

	f, ok := h.surface.Scrub()
	require.True(t, ok)
	assert.InDelta(t, 0.4, f, 1e-9)
	assert.Equal(t, []string{"slide"}, h.playback.intents)

	h.advance(NudgeCommitDelay / 2)
	assert.Equal(t, []string{"slide"}, h.playback.intents, "second nudge pushed the commit back")

	h.advance(NudgeCommitDelay / 2)
	assert.Equal(t, []string{"slide", "commit"}, h.playback.intents)
	require.Len(t, h.playback.seeks, 1)
	assert.InDelta(t, 0.4, h.playback.seeks[0], 1e-9)

	_, ok = h.surface.Scrub()
	assert.False(t, ok)
}

func TestNudgeClampsAtStart(t *testing.T) {
	h := newSurfaceHarness()
	h.playback.snap = withStatus(time.Second, 100*time.Second)

	h.surface.HandleEvent(key(tcell.KeyLeft))
	f, ok := h.surface.Scrub()
	require.True(t, ok)
	assert.Zero(t, f)
}

func TestNudgeIgnoredWithoutSeekableStatus(t *testing.T) {
	h := newSurfaceHarness()

	h.surface.HandleEvent(key(tcell.KeyRight))
	h.playback.snap = withStatus(0, time.Minute)
	h.playback.snap.Live = true
	h.surface.HandleEvent(key(tcell.KeyRight))

	_, ok := h.surface.Scrub()
	assert.False(t, ok)
	assert.Empty(t, h.playback.intents)
}

func TestStopDropsUncommittedNudge(t *testing.T) {
	h := newSurfaceHarness()
	h.playback.snap = withStatus(0, time.Minute)

	h.surface.HandleEvent(key(tcell.KeyRight))
	h.surface.Stop()
	h.advance(NudgeCommitDelay)

	assert.Equal(t, []string{"slide"}, h.playback.intents)
}

func newScreen(t *testing.T, w, h int) (*renderer.Renderer, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	r, err := renderer.NewWithScreen(sim)
	require.NoError(t, err)
	sim.SetSize(w, h)
	t.Cleanup(r.Close)
	return r, sim
}

func row(sim tcell.SimulationScreen, y int) string {
	w, _ := sim.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := sim.GetContent(x, y)
		b.WriteRune(ch)
	}
	return b.String()
}

func TestDrawErrorOverlay(t *testing.T) {
	h := newSurfaceHarness()
	r, sim := newScreen(t, 40, 12)
	h.playback.snap = player.Snapshot{
		Sources: []string{"a.mp4"},
		Source:  "a.mp4",
		Error:   "Could not play video",
		Loading: true,
	}

	l := ComputeLayout(40, 12, orientation.Portrait)
	h.surface.Draw(r, View{
		Layout:  l,
		Meta:    media.Metadata{Width: 1920, Height: 1080, FPS: 25, Codec: "h264"},
		Dropped: 3,
	})
	r.Show()

	midY := l.Video.Dy() / 4
	assert.Contains(t, row(sim, midY), "Could not play video")
	assert.Contains(t, row(sim, midY+1), "press r to reload")
	assert.Contains(t, row(sim, l.InfoRow), "1920x1080 h264 @ 25.0 fps · 3 dropped")
	assert.Contains(t, row(sim, l.InfoRow+1), "1/1  a.mp4")
}

func TestDrawControlBar(t *testing.T) {
	h := newSurfaceHarness()
	r, sim := newScreen(t, 40, 12)
	h.playback.snap = withStatus(30*time.Second, 100*time.Second)
	h.playback.snap.ControlsOpacity = 1
	h.playback.snap.Muted = true

	l := ComputeLayout(40, 12, orientation.Landscape)
	h.surface.Draw(r, View{Layout: l})
	r.Show()

	status := row(sim, 11)
	assert.Contains(t, status, "00:30 / 01:40")
	assert.Contains(t, status, "muted")

	ch, _, _, _ := sim.GetContent(1, 10)
	assert.Equal(t, '━', ch)
}

func TestDrawLiveBadge(t *testing.T) {
	h := newSurfaceHarness()
	r, sim := newScreen(t, 40, 12)
	h.playback.snap = withStatus(0, 0)
	h.playback.snap.Live = true
	h.playback.snap.ControlsOpacity = 1

	h.surface.Draw(r, View{Layout: ComputeLayout(40, 12, orientation.Landscape)})
	r.Show()

	assert.Contains(t, row(sim, 11), "LIVE")
	ch, _, _, _ := sim.GetContent(1, 10)
	assert.NotEqual(t, '━', ch, "no progress bar for live sources")
}

func TestDrawHiddenControls(t *testing.T) {
	h := newSurfaceHarness()
	r, sim := newScreen(t, 40, 12)
	h.playback.snap = withStatus(30*time.Second, 100*time.Second)

	h.surface.Draw(r, View{Layout: ComputeLayout(40, 12, orientation.Landscape)})
	r.Show()

	assert.NotContains(t, row(sim, 11), "00:30")
}
