package ui

import (
	"fmt"
	"image"
	"image/draw"
	"path"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/0bVdnt/PixlFX/internal/media"
	"github.com/0bVdnt/PixlFX/internal/player"
	"github.com/0bVdnt/PixlFX/internal/renderer"
)

var spinner = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

var (
	barBg     = colorful.Color{R: 0.05, G: 0.05, B: 0.08}
	barFg     = colorful.Color{R: 1, G: 1, B: 1}
	barAccent = colorful.Color{R: 0.2, G: 0.8, B: 0.4}
	barTrack  = colorful.Color{R: 0.35, G: 0.35, B: 0.35}
	liveRed   = colorful.Color{R: 0.9, G: 0.15, B: 0.15}
)

// View is everything one frame of the surface is drawn from.
type View struct {
	Now      time.Time
	Layout   Layout
	Frame    *media.Frame
	Backdrop *image.RGBA
	// Meta and Dropped feed the info panel; zero values hide the line.
	Meta    media.Metadata
	Dropped uint64
}

// Draw paints the backdrop, the video and the overlays for one frame.
func (s *Surface) Draw(r *renderer.Renderer, v View) {
	if r.IsClosed() {
		return
	}
	snap := s.playback.Snapshot()
	l := v.Layout
	if l.Cols <= 0 || l.Rows <= 0 {
		return
	}

	canvas := image.NewRGBA(image.Rect(0, 0, l.Cols, l.Rows*2))
	if v.Backdrop != nil {
		draw.Draw(canvas, canvas.Bounds(), v.Backdrop, image.Point{}, draw.Src)
	} else {
		draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	}
	if v.Frame != nil && v.Frame.Image != nil && snap.Error == "" {
		b := v.Frame.Image.Bounds()
		at := l.Fit(b.Dx(), b.Dy())
		draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(b.Size())}.Intersect(l.Video), v.Frame.Image, b.Min, draw.Src)
	}
	r.RenderImage(canvas, 0, 0)

	midY := l.Video.Dy() / 4
	switch {
	case snap.Error != "":
		r.RenderMessage(midY, snap.Error, tcell.ColorDarkRed)
		r.DrawCentered(midY+1, "press r to reload", tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed))
	case snap.Loading:
		frame := spinner[int(v.Now.UnixMilli()/100)%len(spinner)]
		r.DrawCentered(midY, string(frame), tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}

	if l.InfoRow >= 0 {
		s.drawInfo(r, v, snap)
	}
	if snap.ControlsOpacity > 0 {
		s.drawControls(r, l, snap)
	}
}

func (s *Surface) drawInfo(r *renderer.Renderer, v View, snap player.Snapshot) {
	l := v.Layout
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	if v.Meta.IsValid() {
		stats := fmt.Sprintf(" %dx%d %s @ %.1f fps", v.Meta.Width, v.Meta.Height, v.Meta.Codec, v.Meta.FPS)
		if v.Dropped > 0 {
			stats += fmt.Sprintf(" · %d dropped", v.Dropped)
		}
		r.DrawText(0, l.InfoRow, stats, style.Dim(true))
	}
	title := fmt.Sprintf(" %d/%d  %s", snap.Index+1, len(snap.Sources), path.Base(snap.Source))
	r.DrawText(0, l.InfoRow+1, title, style.Bold(true))
	r.DrawText(0, l.InfoRow+2, " space play · m mute · n/p track · f fullscreen · ←/→ seek · q quit", style)
}

func (s *Surface) drawControls(r *renderer.Renderer, l Layout, snap player.Snapshot) {
	a := snap.ControlsOpacity
	bg := tcell.StyleDefault.Background(renderer.Fade(barBg, colorful.Color{}, a))
	text := bg.Foreground(renderer.Fade(barFg, barBg, a))

	barY := l.Rows - 2
	statusY := l.Rows - 1
	r.FillLine(barY, bg)
	r.FillLine(statusY, bg)

	if !snap.Live {
		progress := snap.Progress()
		if f, ok := s.Scrub(); ok {
			progress = f
		}
		r.ProgressBar(1, l.Cols-1, barY, progress,
			bg.Foreground(renderer.Fade(barAccent, barBg, a)),
			bg.Foreground(renderer.Fade(barTrack, barBg, a)),
			text)
	}

	x := 1
	x += drawText(r, x, statusY, snap.Mode.Icon()+" ", text)
	if snap.Live {
		x += drawText(r, x, statusY, "● LIVE", bg.Foreground(renderer.Fade(liveRed, barBg, a)).Bold(true))
	} else {
		pos := snap.Status.Position
		if f, ok := s.Scrub(); ok {
			pos = time.Duration(f * float64(snap.Status.Duration))
		}
		x += drawText(r, x, statusY, player.FormatTime(pos)+" / "+player.FormatTime(snap.Status.Duration), text)
	}
	if snap.Muted {
		x += drawText(r, x, statusY, "  muted", text)
	}
	if s.screen.IsFullscreen() {
		drawText(r, x, statusY, "  ⛶", text)
	}
}

func drawText(r *renderer.Renderer, x, y int, s string, style tcell.Style) int {
	r.DrawText(x, y, s, style)
	return len([]rune(s))
}
