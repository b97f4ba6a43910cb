package ui

import (
	"image"

	"github.com/0bVdnt/PixlFX/internal/orientation"
)

// Rows at the bottom of the screen taken by the control bar.
const controlRows = 2

// Rows of the info panel under the video in portrait.
const infoRows = 3

// Layout places the video on a screen of w x h cells.
type Layout struct {
	Cols, Rows int
	// Video is the video box in pixels, two per cell vertically.
	Video image.Rectangle
	// InfoRow is the first row of the info panel, -1 in landscape.
	InfoRow int
}

func ComputeLayout(cols, rows int, o orientation.Orientation) Layout {
	l := Layout{Cols: cols, Rows: rows, InfoRow: -1}
	if cols <= 0 || rows <= 0 {
		return l
	}

	videoRows := rows
	if o == orientation.Portrait && rows > infoRows+controlRows+2 {
		videoRows = rows - infoRows - controlRows
		l.InfoRow = videoRows
	}
	l.Video = image.Rect(0, 0, cols, videoRows*2)
	return l
}

// Fit centres a w x h image inside the video box.
func (l Layout) Fit(w, h int) image.Point {
	x := l.Video.Min.X + (l.Video.Dx()-w)/2
	y := l.Video.Min.Y + (l.Video.Dy()-h)/2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	// keep pixel rows aligned to cell boundaries
	return image.Pt(x, y&^1)
}
