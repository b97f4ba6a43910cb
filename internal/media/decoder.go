package media

import (
	"context"
	"fmt"
	"image"
	"os/exec"
	"time"
)

const grabTimeout = 10 * time.Second

// grabFrame decodes the single frame at spec.Start. The engine uses it to
// refresh the picture after a seek while paused.
func grabFrame(ctx context.Context, spec decodeSpec) (*Frame, error) {
	spec.Single = true
	spec.Width = evenClamp(spec.Width, minSide, maxSide)
	spec.Height = evenClamp(spec.Height, minSide, maxSide)

	ctx, cancel := context.WithTimeout(ctx, grabTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(spec)...).Output()
	if err != nil {
		return nil, fmt.Errorf("grab frame at %s: %w", spec.Start, err)
	}
	if len(out) < spec.frameBytes() {
		return nil, fmt.Errorf("%w: short frame (%d of %d bytes)", ErrDecodeFailed, len(out), spec.frameBytes())
	}

	img := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	rgb24ToRGBA(out[:spec.frameBytes()], img.Pix)
	return &Frame{Image: img, Timestamp: spec.Start}, nil
}

// FitDimensions shrinks a box of boxW x boxH pixels to the source aspect
// ratio. Sides come out even and never below minSide.
func FitDimensions(boxW, boxH int, meta Metadata) (int, int) {
	w, h := boxW, boxH
	if meta.IsValid() && w > 0 && h > 0 {
		src := float64(meta.Width) / float64(meta.Height)
		if float64(w)/float64(h) > src {
			w = int(float64(h) * src)
		} else {
			h = int(float64(w) / src)
		}
	}
	return evenClamp(w, minSide, max(boxW, minSide)), evenClamp(h, minSide, max(boxH, minSide))
}
