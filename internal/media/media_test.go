package media

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLive(t *testing.T) {
	assert.True(t, IsLive("rtmp://example.com/live/stream"))
	assert.True(t, IsLive("https://cdn.example.com/playlist.m3u8"))
	assert.True(t, IsLive("https://cdn.example.com/playlist.m3u8?token=abc"))
	assert.False(t, IsLive("https://cdn.example.com/movie.mp4"))
	assert.False(t, IsLive("/home/me/clip.mkv"))
}

func TestParseProbe(t *testing.T) {
	meta := parseProbe("codec_name=h264\nwidth=1920\nheight=1080\nr_frame_rate=30000/1001\nduration=90.5\n\ngarbage\n")

	assert.Equal(t, 1920, meta.Width)
	assert.Equal(t, 1080, meta.Height)
	assert.Equal(t, "h264", meta.Codec)
	assert.InDelta(t, 29.97, meta.FPS, 0.01)
	assert.Equal(t, 90*time.Second+500*time.Millisecond, meta.Duration)
	assert.True(t, meta.IsValid())

	live := parseProbe("width=640\nheight=360\nduration=N/A\n")
	assert.Zero(t, live.Duration)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25/1"))
	assert.Equal(t, 0.0, parseRate("25/0"))
	assert.Equal(t, 24.0, parseRate(" 24 "))
	assert.Equal(t, 0.0, parseRate("n/a"))
}

func TestParseSeconds(t *testing.T) {
	assert.Equal(t, 90*time.Second+500*time.Millisecond, parseSeconds("90.5\n"))
	assert.Equal(t, time.Duration(0), parseSeconds("N/A"))
	assert.Equal(t, time.Duration(0), parseSeconds("-1"))
}

func TestFrameBufferRejectsStaleEpoch(t *testing.T) {
	fb := NewFrameBuffer()
	first := fb.Epoch()

	frame := &Frame{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Timestamp: time.Second}
	require.True(t, fb.Publish(frame, first))
	assert.Equal(t, uint64(1), fb.Frames())

	second := fb.Reset()
	assert.Greater(t, second, first)
	assert.False(t, fb.Publish(&Frame{Timestamp: 2 * time.Second}, first))
	assert.Equal(t, time.Second, fb.Position(), "reset keeps the last picture")
	assert.Equal(t, uint64(0), fb.Frames())

	fb.Drop()
	assert.Equal(t, uint64(1), fb.DroppedFrames())

	fb.SetError(ErrDecodeFailed, first)
	assert.NoError(t, fb.Err(), "errors from an old epoch are ignored")
	fb.SetError(ErrDecodeFailed, second)
	assert.ErrorIs(t, fb.Err(), ErrDecodeFailed)

	fb.Clear()
	assert.Nil(t, fb.Load())
	assert.NoError(t, fb.Err())

	fb.Replace(frame)
	assert.Same(t, frame, fb.Load())
}

func TestFrameClone(t *testing.T) {
	src := &Frame{Image: image.NewRGBA(image.Rect(0, 0, 2, 2)), Timestamp: time.Second}
	src.Image.Pix[0] = 200

	dup := src.Clone()
	src.Image.Pix[0] = 10
	assert.Equal(t, uint8(200), dup.Image.Pix[0])
	assert.Equal(t, time.Second, dup.Timestamp)
	assert.Nil(t, (*Frame)(nil).Clone())
}

func TestFitDimensionsKeepsAspect(t *testing.T) {
	w, h := FitDimensions(160, 90, Metadata{Width: 2000, Height: 1000})
	assert.Equal(t, 160, w)
	assert.Equal(t, 80, h)

	w, h = FitDimensions(300, 80, Metadata{Width: 2000, Height: 1000})
	assert.Equal(t, 160, w)
	assert.Equal(t, 80, h)

	w, h = FitDimensions(64, 48, Metadata{})
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	w, h = FitDimensions(100, 40, Metadata{Width: 1080, Height: 1920})
	assert.Equal(t, 22, w)
	assert.Equal(t, 40, h)
}

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs(decodeSpec{URI: "clip.mp4", Width: 80, Height: 44, Start: 1500 * time.Millisecond, FPS: 24})
	assert.Contains(t, args, "-ss")
	assert.Contains(t, args, "1.500")
	assert.Contains(t, args, "fps=24.00,scale=80:44")
	assert.Equal(t, "-", args[len(args)-1])

	live := ffmpegArgs(decodeSpec{URI: "rtmp://host/app", Width: 80, Height: 44, Start: time.Minute, FPS: 24, Live: true})
	assert.NotContains(t, live, "-ss")
	assert.Contains(t, live, "nobuffer")

	still := ffmpegArgs(decodeSpec{URI: "clip.mp4", Width: 80, Height: 44, Single: true})
	assert.Contains(t, still, "-frames:v")
	assert.Contains(t, still, "0.000")
	assert.Contains(t, still, "scale=80:44")
}

func TestRGB24ToRGBA(t *testing.T) {
	dst := make([]byte, 8)
	rgb24ToRGBA([]byte{1, 2, 3, 4, 5, 6}, dst)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, dst)
}

func TestTargetFPS(t *testing.T) {
	assert.Equal(t, 24.0, targetFPS(80, 40, 60))
	assert.Equal(t, 12.0, targetFPS(400, 300, 60))
	assert.Equal(t, 10.0, targetFPS(80, 40, 10))
}

func TestEvenClamp(t *testing.T) {
	assert.Equal(t, 4, evenClamp(1, 4, 100))
	assert.Equal(t, 10, evenClamp(11, 4, 100))
	assert.Equal(t, 100, evenClamp(500, 4, 100))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "load-start", EventLoadStart.String())
	assert.Equal(t, "error", EventError.String())
}
