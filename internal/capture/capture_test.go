package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0bVdnt/PixlFX/internal/filesystem"
	"github.com/0bVdnt/PixlFX/internal/media"
)

type stillSurface struct {
	frame *media.Frame
}

func (s stillSurface) CurrentFrame() *media.Frame { return s.frame }

func testFrame(w, h int) *media.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return &media.Frame{Image: img}
}

func newCapturer(t *testing.T, format Format, keep int) *FileCapturer {
	t.Helper()
	filesystem.SetMemMapFs()
	t.Cleanup(filesystem.SetOsFs)

	c, err := NewFileCapturer(Options{Dir: "/frames", Format: format, Keep: keep})
	require.NoError(t, err)
	return c
}

func TestCaptureRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJPEG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			c := newCapturer(t, format, 4)

			uri, err := c.Capture(context.Background(), stillSurface{testFrame(32, 18)})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(uri, "file:///frames/"))
			assert.True(t, strings.HasSuffix(uri, format.ext()))

			img, err := NewLoader().Load(context.Background(), uri)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 32, 18), img.Bounds())

			r, _, _, _ := img.At(5, 5).RGBA()
			assert.Greater(t, r>>8, uint32(150))
		})
	}
}

func TestCapturePrunesOldFrames(t *testing.T) {
	c := newCapturer(t, FormatJPEG, 2)
	surface := stillSurface{testFrame(4, 4)}

	var uris []string
	for i := 0; i < 5; i++ {
		uri, err := c.Capture(context.Background(), surface)
		require.NoError(t, err)
		uris = append(uris, uri)
	}

	files := c.Files()
	assert.Len(t, files, 2)
	assert.Equal(t, strings.TrimPrefix(uris[4], "file://"), files[1])

	ok, err := filesystem.API().Exists(strings.TrimPrefix(uris[0], "file://"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCaptureWithoutFrame(t *testing.T) {
	c := newCapturer(t, FormatJPEG, 2)

	_, err := c.Capture(context.Background(), stillSurface{})
	assert.ErrorIs(t, err, ErrNoFrame)
	_, err = c.Capture(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestLoaderHTTP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testFrame(8, 8).Image, nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/poster.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	l := &Loader{Client: srv.Client()}
	img, err := l.Load(context.Background(), srv.URL+"/poster.jpg")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = l.Load(context.Background(), srv.URL+"/missing.jpg")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	f, err = ParseFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, f)

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
