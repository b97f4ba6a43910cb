// Package capture snapshots the video surface to image files and loads
// them back for the crossfade renderers.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/0bVdnt/PixlFX/internal/filesystem"
	"github.com/0bVdnt/PixlFX/internal/media"
)

var ErrNoFrame = errors.New("capture: surface has no frame")

// Format of captured files.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ParseFormat accepts the config spellings of a format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("capture: unknown format %q", s)
	}
}

func (f Format) ext() string {
	if f == FormatWebP {
		return ".webp"
	}
	return ".jpg"
}

// Capturer turns the current frame of a surface into an image URI.
type Capturer interface {
	Capture(ctx context.Context, surface media.Surface) (string, error)
}

type Options struct {
	Dir     string
	Format  Format
	Quality int
	// Keep is how many files stay on disk; older ones are removed.
	Keep   int
	Logger hclog.Logger
}

// FileCapturer writes frames into a directory with random names and hands
// out file:// URIs. It is safe for concurrent use.
type FileCapturer struct {
	fs   afero.Afero
	opts Options
	log  hclog.Logger

	mu      sync.Mutex
	written []string
}

func NewFileCapturer(opts Options) (*FileCapturer, error) {
	if opts.Dir == "" {
		return nil, errors.New("capture: no frame directory")
	}
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}
	if opts.Keep <= 0 {
		opts.Keep = 8
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	fs := filesystem.API()
	if err := fs.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", opts.Dir, err)
	}
	return &FileCapturer{fs: fs, opts: opts, log: log}, nil
}

func (c *FileCapturer) Capture(ctx context.Context, surface media.Surface) (string, error) {
	if surface == nil {
		return "", ErrNoFrame
	}
	frame := surface.CurrentFrame()
	if frame == nil || frame.Image == nil {
		return "", ErrNoFrame
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := encode(&buf, frame.Image, c.opts.Format, c.opts.Quality); err != nil {
		return "", err
	}

	name := path.Join(c.opts.Dir, uuid.New().String()+c.opts.Format.ext())
	if err := c.fs.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("capture: write %s: %w", name, err)
	}

	c.mu.Lock()
	c.written = append(c.written, name)
	stale := c.prune()
	c.mu.Unlock()

	for _, old := range stale {
		if err := c.fs.Remove(old); err != nil {
			c.log.Debug("could not remove old frame", "path", old, "error", err)
		}
	}
	return "file://" + name, nil
}

// prune returns the files past the keep limit, oldest first.
func (c *FileCapturer) prune() []string {
	if len(c.written) <= c.opts.Keep {
		return nil
	}
	n := len(c.written) - c.opts.Keep
	stale := make([]string, n)
	copy(stale, c.written[:n])
	c.written = append(c.written[:0], c.written[n:]...)
	return stale
}

// Files lists the frames currently kept, oldest first.
func (c *FileCapturer) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.written))
	copy(out, c.written)
	return out
}

func encode(buf *bytes.Buffer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatWebP:
		if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return fmt.Errorf("capture: encode webp: %w", err)
		}
	default:
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("capture: encode jpeg: %w", err)
		}
	}
	return nil
}
