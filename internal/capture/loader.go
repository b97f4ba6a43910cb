package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/0bVdnt/PixlFX/internal/filesystem"
)

// Loader decodes image URIs: file:// and bare paths through the shared
// filesystem, http(s):// through an HTTP client.
type Loader struct {
	Client *http.Client
}

func NewLoader() *Loader {
	return &Loader{Client: http.DefaultClient}
}

func (l *Loader) Load(ctx context.Context, uri string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		data, err = l.fetch(ctx, uri)
	default:
		data, err = readFile(strings.TrimPrefix(uri, "file://"))
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decode(data, uri)
}

func (l *Loader) fetch(ctx context.Context, uri string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture: fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capture: fetch %s: %s", uri, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func readFile(name string) ([]byte, error) {
	data, err := filesystem.API().ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("capture: read %s: %w", name, err)
	}
	return data, nil
}

func decode(data []byte, uri string) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.HasSuffix(strings.ToLower(uri), ".webp") {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("capture: decode %s: %w", uri, err)
	}
	return img, nil
}
