package media

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const (
	probeTimeout = 15 * time.Second
	fallbackFPS  = 25
)

// Metadata describes the first video stream of a source. Duration is zero
// for live streams.
type Metadata struct {
	Width    int
	Height   int
	FPS      float64
	Duration time.Duration
	Codec    string
}

func (m *Metadata) IsValid() bool {
	return m.Width > 0 && m.Height > 0
}

// Probe asks ffprobe for the stream geometry, rate, codec and container
// duration in one call.
func Probe(ctx context.Context, uri string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	entries := "stream=width,height,r_frame_rate,codec_name"
	if !IsLive(uri) {
		entries += ":format=duration"
	}
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", entries,
		"-of", "default=noprint_wrappers=1",
		uri,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", uri, err)
	}

	meta := parseProbe(string(out))
	if !meta.IsValid() {
		return nil, ErrNoVideoStream
	}
	if meta.FPS <= 0 {
		meta.FPS = fallbackFPS
	}
	return &meta, nil
}

// parseProbe reads ffprobe's key=value lines; unknown keys and N/A values
// are ignored.
func parseProbe(out string) Metadata {
	var m Metadata
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "width":
			m.Width = cast.ToInt(val)
		case "height":
			m.Height = cast.ToInt(val)
		case "codec_name":
			m.Codec = val
		case "r_frame_rate":
			m.FPS = parseRate(val)
		case "duration":
			m.Duration = parseSeconds(val)
		}
	}
	return m
}

// parseSeconds turns "90.5" into a duration; anything unparsable or
// negative is zero.
func parseSeconds(s string) time.Duration {
	secs, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// parseRate reads "30000/1001" or "25".
func parseRate(s string) float64 {
	num, den, frac := strings.Cut(strings.TrimSpace(s), "/")
	n, err := cast.ToFloat64E(num)
	if err != nil {
		return 0
	}
	if !frac {
		return n
	}
	d, err := cast.ToFloat64E(den)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
