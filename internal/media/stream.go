package media

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	minSide = 4
	maxSide = 4096
	// a frame this many periods late is dropped instead of shown
	maxLagFrames = 5
)

// decodeSpec describes one ffmpeg decode: where to start, at which size
// and rate. Single asks for exactly one frame.
type decodeSpec struct {
	URI    string
	Width  int
	Height int
	Start  time.Duration
	FPS    float64
	Live   bool
	Single bool
}

func (s decodeSpec) frameBytes() int {
	return s.Width * s.Height * 3
}

// targetFPS picks a decode rate the terminal can keep up with at this size.
func targetFPS(width, height int, sourceFPS float64) float64 {
	var fps float64
	switch px := width * height; {
	case px > 100_000:
		fps = 12
	case px > 50_000:
		fps = 15
	case px > 25_000:
		fps = 20
	default:
		fps = 24
	}
	if sourceFPS > 0 {
		fps = min(fps, sourceFPS)
	}
	return fps
}

func ffmpegArgs(spec decodeSpec) []string {
	args := []string{"-threads", strconv.Itoa(runtime.NumCPU())}
	switch {
	case spec.Live:
		args = append(args, "-fflags", "nobuffer")
	case spec.Start > 0 || spec.Single:
		args = append(args, "-ss", fmt.Sprintf("%.3f", spec.Start.Seconds()))
	}
	args = append(args, "-i", spec.URI)

	filter := fmt.Sprintf("scale=%d:%d", spec.Width, spec.Height)
	if spec.Single {
		args = append(args, "-frames:v", "1")
	} else {
		filter = fmt.Sprintf("fps=%.2f,%s", spec.FPS, filter)
	}
	return append(args,
		"-vf", filter,
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"-an", "-sn",
		"-loglevel", "error",
		"-",
	)
}

// decodeProcess is one running ffmpeg that writes raw frames into a FrameBuffer.
type decodeProcess struct {
	spec  decodeSpec
	epoch uint64
	log   hclog.Logger

	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr io.ReadCloser

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

func startDecode(ctx context.Context, spec decodeSpec, epoch uint64, log hclog.Logger) (*decodeProcess, error) {
	spec.Width = evenClamp(spec.Width, minSide, maxSide)
	spec.Height = evenClamp(spec.Height, minSide, maxSide)
	log = log.With("epoch", epoch)

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(spec)...)
	p := &decodeProcess{
		spec:    spec,
		epoch:   epoch,
		log:     log,
		cmd:     cmd,
		cancel:  cancel,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}

	var err error
	if p.stdout, err = cmd.StdoutPipe(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if p.stderr, err = cmd.StderrPipe(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	log.Debug("decode started", "pid", cmd.Process.Pid, "uri", spec.URI, "start", spec.Start,
		"size", fmt.Sprintf("%dx%d", spec.Width, spec.Height), "fps", spec.FPS)
	return p, nil
}

// pump copies frames into buf at the decode rate until EOF, Stop or an
// epoch change. It closes done on return.
func (p *decodeProcess) pump(buf *FrameBuffer) {
	defer func() {
		p.stdout.Close()
		_ = p.cmd.Wait()
		close(p.done)
		p.log.Debug("decode exited")
	}()
	go p.logStderr()

	period := time.Duration(float64(time.Second) / p.spec.FPS)
	r := bufio.NewReaderSize(p.stdout, p.spec.frameBytes()*4)
	raw := make([]byte, p.spec.frameBytes())
	// two frames so the renderer never reads one that is being filled
	var slots [2]*Frame
	for i := range slots {
		slots[i] = &Frame{Image: image.NewRGBA(image.Rect(0, 0, p.spec.Width, p.spec.Height))}
	}

	origin := time.Now()
	for n := 0; ; n++ {
		if p.isStopped() || buf.Epoch() != p.epoch {
			return
		}
		if _, err := io.ReadFull(r, raw); err != nil {
			if n == 0 && !p.isStopped() {
				buf.SetError(fmt.Errorf("%w: %s", ErrDecodeFailed, p.spec.URI), p.epoch)
			}
			return
		}

		pts := p.spec.Start + time.Duration(n)*period
		lag := time.Since(origin.Add(time.Duration(n) * period))
		if lag > maxLagFrames*period {
			buf.Drop()
			continue
		}

		f := slots[n%2]
		rgb24ToRGBA(raw, f.Image.Pix)
		f.Timestamp = pts
		if !buf.Publish(f, p.epoch) {
			return
		}

		if ahead := -lag; ahead > 5*time.Millisecond {
			select {
			case <-time.After(ahead - 2*time.Millisecond):
			case <-p.stopped:
				return
			}
		}
	}
}

func (p *decodeProcess) logStderr() {
	sc := bufio.NewScanner(p.stderr)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			p.log.Warn("ffmpeg", "stderr", line)
		}
	}
}

func (p *decodeProcess) isStopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}

// Stop kills ffmpeg and waits briefly for the pump to exit.
func (p *decodeProcess) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		p.cancel()
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	})
	select {
	case <-p.done:
	case <-time.After(500 * time.Millisecond):
	}
}

// Ended reports whether the decode ran to EOF on its own.
func (p *decodeProcess) Ended() bool {
	select {
	case <-p.done:
		return !p.isStopped()
	default:
		return false
	}
}

func rgb24ToRGBA(src, dst []byte) {
	for i, j := 0, 0; i+2 < len(src) && j+3 < len(dst); i, j = i+3, j+4 {
		dst[j], dst[j+1], dst[j+2], dst[j+3] = src[i], src[i+1], src[i+2], 0xff
	}
}

func evenClamp(v, lo, hi int) int {
	return min(max(v&^1, lo), hi)
}
