package media

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

type Options struct {
	AutoPlay     bool
	Looping      bool
	PollInterval time.Duration
	// Width and Height are the initial decode box; SetViewport replaces it.
	Width, Height int
	Logger        hclog.Logger
}

// FFmpegEngine plays sources by piping raw frames out of an ffmpeg process.
// There is no audio path, so mute is only reflected in Status.
type FFmpegEngine struct {
	opts   Options
	log    hclog.Logger
	buffer *FrameBuffer

	mu         sync.Mutex
	uri        string
	meta       Metadata
	loaded     bool
	shouldPlay bool
	muted      bool
	position   time.Duration
	frameW     int
	frameH     int
	stream     *decodeProcess
	finished   bool
	closed     bool

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

// NewFFmpegEngine checks for ffmpeg and ffprobe and starts the status poller.
func NewFFmpegEngine(opts Options) (*FFmpegEngine, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 160, 90
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &FFmpegEngine{
		opts:   opts,
		log:    log,
		buffer: NewFrameBuffer(),
		frameW: opts.Width,
		frameH: opts.Height,
		events: make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}
	go e.poll()
	return e, nil
}

func (e *FFmpegEngine) Events() <-chan Event {
	return e.events
}

// CurrentFrame implements Surface.
func (e *FFmpegEngine) CurrentFrame() *Frame {
	return e.buffer.Load()
}

// DroppedFrames counts frames skipped for lateness in the current stream.
func (e *FFmpegEngine) DroppedFrames() uint64 {
	return e.buffer.DroppedFrames()
}

// Metadata returns the probe result of the loaded source.
func (e *FFmpegEngine) Metadata() Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meta
}

// SetViewport sets the pixel box frames are decoded into.
// A running stream restarts at the new size.
func (e *FFmpegEngine) SetViewport(width, height int) {
	e.mu.Lock()
	w, h := FitDimensions(width, height, e.meta)
	if w == e.frameW && h == e.frameH {
		e.mu.Unlock()
		return
	}
	e.frameW, e.frameH = w, h
	restart := e.loaded && e.shouldPlay && e.stream != nil
	pos := e.currentPositionLocked()
	e.mu.Unlock()

	if restart {
		if err := e.restart(pos); err != nil {
			e.emitError(err)
		}
	}
}

func (e *FFmpegEngine) Load(ctx context.Context, uri string) error {
	_ = e.Unload(ctx)

	e.mu.Lock()
	e.uri = uri
	e.mu.Unlock()
	e.emit(EventLoadStart, nil)

	meta, err := Probe(ctx, uri)
	if err != nil {
		e.log.Warn("probe failed", "uri", uri, "error", err)
		e.emitError(err)
		return err
	}

	e.mu.Lock()
	if e.uri != uri {
		// Another Load superseded this one while probing.
		e.mu.Unlock()
		return nil
	}
	e.meta = *meta
	e.loaded = true
	e.position = 0
	e.finished = false
	e.shouldPlay = e.opts.AutoPlay
	e.frameW, e.frameH = FitDimensions(e.frameW, e.frameH, e.meta)
	autoPlay := e.shouldPlay
	e.mu.Unlock()

	e.log.Info("loaded", "uri", uri, "width", meta.Width, "height", meta.Height,
		"fps", meta.FPS, "codec", meta.Codec, "duration", meta.Duration)
	e.emit(EventLoaded, nil)

	if autoPlay {
		return e.restart(0)
	}
	return nil
}

func (e *FFmpegEngine) Unload(ctx context.Context) error {
	e.mu.Lock()
	stream := e.stream
	e.stream = nil
	e.loaded = false
	e.shouldPlay = false
	e.finished = false
	e.position = 0
	e.uri = ""
	e.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	e.buffer.Clear()
	return nil
}

func (e *FFmpegEngine) Play(ctx context.Context) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	e.shouldPlay = true
	running := e.stream != nil && !e.stream.Ended()
	pos := e.position
	if e.finished {
		pos = 0
	}
	e.mu.Unlock()

	if running {
		return nil
	}
	return e.restart(pos)
}

func (e *FFmpegEngine) Pause(ctx context.Context) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	e.shouldPlay = false
	e.position = e.currentPositionLocked()
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	return nil
}

func (e *FFmpegEngine) SetMuted(ctx context.Context, muted bool) error {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	return nil
}

func (e *FFmpegEngine) Seek(ctx context.Context, pos time.Duration) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if pos < 0 {
		pos = 0
	}
	if e.meta.Duration > 0 && pos > e.meta.Duration {
		pos = e.meta.Duration
	}
	e.position = pos
	e.finished = false
	playing := e.shouldPlay
	uri, w, h := e.uri, e.frameW, e.frameH
	e.mu.Unlock()

	if playing {
		return e.restart(pos)
	}

	frame, err := grabFrame(ctx, decodeSpec{URI: uri, Width: w, Height: h, Start: pos})
	if err != nil {
		return err
	}
	e.buffer.Replace(frame)
	return nil
}

func (e *FFmpegEngine) Status(ctx context.Context) (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Status{}, ErrNotLoaded
	}
	return e.statusLocked(false), nil
}

// Close stops decoding and the poller. The engine is unusable afterwards.
func (e *FFmpegEngine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()

	e.cancel()
	if stream != nil {
		stream.Stop()
	}
}

func (e *FFmpegEngine) restart(pos time.Duration) error {
	e.mu.Lock()
	old := e.stream
	e.stream = nil
	uri := e.uri
	live := IsLive(uri)
	spec := decodeSpec{
		URI:    uri,
		Width:  e.frameW,
		Height: e.frameH,
		Start:  pos,
		FPS:    targetFPS(e.frameW, e.frameH, e.meta.FPS),
		Live:   live,
	}
	e.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	epoch := e.buffer.Reset()
	stream, err := startDecode(e.ctx, spec, epoch, e.log)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.uri != uri || !e.shouldPlay {
		e.mu.Unlock()
		stream.Stop()
		return nil
	}
	e.stream = stream
	e.position = pos
	e.finished = false
	e.mu.Unlock()

	go stream.pump(e.buffer)
	return nil
}

func (e *FFmpegEngine) currentPositionLocked() time.Duration {
	if e.stream != nil && e.buffer.Frames() > 0 {
		return e.buffer.Position()
	}
	return e.position
}

func (e *FFmpegEngine) statusLocked(justFinished bool) Status {
	playing := e.stream != nil && !e.stream.Ended() && e.buffer.Frames() > 0
	return Status{
		URI:          e.uri,
		Loaded:       e.loaded,
		Position:     e.currentPositionLocked(),
		Duration:     e.meta.Duration,
		IsPlaying:    playing,
		ShouldPlay:   e.shouldPlay,
		IsMuted:      e.muted,
		IsLooping:    e.opts.Looping,
		JustFinished: justFinished,
	}
}

func (e *FFmpegEngine) poll() {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *FFmpegEngine) tick() {
	e.mu.Lock()
	if !e.loaded || e.closed {
		e.mu.Unlock()
		return
	}

	if err := e.buffer.Err(); err != nil && e.stream != nil && e.stream.Ended() {
		e.stream = nil
		e.loaded = false
		e.mu.Unlock()
		e.emitError(err)
		return
	}

	justFinished := false
	restart := false
	if e.stream != nil && e.stream.Ended() && !e.finished {
		justFinished = true
		e.finished = true
		e.stream = nil
		e.position = e.meta.Duration
		if e.opts.Looping && !IsLive(e.uri) {
			restart = true
		} else {
			e.shouldPlay = false
		}
	}
	status := e.statusLocked(justFinished)
	e.mu.Unlock()

	e.send(Event{Kind: EventStatus, Status: status})

	if restart {
		if err := e.restart(0); err != nil {
			e.emitError(err)
		}
	}
}

func (e *FFmpegEngine) emit(kind EventKind, err error) {
	e.mu.Lock()
	status := e.statusLocked(false)
	e.mu.Unlock()
	e.send(Event{Kind: kind, Status: status, Err: err})
}

// emitError reports err both as an error event and as a not-loaded status.
func (e *FFmpegEngine) emitError(err error) {
	e.mu.Lock()
	e.loaded = false
	status := e.statusLocked(false)
	e.mu.Unlock()
	e.send(Event{Kind: EventError, Status: status, Err: err})
	e.send(Event{Kind: EventStatus, Status: status})
}

func (e *FFmpegEngine) send(ev Event) {
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	default:
		if ev.Kind != EventStatus {
			// Lifecycle events must not be dropped; wait for room.
			select {
			case e.events <- ev:
			case <-e.ctx.Done():
			}
			return
		}
		e.log.Trace("status dropped, consumer behind")
	}
}
