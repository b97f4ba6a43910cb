package media

import (
	"image"
	"sync"
	"time"
)

// Frame is one decoded picture and its presentation time.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Duration
}

// Clone copies the frame so it outlives the decoder's double buffer.
func (f *Frame) Clone() *Frame {
	if f == nil || f.Image == nil {
		return nil
	}
	img := image.NewRGBA(f.Image.Rect)
	copy(img.Pix, f.Image.Pix)
	return &Frame{Image: img, Timestamp: f.Timestamp}
}

// epochStats is what the buffer knows about the current decode.
type epochStats struct {
	frames  uint64
	dropped uint64
	err     error
}

// FrameBuffer hands the latest frame from a decode goroutine to the
// renderer. Each decode runs under an epoch; Reset starts a new one and
// anything published under an older epoch is refused.
type FrameBuffer struct {
	mu    sync.RWMutex
	epoch uint64
	stats epochStats
	frame *Frame
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{epoch: 1}
}

// Reset opens a new epoch. The last frame stays up until a new one lands.
func (fb *FrameBuffer) Reset() uint64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.epoch++
	fb.stats = epochStats{}
	return fb.epoch
}

// Clear is Reset that also blanks the picture.
func (fb *FrameBuffer) Clear() uint64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.epoch++
	fb.stats = epochStats{}
	fb.frame = nil
	return fb.epoch
}

func (fb *FrameBuffer) Epoch() uint64 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.epoch
}

// Publish makes f current if epoch is still current.
func (fb *FrameBuffer) Publish(f *Frame, epoch uint64) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if epoch != fb.epoch {
		return false
	}
	fb.frame = f
	fb.stats.frames++
	return true
}

// Replace swaps the picture regardless of epoch, e.g. a still after a paused seek.
func (fb *FrameBuffer) Replace(f *Frame) {
	fb.mu.Lock()
	fb.frame = f
	fb.mu.Unlock()
}

func (fb *FrameBuffer) Load() *Frame {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.frame
}

// Drop counts a frame skipped for lateness.
func (fb *FrameBuffer) Drop() {
	fb.mu.Lock()
	fb.stats.dropped++
	fb.mu.Unlock()
}

func (fb *FrameBuffer) DroppedFrames() uint64 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.stats.dropped
}

// Frames is the number published in the current epoch.
func (fb *FrameBuffer) Frames() uint64 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.stats.frames
}

// SetError records a decode failure for epoch, if it is still current.
func (fb *FrameBuffer) SetError(err error, epoch uint64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if epoch == fb.epoch {
		fb.stats.err = err
	}
}

func (fb *FrameBuffer) Err() error {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.stats.err
}

// Position is the timestamp of the picture on screen.
func (fb *FrameBuffer) Position() time.Duration {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	if fb.frame == nil {
		return 0
	}
	return fb.frame.Timestamp
}
