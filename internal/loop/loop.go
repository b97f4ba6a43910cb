// Package loop provides the single UI thread every controller mutates state on.
//
// Callbacks posted from other goroutines (engine events, capture results,
// orientation locks) and timer fires are applied one at a time, in arrival
// order, on whichever goroutine drives the loop.
package loop

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler is the part of the loop controllers depend on.
type Scheduler interface {
	Now() time.Time
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) *Timer
	Every(d time.Duration, fn func()) *Timer
	Go(work func())
}

type Loop struct {
	clock clock.Clock

	mu      sync.Mutex
	queue   []func()
	timers  timerHeap
	seq     uint64
	closed  bool
	wake    chan struct{}
	running sync.WaitGroup
}

// New returns a loop driven by clk; nil means the wall clock.
func New(clk clock.Clock) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		clock: clk,
		wake:  make(chan struct{}, 1),
	}
}

func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Post queues fn to run on the loop. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.notify()
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	return l.schedule(d, 0, fn)
}

// Every runs fn on the loop each period until the timer is stopped.
func (l *Loop) Every(period time.Duration, fn func()) *Timer {
	return l.schedule(period, period, fn)
}

// Go runs work on its own goroutine. Settle waits for it.
func (l *Loop) Go(work func()) {
	l.running.Add(1)
	go func() {
		defer l.running.Done()
		work()
	}()
}

func (l *Loop) schedule(d, period time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	t := &Timer{loop: l, fn: fn, period: period}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		t.stopped = true
		return t
	}
	l.seq++
	t.seq = l.seq
	t.deadline = l.clock.Now().Add(d)
	heap.Push(&l.timers, t)
	l.mu.Unlock()

	l.notify()
	return t
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Flush runs everything that is runnable right now: posted callbacks and
// timers whose deadline has passed. Callbacks posted while flushing are run
// in the same call. Returns how many callbacks ran.
func (l *Loop) Flush() int {
	ran := 0
	for {
		fn := l.next()
		if fn == nil {
			return ran
		}
		fn()
		ran++
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Posted callbacks already waiting go before timers.
	if len(l.queue) > 0 {
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		return fn
	}

	now := l.clock.Now()
	for l.timers.Len() > 0 {
		t := l.timers[0]
		if t.stopped {
			heap.Pop(&l.timers)
			continue
		}
		if t.deadline.After(now) {
			return nil
		}
		heap.Pop(&l.timers)
		if t.period > 0 {
			t.deadline = t.deadline.Add(t.period)
			l.seq++
			t.seq = l.seq
			heap.Push(&l.timers, t)
		} else {
			t.stopped = true
		}
		return t.fn
	}
	return nil
}

// Settle flushes until no callback is runnable and no Go work is running.
// It must be called from the goroutine that owns the loop.
func (l *Loop) Settle() {
	for {
		l.running.Wait()
		if l.Flush() == 0 && l.idle() {
			return
		}
	}
}

func (l *Loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) == 0
}

// Run drives the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()

		var timerC <-chan time.Time
		var timer *clock.Timer
		if wait, ok := l.untilNext(); ok {
			timer = l.clock.Timer(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *Loop) untilNext() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.timers.Len() > 0 && l.timers[0].stopped {
		heap.Pop(&l.timers)
	}
	if l.timers.Len() == 0 {
		return 0, false
	}
	wait := l.timers[0].deadline.Sub(l.clock.Now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// Close drops all pending work; later posts and timers are ignored.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
	for _, t := range l.timers {
		t.stopped = true
	}
	l.timers = nil
}

// Async runs work off the loop and delivers its result back on the loop.
func Async[T any](s Scheduler, work func() (T, error), done func(T, error)) {
	s.Go(func() {
		v, err := work()
		s.Post(func() { done(v, err) })
	})
}
