package loop

import "time"

// Timer is a pending AfterFunc or Every registration.
type Timer struct {
	loop     *Loop
	fn       func()
	deadline time.Time
	period   time.Duration
	seq      uint64
	index    int
	stopped  bool
}

// Stop cancels the timer. Returns false if it had already fired or been stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.loop == nil {
		return false
	}
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Active reports whether the timer is still scheduled.
func (t *Timer) Active() bool {
	if t == nil || t.loop == nil {
		return false
	}
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	return !t.stopped
}

// Deadline returns when the timer fires next.
func (t *Timer) Deadline() time.Time {
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	return t.deadline
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
