package eventloop

import (
	"sync"
	"time"
)

// Timer is a one-shot timer bound to a loop. Resetting or stopping it
// invalidates any previously scheduled fire, so a given handle never has
// more than one fire pending. The callback runs on the loop goroutine.
type Timer struct {
	loop *Loop

	mu  sync.Mutex
	seq uint64
	t   *time.Timer
}

// NewTimer creates an idle timer handle for this loop.
func (l *Loop) NewTimer() *Timer {
	return &Timer{loop: l}
}

// Reset cancels any pending fire and schedules fn to run after d.
func (tm *Timer) Reset(d time.Duration, fn func()) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.seq++
	seq := tm.seq
	if tm.t != nil {
		tm.t.Stop()
	}
	tm.t = time.AfterFunc(d, func() {
		tm.loop.Post(func() {
			// A Stop or Reset that raced the fire wins.
			tm.mu.Lock()
			live := seq == tm.seq
			tm.mu.Unlock()
			if live {
				fn()
			}
		})
	})
}

// Stop cancels any pending fire. A fire already in flight becomes a no-op.
func (tm *Timer) Stop() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.seq++
	if tm.t != nil {
		tm.t.Stop()
		tm.t = nil
	}
}
