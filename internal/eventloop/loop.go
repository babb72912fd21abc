// Package eventloop provides the single-threaded run loop the multiplexer
// core is confined to.
//
// All mutable core state (registry, aggregates, session date, transport
// state machine) is touched only by functions executed on the loop, so no
// locking discipline is needed beyond posting work onto it. Timers are
// replace-on-reset handles: at most one pending instance per handle.
package eventloop

import "context"

// Loop executes posted functions sequentially on a single goroutine.
type Loop struct {
	cmds chan func()
	done chan struct{}
}

// New creates a loop with the given command buffer size.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 256
	}
	return &Loop{
		cmds: make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// Run processes posted functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.cmds:
			fn()
		}
	}
}

// Post schedules fn to run on the loop goroutine. Safe from any goroutine.
// Posts after shutdown are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.cmds <- fn:
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
// Must not be called from the loop goroutine itself.
func (l *Loop) Call(fn func()) {
	ran := make(chan struct{})
	l.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-l.done:
	case <-ran:
	}
}
