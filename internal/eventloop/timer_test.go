package eventloop

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_Fires(t *testing.T) {
	l := startLoop(t)
	tm := l.NewTimer()

	var fired atomic.Int32
	tm.Reset(10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

func TestTimer_ResetReplacesPending(t *testing.T) {
	l := startLoop(t)
	tm := l.NewTimer()

	var first, second atomic.Int32
	tm.Reset(20*time.Millisecond, func() { first.Add(1) })
	tm.Reset(20*time.Millisecond, func() { second.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := first.Load(); got != 0 {
		t.Errorf("replaced fire ran %d times, want 0", got)
	}
	if got := second.Load(); got != 1 {
		t.Errorf("second fire ran %d times, want 1", got)
	}
}

func TestTimer_StopCancels(t *testing.T) {
	l := startLoop(t)
	tm := l.NewTimer()

	var fired atomic.Int32
	tm.Reset(20*time.Millisecond, func() { fired.Add(1) })
	tm.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("stopped timer fired %d times, want 0", got)
	}
}

func TestTimer_ReusableAfterStop(t *testing.T) {
	l := startLoop(t)
	tm := l.NewTimer()

	var fired atomic.Int32
	tm.Reset(20*time.Millisecond, func() { fired.Add(1) })
	tm.Stop()
	tm.Reset(10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}
