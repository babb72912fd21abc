package mux

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mktdesk/streammux/internal/wire"
)

func newTestTracker() *sessionTracker {
	s := newSessionTracker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Fixed clock and label behavior so assertions do not depend on the
	// exchange calendar data.
	s.cal = nil
	s.loc = time.UTC
	s.now = func() time.Time {
		return time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	}
	return s
}

func TestSession_FirstDateIsNotARollover(t *testing.T) {
	s := newTestTracker()

	_, changed := s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-09"})
	if changed {
		t.Error("first learned date reported as a rollover")
	}
}

func TestSession_RolloverBroadcastsOnce(t *testing.T) {
	s := newTestTracker()

	s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-09"})

	change, changed := s.Observe(wire.Envelope{Type: wire.TypeSessionChange, TradingDate: "2026-03-10"})
	if !changed {
		t.Fatal("date change not detected")
	}
	if change.PreviousDate != "2026-03-09" || change.NewDate != "2026-03-10" {
		t.Errorf("rollover = %q -> %q, want 2026-03-09 -> 2026-03-10", change.PreviousDate, change.NewDate)
	}
	if change.Type != wire.NoticeDayChange {
		t.Errorf("notice type = %q, want %q", change.Type, wire.NoticeDayChange)
	}

	// The same date again must not retrigger.
	if _, again := s.Observe(wire.Envelope{Type: wire.TypeSessionChange, TradingDate: "2026-03-10"}); again {
		t.Error("repeated date reported as a second rollover")
	}
}

func TestSession_NewDayFlagUsesExchangeClock(t *testing.T) {
	s := newTestTracker()

	s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-09"})

	change, changed := s.Observe(wire.Envelope{Type: wire.TypeSessionChange, NewDay: true})
	if !changed {
		t.Fatal("new_day flag not detected")
	}
	if change.NewDate != "2026-03-10" {
		t.Errorf("new date = %q, want %q", change.NewDate, "2026-03-10")
	}
}

func TestSession_ReconnectSameDayIsQuiet(t *testing.T) {
	s := newTestTracker()

	s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-10"})

	if _, changed := s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-10"}); changed {
		t.Error("reconnect acknowledgment on the same day reported as a rollover")
	}
}

func TestSession_OtherEnvelopesIgnored(t *testing.T) {
	s := newTestTracker()

	s.Observe(wire.Envelope{Type: wire.TypeConnected, TradingDate: "2026-03-09"})

	if _, changed := s.Observe(wire.Envelope{Type: "snapshot", List: "gainers"}); changed {
		t.Error("data envelope treated as a session event")
	}
	if _, changed := s.Observe(wire.Envelope{Type: wire.TypeSessionChange}); changed {
		t.Error("session event with neither date nor flag treated as a rollover")
	}
}

func TestSession_LabelWithoutCalendar(t *testing.T) {
	s := newTestTracker()
	if got := s.sessionLabel(); got != "open" {
		t.Errorf("sessionLabel() = %q, want %q without calendar data", got, "open")
	}
}
