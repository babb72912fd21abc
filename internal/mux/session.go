package mux

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"

	"github.com/mktdesk/streammux/internal/wire"
)

// sessionTracker recognizes trading-day rollovers. Two upstream shapes
// feed it: the initial connected acknowledgment carrying a date, and an
// explicit session-change event carrying a new date or a new_day flag.
// A repeated date is a no-op, so each rollover broadcasts exactly once.
type sessionTracker struct {
	logger *slog.Logger
	cal    *calendar.Calendar
	loc    *time.Location
	now    func() time.Time

	date string // current trading date, "" until first learned
}

func newSessionTracker(logger *slog.Logger) *sessionTracker {
	s := &sessionTracker{
		logger: logger,
		now:    time.Now,
		loc:    time.UTC,
	}

	// NYSE calendar for the session label; dates themselves always come
	// from upstream.
	if cal := calendar.GetCalendar("xnys"); cal != nil {
		s.cal = cal
		if cal.Loc != nil {
			s.loc = cal.Loc
		}
	} else if nyc, err := time.LoadLocation("America/New_York"); err == nil {
		s.loc = nyc
	}

	return s
}

// Observe inspects one inbound envelope. Returns the rollover notice and
// true exactly when a known trading date changed.
func (s *sessionTracker) Observe(env wire.Envelope) (wire.DayChange, bool) {
	var date string
	switch env.Type {
	case wire.TypeConnected:
		date = env.TradingDate
	case wire.TypeSessionChange:
		date = env.TradingDate
		if date == "" && env.NewDay {
			// Explicit rollover without a date: today in exchange time.
			date = s.now().In(s.loc).Format("2006-01-02")
		}
	default:
		return wire.DayChange{}, false
	}

	if date == "" || date == s.date {
		return wire.DayChange{}, false
	}

	prev := s.date
	s.date = date

	if prev == "" {
		// First date learned; nothing rolled over.
		return wire.DayChange{}, false
	}

	return wire.DayChange{
		Type:         wire.NoticeDayChange,
		PreviousDate: prev,
		NewDate:      date,
		Session:      s.sessionLabel(),
		Timestamp:    s.now().UnixMilli(),
	}, true
}

// sessionLabel classifies the moment of the rollover against the exchange
// calendar.
func (s *sessionTracker) sessionLabel() string {
	if s.cal == nil {
		return "open"
	}
	now := s.now().In(s.loc)
	if !s.cal.IsBusinessDay(now) {
		return "holiday"
	}
	if s.cal.IsOpen(now) {
		return "open"
	}
	return "closed"
}
