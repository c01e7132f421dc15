// Package schedule decides whether the registration window is open.
//
// Two knobs control the window: an opens-at instant and a postponed flag.
// Postponed wins: a postponed event is closed indefinitely regardless of
// the opens-at date. With neither set, registration is always open.
package schedule

import "time"

// Schedule is the registration window policy.
type Schedule struct {
	opensAt   time.Time
	postponed bool
	now       func() time.Time
}

// New builds a Schedule. A zero opensAt means no scheduled opening.
func New(opensAt time.Time, postponed bool) *Schedule {
	return &Schedule{opensAt: opensAt, postponed: postponed, now: time.Now}
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(opensAt time.Time, postponed bool, now func() time.Time) *Schedule {
	return &Schedule{opensAt: opensAt, postponed: postponed, now: now}
}

// Open reports whether submissions are currently accepted.
func (s *Schedule) Open() bool {
	if s.postponed {
		return false
	}
	if s.opensAt.IsZero() {
		return true
	}
	return !s.now().Before(s.opensAt)
}

// Postponed reports whether the event is postponed indefinitely.
func (s *Schedule) Postponed() bool {
	return s.postponed
}

// OpensAt returns the scheduled opening instant, or the zero time when no
// opening is scheduled (or the event is postponed).
func (s *Schedule) OpensAt() time.Time {
	if s.postponed {
		return time.Time{}
	}
	return s.opensAt
}

// ClosedMessage renders the human-readable reason submissions are rejected
// while the window is closed.
func (s *Schedule) ClosedMessage() string {
	if s.postponed || s.opensAt.IsZero() {
		return "Registration is not yet open."
	}
	et := s.opensAt
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		et = s.opensAt.In(loc)
	}
	return "Registration opens on " + et.Format("January 2, 2006") +
		" at " + et.Format("3:04 PM") + " ET."
}
