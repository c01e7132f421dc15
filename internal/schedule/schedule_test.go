package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOpenWithNoSchedule(t *testing.T) {
	s := New(time.Time{}, false)
	assert.True(t, s.Open())
	assert.False(t, s.Postponed())
	assert.True(t, s.OpensAt().IsZero())
}

func TestPostponedWinsOverOpensAt(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	s := New(past, true)
	assert.False(t, s.Open())
	assert.True(t, s.Postponed())
	assert.True(t, s.OpensAt().IsZero())
	assert.Equal(t, "Registration is not yet open.", s.ClosedMessage())
}

func TestOpensAtBoundary(t *testing.T) {
	opensAt := time.Date(2026, 2, 11, 13, 0, 0, 0, time.UTC)

	before := NewWithClock(opensAt, false, fixedClock(opensAt.Add(-time.Minute)))
	assert.False(t, before.Open())

	exactly := NewWithClock(opensAt, false, fixedClock(opensAt))
	assert.True(t, exactly.Open())

	after := NewWithClock(opensAt, false, fixedClock(opensAt.Add(time.Minute)))
	assert.True(t, after.Open())
}

func TestClosedMessageNamesOpeningTime(t *testing.T) {
	opensAt := time.Date(2026, 2, 11, 18, 0, 0, 0, time.UTC)
	s := NewWithClock(opensAt, false, fixedClock(opensAt.Add(-time.Hour)))

	msg := s.ClosedMessage()
	assert.Contains(t, msg, "February 11, 2026")
	assert.Contains(t, msg, "ET.")
}
