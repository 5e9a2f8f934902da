package openhours

import (
	"strings"
	"time"

	"github.com/hrygo/openhours/server/internal/errors"
	"github.com/hrygo/openhours/server/timezone"
)

// Unit converts a duration into a numeric count.
type Unit string

const (
	Hours        Unit = "hours"
	Minutes      Unit = "minutes"
	Seconds      Unit = "seconds"
	Milliseconds Unit = "milliseconds"
)

// ParseUnit resolves a unit name in any letter case.
func ParseUnit(name string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(name)))
	switch u {
	case Hours, Minutes, Seconds, Milliseconds:
		return u, nil
	}
	return "", errors.InvalidUnit(name)
}

// Of expresses d in u.
func (u Unit) Of(d time.Duration) (float64, error) {
	switch u {
	case Hours:
		return d.Hours(), nil
	case Minutes:
		return d.Minutes(), nil
	case Seconds:
		return d.Seconds(), nil
	case Milliseconds:
		return float64(d) / float64(time.Millisecond), nil
	}
	return 0, errors.InvalidUnit(string(u))
}

// tally accumulates open and closed time over consecutive segments.
type tally struct {
	open   time.Duration
	closed time.Duration
}

func (t *tally) add(segment, open time.Duration) {
	t.open += open
	t.closed += segment - open
}

// DurationOpen returns how much of [start, end) falls inside opening ranges.
// It is zero when end is not after start.
func (s *Schedule) DurationOpen(start, end time.Time) time.Duration {
	return s.measure(start, end).open
}

// DurationClosed returns how much of [start, end) falls outside opening ranges.
func (s *Schedule) DurationClosed(start, end time.Time) time.Duration {
	return s.measure(start, end).closed
}

// DurationOpenIn is DurationOpen expressed in unit.
func (s *Schedule) DurationOpenIn(start, end time.Time, unit Unit) (float64, error) {
	return unit.Of(s.DurationOpen(start, end))
}

// DurationClosedIn is DurationClosed expressed in unit.
func (s *Schedule) DurationClosedIn(start, end time.Time, unit Unit) (float64, error) {
	return unit.Of(s.DurationClosed(start, end))
}

// DurationOpenHours is DurationOpen in hours.
func (s *Schedule) DurationOpenHours(start, end time.Time) float64 {
	return s.DurationOpen(start, end).Hours()
}

// DurationOpenMinutes is DurationOpen in minutes.
func (s *Schedule) DurationOpenMinutes(start, end time.Time) float64 {
	return s.DurationOpen(start, end).Minutes()
}

// DurationOpenSeconds is DurationOpen in seconds.
func (s *Schedule) DurationOpenSeconds(start, end time.Time) float64 {
	return s.DurationOpen(start, end).Seconds()
}

// DurationClosedHours is DurationClosed in hours.
func (s *Schedule) DurationClosedHours(start, end time.Time) float64 {
	return s.DurationClosed(start, end).Hours()
}

// DurationClosedMinutes is DurationClosed in minutes.
func (s *Schedule) DurationClosedMinutes(start, end time.Time) float64 {
	return s.DurationClosed(start, end).Minutes()
}

// DurationClosedSeconds is DurationClosed in seconds.
func (s *Schedule) DurationClosedSeconds(start, end time.Time) float64 {
	return s.DurationClosed(start, end).Seconds()
}

// measure splits [start, end) into the partial first day, whole weeks, leftover
// whole days and the partial last day. Days are civil days in the schedule's
// location, so DST days are 23h or 25h long.
func (s *Schedule) measure(start, end time.Time) tally {
	var acc tally
	loc := s.location
	start, end = start.In(loc), end.In(loc)
	if !start.Before(end) {
		return acc
	}

	if timezone.DaysBetween(start, end, loc) == 0 {
		acc.add(end.Sub(start), s.openBetween(start, end))
		return acc
	}

	firstFull := timezone.StartOfNextDay(start, loc)
	lastDay := timezone.StartOfDay(end, loc)
	dayStart := func(k int) time.Time {
		return timezone.ShiftDays(firstFull, k, loc)
	}

	acc.add(firstFull.Sub(start), s.openBetween(start, firstFull))
	acc.add(end.Sub(lastDay), s.openBetween(lastDay, end))

	fullDays := timezone.DaysBetween(firstFull, lastDay, loc)
	weeks, rest := fullDays/7, fullDays%7
	for w := 0; w < weeks; w++ {
		weekStart, weekEnd := dayStart(7*w), dayStart(7*w+7)
		acc.add(weekEnd.Sub(weekStart), s.openInWeek(weekStart))
	}
	for d := 0; d < rest; d++ {
		day, next := dayStart(7*weeks+d), dayStart(7*weeks+d+1)
		acc.add(next.Sub(day), s.openBetween(day, next))
	}
	return acc
}

// openBetween sums open time in [from, to). Both ends lie on from's calendar day
// or at the following midnight.
func (s *Schedule) openBetween(from, to time.Time) time.Duration {
	var total time.Duration
	for _, iv := range s.intervalsOn(from) {
		total += iv.Overlap(from, to)
	}
	return total
}

// openInWeek sums the open time of the seven days starting at weekStart.
func (s *Schedule) openInWeek(weekStart time.Time) time.Duration {
	var total time.Duration
	for i := 0; i < 7; i++ {
		day := timezone.ShiftDays(weekStart, i, s.location)
		for _, iv := range s.intervalsOn(day) {
			total += iv.Duration()
		}
	}
	return total
}
