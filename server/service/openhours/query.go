package openhours

import (
	"time"
)

// intervalsOn returns the ranges of t's weekday rebased onto t's calendar date, sorted by start.
func (s *Schedule) intervalsOn(t time.Time) []Interval {
	t = t.In(s.location)
	return s.rebase(s.days[weekdayIndex(t)], t)
}

// IsOpenAt reports whether t falls inside an opening range.
func (s *Schedule) IsOpenAt(t time.Time) bool {
	_, ok := s.OpenRangeAt(t)
	return ok
}

// IsClosedAt is the negation of IsOpenAt.
func (s *Schedule) IsClosedAt(t time.Time) bool {
	return !s.IsOpenAt(t)
}

// IsOpen reports whether the business is open now.
func (s *Schedule) IsOpen() bool {
	return s.IsOpenAt(s.now())
}

// IsClosed reports whether the business is closed now.
func (s *Schedule) IsClosed() bool {
	return !s.IsOpen()
}

// OpenRangeAt returns the range containing t, on t's calendar date.
func (s *Schedule) OpenRangeAt(t time.Time) (Interval, bool) {
	t = t.In(s.location)
	for _, iv := range s.intervalsOn(t) {
		if iv.Contains(t) {
			return iv, true
		}
	}
	return Interval{}, false
}

// CurrentOpenInterval returns the range containing now.
func (s *Schedule) CurrentOpenInterval() (Interval, bool) {
	return s.OpenRangeAt(s.now())
}

// CurrentOpenRange returns the range containing now as "HH:mm-HH:mm".
func (s *Schedule) CurrentOpenRange() (string, bool) {
	iv, ok := s.CurrentOpenInterval()
	if !ok {
		return "", false
	}
	return iv.Clock(), true
}

// CurrentOpenRangeStart returns when the current range opened.
func (s *Schedule) CurrentOpenRangeStart() (time.Time, bool) {
	iv, ok := s.CurrentOpenInterval()
	return iv.Start, ok
}

// CurrentOpenRangeEnd returns when the current range closes.
func (s *Schedule) CurrentOpenRangeEnd() (time.Time, bool) {
	iv, ok := s.CurrentOpenInterval()
	return iv.End, ok
}

// ForDay returns the ranges of day as "HH:mm-HH:mm" strings.
// The boolean is false when the day has no ranges or is not a weekday name.
func (s *Schedule) ForDay(day Weekday) ([]string, bool) {
	idx, ok := day.index()
	if !ok || len(s.days[idx]) == 0 {
		return nil, false
	}
	return formatSpans(s.days[idx]), true
}

// ForDayIntervals returns the ranges of day on its reference-week date.
func (s *Schedule) ForDayIntervals(day Weekday) ([]Interval, bool) {
	idx, ok := day.index()
	if !ok || len(s.days[idx]) == 0 {
		return nil, false
	}
	return s.anchored(idx), true
}

// ForDate returns the ranges of t's weekday as "HH:mm-HH:mm" strings.
func (s *Schedule) ForDate(t time.Time) ([]string, bool) {
	return s.ForDay(WeekdayOf(t.In(s.location)))
}

// ForDateIntervals returns the ranges of t's weekday placed on t's calendar date.
func (s *Schedule) ForDateIntervals(t time.Time) ([]Interval, bool) {
	intervals := s.intervalsOn(t)
	if len(intervals) == 0 {
		return nil, false
	}
	return intervals, true
}

// IsOpenOn reports whether day has at least one range.
func (s *Schedule) IsOpenOn(day Weekday) bool {
	idx, ok := day.index()
	return ok && len(s.days[idx]) > 0
}

// IsClosedOn reports whether day has no ranges.
func (s *Schedule) IsClosedOn(day Weekday) bool {
	return !s.IsOpenOn(day)
}
