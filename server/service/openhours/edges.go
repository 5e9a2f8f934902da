package openhours

import (
	"time"

	"github.com/hrygo/openhours/server/timezone"
)

// scanDays is the furthest day offset visited by edge scans. Offset 7 reaches the
// same weekday one week away, so a query sitting on the only edge of the week
// still finds its next occurrence.
const scanDays = 7

type edge int

const (
	edgeOpen edge = iota
	edgeClose
)

func (iv Interval) edge(e edge) time.Time {
	if e == edgeOpen {
		return iv.Start
	}
	return iv.End
}

// NextOpen returns the first range start strictly after t.
func (s *Schedule) NextOpen(t time.Time) (time.Time, bool) {
	return s.nextEdge(t, edgeOpen)
}

// NextClose returns the first range end strictly after t.
func (s *Schedule) NextClose(t time.Time) (time.Time, bool) {
	return s.nextEdge(t, edgeClose)
}

// PreviousOpen returns the latest range start strictly before t.
func (s *Schedule) PreviousOpen(t time.Time) (time.Time, bool) {
	return s.previousEdge(t, edgeOpen)
}

// PreviousClose returns the latest range end strictly before t.
func (s *Schedule) PreviousClose(t time.Time) (time.Time, bool) {
	return s.previousEdge(t, edgeClose)
}

func (s *Schedule) nextEdge(t time.Time, e edge) (time.Time, bool) {
	t = t.In(s.location)
	today := timezone.StartOfDay(t, s.location)
	for offset := 0; offset <= scanDays; offset++ {
		day := timezone.ShiftDays(today, offset, s.location)
		for _, iv := range s.intervalsOn(day) {
			if at := iv.edge(e); at.After(t) {
				return at, true
			}
		}
	}
	return time.Time{}, false
}

func (s *Schedule) previousEdge(t time.Time, e edge) (time.Time, bool) {
	t = t.In(s.location)
	today := timezone.StartOfDay(t, s.location)
	for offset := 0; offset <= scanDays; offset++ {
		day := timezone.ShiftDays(today, -offset, s.location)
		intervals := s.intervalsOn(day)
		for i := len(intervals) - 1; i >= 0; i-- {
			if at := intervals[i].edge(e); at.Before(t) {
				return at, true
			}
		}
	}
	return time.Time{}, false
}
