package openhours

import (
	"strings"
	"time"

	"github.com/hrygo/openhours/server/internal/errors"
)

// Weekday is a lowercase English weekday name used as a schedule key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists every weekday in canonical order, Monday first.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday resolves a weekday name in any letter case.
func ParseWeekday(name string) (Weekday, error) {
	wd := Weekday(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := wd.index(); !ok {
		return "", errors.InvalidWeekday(name)
	}
	return wd, nil
}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[weekdayIndex(t)]
}

// String implements fmt.Stringer.
func (w Weekday) String() string {
	return string(w)
}

// index returns the Monday-based position of w.
func (w Weekday) index() (int, bool) {
	for i, day := range Weekdays {
		if day == w {
			return i, true
		}
	}
	return -1, false
}

// weekdayIndex maps time.Weekday (Sunday = 0) onto the Monday-based order.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
