// Package timezone provides timezone utilities for the openhours engine.
//
// Every helper takes the location explicitly. Nothing in this package reads or
// mutates a process-wide default zone.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// UTC is the coordinated universal time timezone
var UTC = time.UTC

// TimezoneUTC is the default timezone identifier.
const TimezoneUTC = "utc"

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Paris").
// The empty string and any casing of "utc" resolve to UTC.
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || strings.EqualFold(tz, TimezoneUTC) {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// StartOfDay returns the first instant of t's calendar date in the given timezone.
// This is 00:00 unless a DST switch skips local midnight, in which case the day
// begins at the switch.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	y, m, d := t.In(tz).Date()
	return dayStart(y, m, d, tz)
}

// StartOfNextDay returns the first instant of the following calendar day.
// The span between StartOfDay and StartOfNextDay is not always 24h.
func StartOfNextDay(t time.Time, tz *time.Location) time.Time {
	return ShiftDays(t, 1, tz)
}

// ShiftDays returns the first instant of the calendar day n days after t's date.
// n may be negative.
func ShiftDays(t time.Time, n int, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	y, m, d := t.In(tz).Date()
	return dayStart(y, m, d+n, tz)
}

// dayStart returns the first instant of the civil date y-m-d in tz. Out of range
// days are normalized the way time.Date does.
func dayStart(y int, m time.Month, d int, tz *time.Location) time.Time {
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, tz)
	if ty, tm, td := t.Date(); ty == y && tm == m && td == d {
		return t
	}
	// Midnight falls in a gap: the day begins when the previous day's offset ends.
	_, offset := time.Date(y, m, d-1, 12, 0, 0, 0, tz).Zone()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-time.Duration(offset) * time.Second).In(tz)
}

// DaysBetween returns the number of calendar days from a's date to b's date in tz.
// It is negative when b is on an earlier date.
func DaysBetween(a, b time.Time, tz *time.Location) int {
	if tz == nil {
		tz = UTC
	}
	ay, am, ad := a.In(tz).Date()
	by, bm, bd := b.In(tz).Date()
	// Civil dates compared in UTC have no DST gaps.
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// AtClock returns the instant on t's calendar date (in tz) at the given offset from midnight.
// Offsets of 24h or more roll over into the following days. A wall clock that falls
// in a DST gap before the day has begun is moved to the start of the day.
func AtClock(t time.Time, offset time.Duration, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	y, m, d := t.In(tz).Date()
	d += int(offset / (24 * time.Hour))
	offset %= 24 * time.Hour

	h := int(offset / time.Hour)
	min := int((offset % time.Hour) / time.Minute)
	sec := int((offset % time.Minute) / time.Second)
	at := time.Date(y, m, d, h, min, sec, 0, tz)
	if start := dayStart(y, m, d, tz); at.Before(start) {
		return start
	}
	return at
}
