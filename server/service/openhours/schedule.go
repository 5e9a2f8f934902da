// Package openhours models a weekly business-hours schedule and answers queries
// against it: open or closed at an instant, the ranges of a day, the next or
// previous open and close edges, and how much time between two instants falls
// inside or outside open hours.
//
// A Schedule is immutable once built. Queries rebase copies of the stored ranges
// onto the calendar date they are asked about, so a single value can be shared
// between goroutines.
package openhours

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/openhours/server/internal/errors"
	"github.com/hrygo/openhours/server/timezone"
)

// Error is the structured error returned by this package.
type Error = errors.HoursError

// ErrorCode identifies the kind of an Error.
type ErrorCode = errors.ErrorCode

const (
	ErrCodeInvalidTimezone    = errors.ErrCodeInvalidTimezone
	ErrCodeInvalidRangeFormat = errors.ErrCodeInvalidRangeFormat
	ErrCodeInvalidWeekday     = errors.ErrCodeInvalidWeekday
	ErrCodeInvalidUnit        = errors.ErrCodeInvalidUnit
)

// IsCode reports whether err, or any error it wraps, carries code.
func IsCode(err error, code ErrorCode) bool {
	return errors.IsCode(err, code)
}

// CodeOf returns the code carried by err, or "" when err is not an Error.
func CodeOf(err error) ErrorCode {
	return errors.GetCodeFromError(err, "")
}

// Definition is the human-entered input: weekday to "HH:mm-HH:mm" ranges.
// A missing weekday has no ranges. Empty strings are ignored.
type Definition map[Weekday][]string

// DefinitionFromMap converts a string-keyed map, as decoded from YAML or JSON.
func DefinitionFromMap(m map[string][]string) Definition {
	def := make(Definition, len(m))
	for k, v := range m {
		def[Weekday(k)] = v
	}
	return def
}

// Schedule holds seven lists of merged opening ranges, one per weekday.
type Schedule struct {
	timezone string
	location *time.Location
	days     [7][]span
	// anchors holds the reference-week date of each weekday.
	anchors [7]time.Time
	now     func() time.Time
}

type options struct {
	clock  func() time.Time
	logger *slog.Logger
	strict bool
}

// Option configures a Schedule.
type Option func(*options)

// WithClock sets the source of "now". Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger used while building the schedule.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrictRanges makes New fail on malformed ranges and unknown weekdays
// instead of dropping them.
func WithStrictRanges() Option {
	return func(o *options) {
		o.strict = true
	}
}

// New parses def, merges overlapping ranges and anchors them on the reference
// week in the given timezone. An empty timezone means UTC.
func New(def Definition, tz string, opts ...Option) (*Schedule, error) {
	o := options{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tz) == "" {
		tz = timezone.TimezoneUTC
	}

	s := &Schedule{
		timezone: tz,
		location: loc,
		now:      o.clock,
	}

	var collected [7][]span
	for _, key := range sortedKeys(def) {
		day, err := ParseWeekday(string(key))
		if err != nil {
			if o.strict {
				return nil, err
			}
			o.logger.Warn("ignoring unknown weekday in opening hours", "weekday", string(key))
			continue
		}
		idx, _ := day.index()
		for _, raw := range def[key] {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			sp, err := parseRange(raw)
			if err != nil {
				if o.strict {
					return nil, errors.InvalidRangeFormat(string(day), raw, err)
				}
				o.logger.Warn("dropping malformed opening range",
					"weekday", string(day),
					"range", raw,
					"error", err,
				)
				continue
			}
			collected[idx] = append(collected[idx], sp)
		}
	}

	openDays := 0
	for i := range collected {
		s.days[i] = mergeSpans(collected[i])
		if len(s.days[i]) > 0 {
			openDays++
		}
	}
	s.anchors = referenceWeek(o.clock(), loc)

	o.logger.Debug("opening hours schedule created",
		"timezone", s.timezone,
		"open_days", openDays,
		"reference_monday", s.anchors[0].Format("2006-01-02"),
	)
	return s, nil
}

// LoadLocation resolves tz the way New does: empty or any casing of "utc" is UTC,
// anything else must be an IANA name.
func LoadLocation(tz string) (*time.Location, error) {
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, errors.InvalidTimezone(tz, err)
	}
	return loc, nil
}

// referenceWeek returns, for each weekday, its date in the ISO week containing now,
// moved one week forward when that date is already in the past.
func referenceWeek(now time.Time, loc *time.Location) [7]time.Time {
	today := timezone.StartOfDay(now, loc)
	monday := timezone.ShiftDays(today, -weekdayIndex(today), loc)

	var anchors [7]time.Time
	for i := range anchors {
		day := timezone.ShiftDays(monday, i, loc)
		if day.Before(today) {
			day = timezone.ShiftDays(day, 7, loc)
		}
		anchors[i] = day
	}
	return anchors
}

func sortedKeys(def Definition) []Weekday {
	keys := make([]Weekday, 0, len(def))
	for k := range def {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Timezone returns the timezone identifier the schedule was built with.
func (s *Schedule) Timezone() string {
	return s.timezone
}

// Location returns the resolved location used by every date computation.
func (s *Schedule) Location() *time.Location {
	return s.location
}

// Definition returns the normalized ranges as a Definition that New accepts.
func (s *Schedule) Definition() Definition {
	def := make(Definition)
	for i, day := range Weekdays {
		if ranges := formatSpans(s.days[i]); len(ranges) > 0 {
			def[day] = ranges
		}
	}
	return def
}

// StructuredData returns every weekday with its reference-week intervals
// formatted as "<RFC3339 start>/<RFC3339 end>". Closed days map to an empty slice.
func (s *Schedule) StructuredData() map[Weekday][]string {
	out := make(map[Weekday][]string, len(Weekdays))
	for i, day := range Weekdays {
		intervals := s.anchored(i)
		values := make([]string, 0, len(intervals))
		for _, iv := range intervals {
			values = append(values, iv.String())
		}
		out[day] = values
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	hours := make(map[Weekday][]string, len(Weekdays))
	for i, day := range Weekdays {
		ranges := formatSpans(s.days[i])
		if ranges == nil {
			ranges = []string{}
		}
		hours[day] = ranges
	}
	return json.Marshal(struct {
		Timezone string               `json:"timezone"`
		Hours    map[Weekday][]string `json:"hours"`
	}{
		Timezone: s.timezone,
		Hours:    hours,
	})
}

// anchored returns the ranges of weekday i on its reference-week date.
func (s *Schedule) anchored(i int) []Interval {
	return s.rebase(s.days[i], s.anchors[i])
}

// rebase places spans on day's calendar date. Ranges that vanish in a DST gap are skipped.
func (s *Schedule) rebase(spans []span, day time.Time) []Interval {
	out := make([]Interval, 0, len(spans))
	for _, sp := range spans {
		iv := sp.on(day, s.location)
		if iv.Start.Before(iv.End) {
			out = append(out, iv)
		}
	}
	return out
}

func formatSpans(spans []span) []string {
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, sp.String())
	}
	return out
}
