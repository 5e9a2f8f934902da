package openhours

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/openhours/server/timezone"
)

var (
	validStart = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	validEnd   = regexp.MustCompile(`^(?:([01][0-9]|2[0-3]):([0-5][0-9])|(24):(00))$`)
)

// span is an opening range expressed as offsets from midnight.
// to may equal 24h when the range closes at midnight.
type span struct {
	from time.Duration
	to   time.Duration
}

// on rebases the span onto the calendar date of day in loc.
func (s span) on(day time.Time, loc *time.Location) Interval {
	return Interval{
		Start: timezone.AtClock(day, s.from, loc),
		End:   timezone.AtClock(day, s.to, loc),
	}
}

func (s span) String() string {
	return formatClock(s.from) + "-" + formatClock(s.to)
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int((d%time.Hour)/time.Minute))
}

// parseRange parses "HH:mm-HH:mm". The end may be "24:00".
func parseRange(s string) (span, error) {
	l := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(l) != 2 {
		return span{}, fmt.Errorf("cannot parse %q: not a valid interval", s)
	}
	from, err := parseClock(validStart, l[0])
	if err != nil {
		return span{}, err
	}
	to, err := parseClock(validEnd, l[1])
	if err != nil {
		return span{}, err
	}
	if to <= from {
		return span{}, fmt.Errorf("cannot parse %q: end must be after start", s)
	}
	return span{from: from, to: to}, nil
}

func parseClock(re *regexp.Regexp, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	m := re.FindStringSubmatch(s)
	if len(m) == 0 {
		return 0, fmt.Errorf("cannot parse %q: not a valid time", s)
	}
	hh, mm := m[1], m[2]
	if hh == "" {
		hh, mm = m[3], m[4]
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q: %s", hh, err)
	}
	min, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q: %s", mm, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute, nil
}

// mergeSpans merges overlapping or touching spans and returns them sorted by start.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].from == sorted[j].from {
			return sorted[i].to < sorted[j].to
		}
		return sorted[i].from < sorted[j].from
	})

	merged := []span{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if next.from <= cur.to {
			if next.to > cur.to {
				cur.to = next.to
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}
