package openhours

import (
	"time"
)

// Interval is a half-open span [Start, End) between two absolute instants.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t is inside the interval. Start is included, End is not.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns the elapsed time between Start and End.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether the two intervals share time or touch at an endpoint.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !other.Start.After(iv.End)
}

// Union returns the smallest interval covering both. Callers check Overlaps first.
func (iv Interval) Union(other Interval) Interval {
	out := iv
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Overlap returns how much of [from, to) falls inside the interval.
func (iv Interval) Overlap(from, to time.Time) time.Duration {
	start := iv.Start
	if from.After(start) {
		start = from
	}
	end := iv.End
	if to.Before(end) {
		end = to
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}

// Clock formats the interval as "HH:mm-HH:mm". An end at midnight of a later day reads "24:00".
func (iv Interval) Clock() string {
	end := iv.End.Format("15:04")
	if end == "00:00" && iv.End.After(iv.Start) {
		end = "24:00"
	}
	return iv.Start.Format("15:04") + "-" + end
}

// String formats the interval as "<RFC3339 start>/<RFC3339 end>".
func (iv Interval) String() string {
	return iv.Start.Format(time.RFC3339) + "/" + iv.End.Format(time.RFC3339)
}
