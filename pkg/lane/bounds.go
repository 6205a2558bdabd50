package lane

import (
	"errors"
	"slices"
)

var (
	ErrInvertedRange = errors.New("end date is before start date")
	ErrMissingDate   = errors.New("start and end dates are required")
)

// Validate reports whether e describes a usable range. Assign itself never
// validates; callers that need strict input check each event first.
func Validate(e Interval) error {
	if e.StartDate().IsZero() || e.EndDate().IsZero() {
		return ErrMissingDate
	}
	if e.EndDate().Before(e.StartDate()) {
		return ErrInvertedRange
	}
	return nil
}

// Bounds returns the earliest start date and the latest end date. ok is false
// when events is empty.
func Bounds[E Interval](events []E) (first Date, last Date, ok bool) {
	if len(events) == 0 {
		return Date{}, Date{}, false
	}
	first = events[0].StartDate()
	last = events[0].EndDate()
	for _, e := range events[1:] {
		if e.StartDate().Before(first) {
			first = e.StartDate()
		}
		if e.EndDate().After(last) {
			last = e.EndDate()
		}
	}
	return first, last, true
}

// DaysBetweenInclusive counts the days from start to end including both. It
// never returns less than 1, so a single day event has a duration of 1.
func DaysBetweenInclusive(start, end Date) int {
	return max(1, DaysBetween(start, end)+1)
}

// Position returns how many days after origin the event starts (zero based,
// never negative) and how many days it lasts.
func Position(e Interval, origin Date) (offset int, duration int) {
	offset = max(0, DaysBetween(origin, e.StartDate()))
	duration = DaysBetweenInclusive(e.StartDate(), e.EndDate())
	return offset, duration
}

// MaxDepth returns the largest number of events that cover one and the same
// day. For well formed events it equals len(Assign(events)).
func MaxDepth[E Interval](events []E) int {
	type edge struct {
		at    Date
		delta int
	}
	edges := make([]edge, 0, len(events)*2)
	for _, e := range events {
		edges = append(edges, edge{e.StartDate(), 1}, edge{e.EndDate().AddDays(1), -1})
	}
	// Closing edges go first on the same day: an event ending the day before
	// another starts does not overlap it.
	slices.SortFunc(edges, func(a, b edge) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.delta - b.delta
	})

	depth, deepest := 0, 0
	for _, e := range edges {
		depth += e.delta
		deepest = max(deepest, depth)
	}
	return deepest
}
