package timeline

import (
	"github.com/klokku/timeline/pkg/lane"
)

// Timeline is the lane layout of the events overlapping [From, To].
type Timeline struct {
	From lane.Date
	To   lane.Date
	// Start and End are the earliest start and latest end of the events.
	// Both are zero when there are no events.
	Start     lane.Date
	End       lane.Date
	TotalDays int
	Depth     int
	Lanes     []Lane
	Scale     []ScaleMark
}

type Lane struct {
	Index int
	Items []Placement
}

// Placement is an event with its position relative to Timeline.Start.
type Placement struct {
	Event    Event
	Offset   int
	Duration int
}

// Layout assigns events to lanes and measures every placement against the
// bounds of all events.
func Layout(from, to lane.Date, events []Event, formatter DateFormatter) Timeline {
	t := Timeline{
		From:  from,
		To:    to,
		Lanes: make([]Lane, 0),
		Scale: make([]ScaleMark, 0),
	}
	start, end, ok := lane.Bounds(events)
	if !ok {
		return t
	}
	t.Start = start
	t.End = end
	t.TotalDays = lane.DaysBetweenInclusive(start, end)

	assigned := lane.Assign(events)
	t.Depth = len(assigned)
	for i, laneEvents := range assigned {
		items := make([]Placement, 0, len(laneEvents))
		for _, e := range laneEvents {
			offset, duration := lane.Position(e, start)
			items = append(items, Placement{Event: e, Offset: offset, Duration: duration})
		}
		t.Lanes = append(t.Lanes, Lane{Index: i, Items: items})
	}
	t.Scale = BuildScale(events, start, formatter)
	return t
}
