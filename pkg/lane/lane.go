package lane

import "slices"

// Interval is anything that occupies an inclusive range of calendar days.
type Interval interface {
	StartDate() Date
	EndDate() Date
}

// Event is a minimal Interval with an identifier and a display name.
type Event struct {
	Id    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Start Date   `json:"start" yaml:"start"`
	End   Date   `json:"end" yaml:"end"`
}

func (e Event) StartDate() Date { return e.Start }

func (e Event) EndDate() Date { return e.End }

// Assign partitions events into lanes so that no two events in the same lane
// share a day. Events are taken in start date order (equal start dates keep
// their input order) and each one goes to the first lane whose last event ends
// strictly before it starts; when no lane qualifies a new lane is opened.
//
// Lanes are returned in creation order and events inside a lane in placement
// order. The number of lanes equals the maximum number of events covering a
// single day. The input slice is left untouched.
func Assign[E Interval](events []E) [][]E {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b E) int {
		return a.StartDate().Compare(b.StartDate())
	})

	lanes := make([][]E, 0)
	lastEnds := make([]Date, 0)
	for _, event := range sorted {
		start := event.StartDate()
		placed := false
		for i, lastEnd := range lastEnds {
			if lastEnd.Before(start) {
				lanes[i] = append(lanes[i], event)
				lastEnds[i] = event.EndDate()
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, []E{event})
			lastEnds = append(lastEnds, event.EndDate())
		}
	}
	return lanes
}
