package google

import (
	"time"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/timeline"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
)

const untitledEvent = "(No title)"

// toTimelineEvents converts Google events into timeline events. Cancelled
// events and events without usable dates are skipped.
func toTimelineEvents(items []*calendar.Event, location *time.Location) []timeline.Event {
	events := make([]timeline.Event, 0, len(items))
	for _, item := range items {
		event, ok := toTimelineEvent(item, location)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events
}

func toTimelineEvent(item *calendar.Event, location *time.Location) (timeline.Event, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return timeline.Event{}, false
	}

	start, end, err := eventDays(item.Start, item.End, location)
	if err != nil {
		log.Warnf("skipping Google event %s with unreadable dates: %v", item.Id, err)
		return timeline.Event{}, false
	}

	name := item.Summary
	if name == "" {
		name = untitledEvent
	}
	return timeline.Event{
		Name:       name,
		Start:      start,
		End:        end,
		Notes:      item.Description,
		Source:     timeline.SourceGoogle,
		ExternalId: item.Id,
	}, true
}

// eventDays returns the inclusive first and last day of an event. Google ends
// are exclusive: an all-day event on June 20 ends on June 21 and a meeting
// ending at midnight does not reach into the next day.
func eventDays(startTime, endTime *calendar.EventDateTime, location *time.Location) (lane.Date, lane.Date, error) {
	if startTime.Date != "" {
		start, err := lane.ParseDate(startTime.Date)
		if err != nil {
			return lane.Date{}, lane.Date{}, err
		}
		end := start
		if endTime.Date != "" {
			exclusiveEnd, err := lane.ParseDate(endTime.Date)
			if err != nil {
				return lane.Date{}, lane.Date{}, err
			}
			end = exclusiveEnd.AddDays(-1)
		}
		if end.Before(start) {
			end = start
		}
		return start, end, nil
	}

	startAt, err := time.Parse(time.RFC3339, startTime.DateTime)
	if err != nil {
		return lane.Date{}, lane.Date{}, err
	}
	endAt, err := time.Parse(time.RFC3339, endTime.DateTime)
	if err != nil {
		return lane.Date{}, lane.Date{}, err
	}
	start := lane.DateOf(startAt.In(location))
	end := start
	if endAt.After(startAt) {
		end = lane.DateOf(endAt.Add(-time.Nanosecond).In(location))
	}
	return start, end, nil
}
