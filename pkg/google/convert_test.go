package google

import (
	"testing"
	"time"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

func allDay(id, summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{Date: start},
		End:     &calendar.EventDateTime{Date: end},
	}
}

func timed(id, summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
}

func TestToTimelineEvent(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		item      *calendar.Event
		wantStart lane.Date
		wantEnd   lane.Date
	}{
		{
			name:      "single all-day event ends on its start day",
			item:      allDay("a", "Holiday", "2024-06-20", "2024-06-21"),
			wantStart: lane.NewDate(2024, 6, 20),
			wantEnd:   lane.NewDate(2024, 6, 20),
		},
		{
			name:      "multi-day all-day event",
			item:      allDay("b", "Trip", "2024-06-20", "2024-06-24"),
			wantStart: lane.NewDate(2024, 6, 20),
			wantEnd:   lane.NewDate(2024, 6, 23),
		},
		{
			name:      "all-day event with end equal to start",
			item:      allDay("c", "Odd", "2024-06-20", "2024-06-20"),
			wantStart: lane.NewDate(2024, 6, 20),
			wantEnd:   lane.NewDate(2024, 6, 20),
		},
		{
			name:      "timed event uses the day in the user's timezone",
			item:      timed("d", "Late call", "2024-06-20T23:30:00Z", "2024-06-21T00:30:00Z"),
			wantStart: lane.NewDate(2024, 6, 21),
			wantEnd:   lane.NewDate(2024, 6, 21),
		},
		{
			name:      "timed event ending at midnight stays on its day",
			item:      timed("e", "Evening", "2024-06-20T20:00:00+02:00", "2024-06-21T00:00:00+02:00"),
			wantStart: lane.NewDate(2024, 6, 20),
			wantEnd:   lane.NewDate(2024, 6, 20),
		},
		{
			name:      "timed event spanning days",
			item:      timed("f", "Conference", "2024-06-20T09:00:00+02:00", "2024-06-22T17:00:00+02:00"),
			wantStart: lane.NewDate(2024, 6, 20),
			wantEnd:   lane.NewDate(2024, 6, 22),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event, ok := toTimelineEvent(tc.item, warsaw)

			require.True(t, ok)
			assert.Equal(t, tc.wantStart, event.Start)
			assert.Equal(t, tc.wantEnd, event.End)
			assert.Equal(t, timeline.SourceGoogle, event.Source)
			assert.Equal(t, tc.item.Id, event.ExternalId)
			assert.NoError(t, lane.Validate(event))
		})
	}
}

func TestToTimelineEvents_SkipsUnusableEvents(t *testing.T) {
	cancelled := allDay("x", "Cancelled", "2024-06-20", "2024-06-21")
	cancelled.Status = "cancelled"
	items := []*calendar.Event{
		allDay("a", "", "2024-06-20", "2024-06-21"),
		cancelled,
		{Id: "no-dates"},
		timed("bad", "Bad", "yesterday", "today"),
	}

	events := toTimelineEvents(items, time.UTC)

	require.Len(t, events, 1)
	assert.Equal(t, "(No title)", events[0].Name)
}
