package event_bus

const TimelineEventsChangedType EventType = "timeline.events.changed"

// TimelineEventsChanged is published after events of a user were created,
// modified, deleted or imported.
type TimelineEventsChanged struct {
	UserId int
	// Count is the number of events touched by the change.
	Count  int
	Source string
}
