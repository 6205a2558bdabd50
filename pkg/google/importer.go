package google

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/timeline"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
)

// EventImporter stores a batch of events for the current user.
type EventImporter interface {
	ImportEvents(ctx context.Context, events []timeline.Event) ([]timeline.Event, error)
	ValidateRange(from, to lane.Date) error
}

type Importer struct {
	service  Service
	timeline EventImporter
}

func NewImporter(service Service, timeline EventImporter) *Importer {
	return &Importer{service: service, timeline: timeline}
}

// Import copies the events of a Google calendar overlapping [from, to] into
// the current user's timeline. Events imported before are updated in place.
func (i *Importer) Import(ctx context.Context, calendarId string, from, to lane.Date) ([]timeline.Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	location, err := time.LoadLocation(currentUser.Settings.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q of user %d, using UTC", currentUser.Settings.Timezone, currentUser.Id)
		location = time.UTC
	}

	if err := i.timeline.ValidateRange(from, to); err != nil {
		return nil, err
	}

	googleEvents, err := i.service.FetchEvents(ctx, calendarId, from, to)
	if err != nil {
		return nil, err
	}
	events := toTimelineEvents(googleEvents, location)
	log.Debugf("Importing %d of %d Google events for user %d", len(events), len(googleEvents), currentUser.Id)

	return i.timeline.ImportEvents(ctx, events)
}
