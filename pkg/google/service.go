package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrUnauthenticated = errors.New("user is unauthenticated, authentication is required")

// eventsPageSize is the largest page the Calendar API serves.
const eventsPageSize = 2500

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// FetchEvents returns the events of calendarId overlapping [from, to],
	// recurring events expanded into single instances.
	FetchEvents(ctx context.Context, calendarId string, from, to lane.Date) ([]*calendar.Event, error)
}

// ClientProvider hands out HTTP clients authorized for a user. GoogleAuth is
// the production implementation.
type ClientProvider interface {
	Client(ctx context.Context, userId int) (*http.Client, error)
}

type ServiceImpl struct {
	clients ClientProvider
	options []option.ClientOption
}

// NewService creates the service. Extra options are passed to every Calendar
// client, e.g. option.WithEndpoint to talk to a test server.
func NewService(clients ClientProvider, opts ...option.ClientOption) *ServiceImpl {
	return &ServiceImpl{
		clients: clients,
		options: opts,
	}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) FetchEvents(ctx context.Context, calendarId string, from, to lane.Date) ([]*calendar.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return nil, err
	}

	// TimeMax is exclusive, so the day after to closes the range.
	timeMin := from.Time().Format(time.RFC3339)
	timeMax := to.AddDays(1).Time().Format(time.RFC3339)

	var events []*calendar.Event
	pageToken := ""
	for {
		call := googleService.Events.List(calendarId).
			Context(ctx).
			TimeMin(timeMin).
			TimeMax(timeMax).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(eventsPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, page.Items...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	log.Debugf("Fetched %d events from Google calendar %s", len(events), calendarId)
	return events, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context, userId int) (*calendar.Service, error) {
	client, err := s.clients.Client(ctx, userId)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}
