package timeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/klokku/timeline/internal/config"
	"github.com/klokku/timeline/internal/event_bus"
	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo         Repository
	bus          *event_bus.EventBus
	cache        *LayoutCache
	formatter    DateFormatter
	maxRangeDays int
}

// NewService creates the timeline service and subscribes its layout cache to
// timeline changes published on bus.
func NewService(repo Repository, bus *event_bus.EventBus, cfg config.Timeline) *Service {
	s := &Service{
		repo:         repo,
		bus:          bus,
		cache:        NewLayoutCache(cfg.CacheEntries),
		formatter:    PatternFormatter{},
		maxRangeDays: cfg.MaxRangeDays,
	}
	event_bus.SubscribeTyped(bus, event_bus.TimelineEventsChangedType,
		func(e event_bus.EventT[event_bus.TimelineEventsChanged]) error {
			log.Debugf("Dropping cached timelines of user %d", e.Data.UserId)
			s.cache.Invalidate(e.Data.UserId)
			return nil
		})
	return s
}

func (s *Service) AddEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}
	event.Source = sourceOrDefault(event.Source)

	eventUid, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	event.UID = eventUid

	s.publishChange(ctx, userId, 1, event.Source)
	return event, nil
}

func (s *Service) ModifyEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}

	if err := s.repo.UpdateEvent(ctx, userId, event); err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	updated, err := s.repo.GetEvent(ctx, userId, event.UID)
	if err != nil {
		return Event{}, fmt.Errorf("failed to read updated event: %w", err)
	}

	s.publishChange(ctx, userId, 1, updated.Source)
	return updated, nil
}

func (s *Service) DeleteEvent(ctx context.Context, eventUid uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.DeleteEvent(ctx, userId, eventUid); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.publishChange(ctx, userId, 1, "")
	return nil
}

func (s *Service) GetEvent(ctx context.Context, eventUid uuid.UUID) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvent(ctx, userId, eventUid)
}

func (s *Service) GetEvents(ctx context.Context, from, to lane.Date) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.ValidateRange(from, to); err != nil {
		return nil, err
	}
	return s.repo.GetEvents(ctx, userId, from, to)
}

// ImportEvents stores all events in a single transaction. Nothing is stored
// when any of them is invalid.
func (s *Service) ImportEvents(ctx context.Context, events []Event) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	for i, event := range events {
		if err := validateEvent(event); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i+1, event.Name, err)
		}
	}
	if len(events) == 0 {
		return []Event{}, nil
	}

	var stored []Event
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		var storeErr error
		stored, storeErr = repo.StoreEvents(ctx, userId, events)
		return storeErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import events: %w", err)
	}
	log.Debugf("Imported %d events for user %d", len(stored), userId)

	s.publishChange(ctx, userId, len(stored), sourceOrDefault(events[0].Source))
	return stored, nil
}

// GetTimeline lays out the current user's events overlapping [from, to].
func (s *Service) GetTimeline(ctx context.Context, from, to lane.Date) (Timeline, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Timeline{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.ValidateRange(from, to); err != nil {
		return Timeline{}, err
	}

	if cached, ok := s.cache.Get(userId, from, to); ok {
		log.Tracef("Timeline %s..%s of user %d served from cache", from, to, userId)
		return cached, nil
	}

	generation := s.cache.Generation(userId)
	events, err := s.repo.GetEvents(ctx, userId, from, to)
	if err != nil {
		return Timeline{}, fmt.Errorf("failed to get events: %w", err)
	}
	t := Layout(from, to, events, s.formatter)
	s.cache.Put(userId, from, to, generation, t)
	return t, nil
}

// ValidateRange checks that [from, to] is a complete, ordered range no longer
// than the configured maximum.
func (s *Service) ValidateRange(from, to lane.Date) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	if s.maxRangeDays > 0 && lane.DaysBetweenInclusive(from, to) > s.maxRangeDays {
		return fmt.Errorf("%w: range longer than %d days", ErrInvalidRange, s.maxRangeDays)
	}
	return nil
}

// publishChange runs after the write is committed, so a cancelled request must
// not keep subscribers from seeing it.
func (s *Service) publishChange(ctx context.Context, userId int, count int, source Source) {
	err := s.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.TimelineEventsChangedType, event_bus.TimelineEventsChanged{
		UserId: userId,
		Count:  count,
		Source: string(source),
	}))
	if err != nil {
		log.Errorf("failed to publish timeline change: %v", err)
	}
}

func validateEvent(event Event) error {
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if err := lane.Validate(event); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	switch event.Source {
	case "", SourceManual, SourceGoogle:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidEvent, event.Source)
	}
	return nil
}

// IsClientError reports whether err was caused by the request rather than by
// the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidEvent) || errors.Is(err, ErrInvalidRange)
}
