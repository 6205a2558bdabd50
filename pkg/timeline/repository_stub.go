package timeline

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/klokku/timeline/pkg/lane"
)

var errStubFailure = errors.New("stub repository failure")

type storedEvent struct {
	seq    int
	userId int
	event  Event
}

// RepositoryStub keeps events in memory. Transactions restore the previous
// state when the callback fails.
type RepositoryStub struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]storedEvent
	nextSeq int
	// FailOn makes StoreEvents fail once it reaches an event with this name.
	FailOn string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items: make(map[uuid.UUID]storedEvent),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalItems := maps.Clone(r.items)
	originalSeq := r.nextSeq
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items = originalItems
		r.nextSeq = originalSeq
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, userId int, event Event) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.UID = uuid.New()
	event.Source = sourceOrDefault(event.Source)
	r.insert(userId, event)
	return event.UID, nil
}

func (r *RepositoryStub) StoreEvents(ctx context.Context, userId int, events []Event) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]Event, 0, len(events))
	for _, event := range events {
		if r.FailOn != "" && event.Name == r.FailOn {
			return nil, errStubFailure
		}
		event.Source = sourceOrDefault(event.Source)
		if existing, ok := r.findExternal(userId, event.Source, event.ExternalId); ok {
			event.UID = existing.event.UID
			existing.event = event
			r.items[event.UID] = existing
		} else {
			event.UID = uuid.New()
			r.insert(userId, event)
		}
		stored = append(stored, event)
	}
	return stored, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId int, eventUid uuid.UUID) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[eventUid]
	if !ok || item.userId != userId {
		return Event{}, ErrEventNotFound
	}
	return item.event, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, userId int, from, to lane.Date) ([]Event, error) {
	return r.filter(userId, func(e Event) bool {
		return !e.Start.After(to) && !e.End.Before(from)
	}), nil
}

func (r *RepositoryStub) GetAllEvents(ctx context.Context, userId int) ([]Event, error) {
	return r.filter(userId, func(Event) bool { return true }), nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, userId int, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[event.UID]
	if !ok || item.userId != userId {
		return ErrEventNotFound
	}
	item.event.Name = event.Name
	item.event.Start = event.Start
	item.event.End = event.End
	item.event.Notes = event.Notes
	r.items[event.UID] = item
	return nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId int, eventUid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[eventUid]
	if !ok || item.userId != userId {
		return ErrEventNotFound
	}
	delete(r.items, eventUid)
	return nil
}

func (r *RepositoryStub) insert(userId int, event Event) {
	r.nextSeq++
	r.items[event.UID] = storedEvent{seq: r.nextSeq, userId: userId, event: event}
}

func (r *RepositoryStub) findExternal(userId int, source Source, externalId string) (storedEvent, bool) {
	if externalId == "" {
		return storedEvent{}, false
	}
	for _, item := range r.items {
		if item.userId == userId && item.event.Source == source && item.event.ExternalId == externalId {
			return item, true
		}
	}
	return storedEvent{}, false
}

func (r *RepositoryStub) filter(userId int, keep func(Event) bool) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matching := make([]storedEvent, 0)
	for _, item := range r.items {
		if item.userId == userId && keep(item.event) {
			matching = append(matching, item)
		}
	}
	slices.SortFunc(matching, func(a, b storedEvent) int {
		if c := a.event.Start.Compare(b.event.Start); c != 0 {
			return c
		}
		return a.seq - b.seq
	})

	events := make([]Event, 0, len(matching))
	for _, item := range matching {
		events = append(events, item.event)
	}
	return events
}
