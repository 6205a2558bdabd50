package timeline

import (
	"errors"

	"github.com/google/uuid"
	"github.com/klokku/timeline/pkg/lane"
)

var (
	ErrInvalidEvent  = errors.New("invalid event")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrEventNotFound = errors.New("event not found")
)

type Source string

const (
	SourceManual Source = "manual"
	SourceGoogle Source = "google"
)

// Event is a named range of calendar days owned by a user. Start and End are
// both inclusive.
type Event struct {
	UID   uuid.UUID
	Name  string
	Start lane.Date
	End   lane.Date
	Notes string
	// Source tells where the event came from. Imported events also carry the
	// identifier they have in that source.
	Source     Source
	ExternalId string
}

func (e Event) StartDate() lane.Date { return e.Start }

func (e Event) EndDate() lane.Date { return e.End }
