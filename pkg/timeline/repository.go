package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timeline/pkg/lane"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, userId int, event Event) (uuid.UUID, error)
	// StoreEvents inserts events in order. Events with an external id replace
	// the one already stored for the same user, source and external id.
	StoreEvents(ctx context.Context, userId int, events []Event) ([]Event, error)
	GetEvent(ctx context.Context, userId int, eventUid uuid.UUID) (Event, error)
	// GetEvents returns the events overlapping [from, to], ordered by start date.
	GetEvents(ctx context.Context, userId int, from, to lane.Date) ([]Event, error)
	GetAllEvents(ctx context.Context, userId int) ([]Event, error)
	UpdateEvent(ctx context.Context, userId int, event Event) error
	DeleteEvent(ctx context.Context, userId int, eventUid uuid.UUID) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const eventColumns = `uid, name, start_date, end_date, notes, source, external_id`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId int, event Event) (uuid.UUID, error) {
	query := `INSERT INTO timeline_event (uid, user_id, name, start_date, end_date, notes, source, external_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	uid := uuid.New()
	_, err := r.getQueryer().Exec(ctx, query, uid, userId, event.Name, event.Start.Time(), event.End.Time(),
		event.Notes, string(sourceOrDefault(event.Source)), nullable(event.ExternalId))
	if err != nil {
		err := fmt.Errorf("could not store timeline event: %w", err)
		log.Error(err)
		return uuid.Nil, err
	}
	return uid, nil
}

func (r *RepositoryImpl) StoreEvents(ctx context.Context, userId int, events []Event) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	query := `INSERT INTO timeline_event (uid, user_id, name, start_date, end_date, notes, source, external_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (user_id, source, external_id) WHERE external_id IS NOT NULL
			  DO UPDATE SET name = EXCLUDED.name,
			                start_date = EXCLUDED.start_date,
			                end_date = EXCLUDED.end_date,
			                notes = EXCLUDED.notes
			  RETURNING uid`

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(query, uuid.New(), userId, event.Name, event.Start.Time(), event.End.Time(),
			event.Notes, string(sourceOrDefault(event.Source)), nullable(event.ExternalId))
	}

	results := r.getBatcher().SendBatch(ctx, batch)
	defer results.Close()

	stored := make([]Event, 0, len(events))
	for _, event := range events {
		var uid uuid.UUID
		if err := results.QueryRow().Scan(&uid); err != nil {
			err := fmt.Errorf("could not store timeline event %q: %w", event.Name, err)
			log.Error(err)
			return nil, err
		}
		event.UID = uid
		event.Source = sourceOrDefault(event.Source)
		stored = append(stored, event)
	}
	return stored, nil
}

func (r *RepositoryImpl) getBatcher() interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, eventUid uuid.UUID) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM timeline_event WHERE uid = $1 AND user_id = $2`

	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, eventUid, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not get timeline event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, userId int, from, to lane.Date) ([]Event, error) {
	// An event overlaps the period when it starts before the period ends and
	// ends after the period starts.
	query := `SELECT ` + eventColumns + `
			  FROM timeline_event
			  WHERE user_id = $1
			    AND start_date <= $2
			    AND end_date >= $3
			  ORDER BY start_date, id`

	return r.queryEvents(ctx, query, userId, to.Time(), from.Time())
}

func (r *RepositoryImpl) GetAllEvents(ctx context.Context, userId int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM timeline_event WHERE user_id = $1 ORDER BY start_date, id`
	return r.queryEvents(ctx, query, userId)
}

func (r *RepositoryImpl) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query timeline events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("could not read timeline events: %v", err)
		return nil, err
	}
	return events, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event Event) error {
	query := `UPDATE timeline_event SET name = $1, start_date = $2, end_date = $3, notes = $4
			  WHERE uid = $5 AND user_id = $6`

	tag, err := r.getQueryer().Exec(ctx, query, event.Name, event.Start.Time(), event.End.Time(), event.Notes,
		event.UID, userId)
	if err != nil {
		err := fmt.Errorf("could not update timeline event: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, eventUid uuid.UUID) error {
	query := `DELETE FROM timeline_event WHERE uid = $1 AND user_id = $2`

	tag, err := r.getQueryer().Exec(ctx, query, eventUid, userId)
	if err != nil {
		err := fmt.Errorf("could not delete timeline event: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var start, end time.Time
	var source string
	var externalId *string
	err := row.Scan(&event.UID, &event.Name, &start, &end, &event.Notes, &source, &externalId)
	if err != nil {
		return Event{}, err
	}
	event.Start = lane.DateOf(start)
	event.End = lane.DateOf(end)
	event.Source = Source(source)
	if externalId != nil {
		event.ExternalId = *externalId
	}
	return event, nil
}

func sourceOrDefault(source Source) Source {
	if source == "" {
		return SourceManual
	}
	return source
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
