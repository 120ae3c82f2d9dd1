package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/database"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

const eventColumns = `id, organizer_id, venue_id, category_id, title, description,
	starts_at, ends_at, capacity, status, created_at, reviewed_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

// Transition moves a PENDING event to target in one conditional write.
//
// The store evaluates "status = PENDING" and applies the update atomically,
// so among concurrent callers exactly one sees a row affected. Every other
// caller, and any caller naming a missing event, gets apperr.ErrConflict.
func (r *EventRepository) Transition(ctx context.Context, eventID int64, target model.EventStatus) error {
	if !target.IsReviewOutcome() {
		return apperr.Validation("cannot transition event to %q", target)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET status = $1, reviewed_at = now()
		 WHERE id = $2 AND status = 'PENDING'`,
		string(target), eventID,
	)
	if err != nil {
		return apperr.Store("transition event", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	return nil
}

// HasConflict reports whether [start, end) overlaps a PENDING or APPROVED
// event at venueID.
//
// The answer is only advisory: a booking inserted after this call returns
// can still collide. Create repeats the check under a venue lock.
func (r *EventRepository) HasConflict(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	slot := model.Interval{Start: start, End: end}
	if !slot.Valid() {
		return false, apperr.Validation("start must be before end")
	}
	conflict, err := hasConflict(ctx, r.db, venueID, slot)
	if err != nil {
		return false, apperr.Store("check venue schedule", err)
	}
	return conflict, nil
}

// hasConflict loads the venue's slot-holding events that end after slot
// starts and applies the overlap predicate to each.
func hasConflict(ctx context.Context, q querier, venueID int64, slot model.Interval) (bool, error) {
	rows, err := q.Query(ctx,
		`SELECT starts_at, ends_at
		 FROM events
		 WHERE venue_id = $1
		   AND status IN ('PENDING', 'APPROVED')
		   AND ends_at > $2`,
		venueID, slot.Start,
	)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var booked model.Interval
		if err := rows.Scan(&booked.Start, &booked.End); err != nil {
			return false, fmt.Errorf("scan slot: %w", err)
		}
		if booked.Overlaps(slot) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Create inserts a PENDING event if its venue is free for the requested slot.
//
// The venue row is locked with SELECT … FOR UPDATE for the whole
// transaction, so concurrent bookings for the same venue run the overlap
// check one at a time and each sees every booking committed before it.
func (r *EventRepository) Create(ctx context.Context, in model.NewEvent) (*model.Event, error) {
	slot := model.Interval{Start: in.StartsAt, End: in.EndsAt}
	if !slot.Valid() {
		return nil, apperr.Validation("start must be before end")
	}

	var event *model.Event
	err := inTx(ctx, r.db, "create event", func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM venues WHERE id = $1 FOR UPDATE`,
			in.VenueID,
		).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &apperr.Error{Code: apperr.CodeNotFound, Message: fmt.Sprintf("venue %d not found", in.VenueID)}
			}
			return fmt.Errorf("lock venue: %w", err)
		}

		conflict, err := hasConflict(ctx, tx, in.VenueID, slot)
		if err != nil {
			return fmt.Errorf("check venue schedule: %w", err)
		}
		if conflict {
			return apperr.ErrScheduleConflict
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO events (organizer_id, venue_id, category_id, title, description,
			                     starts_at, ends_at, capacity, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'PENDING')
			 RETURNING `+eventColumns,
			in.OrganizerID, in.VenueID, in.CategoryID, in.Title, in.Description,
			in.StartsAt, in.EndsAt, in.Capacity,
		)
		event, err = scanEvent(row)
		switch {
		case err == nil:
			return nil
		case database.IsForeignKeyViolation(err):
			return apperr.Validation("organizer or category does not exist")
		case database.IsCheckViolation(err):
			return apperr.Validation("event violates a field constraint")
		default:
			return fmt.Errorf("insert event: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetByID returns a single event or apperr.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("get event", err)
	}
	return e, nil
}

// ListPending returns the approval queue, oldest submission first.
func (r *EventRepository) ListPending(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE status = 'PENDING'
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, apperr.Store("list pending events", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, apperr.Store("scan event", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list pending events", err)
	}
	return events, nil
}

// Stats returns the admin dashboard counters.
func (r *EventRepository) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.db.QueryRow(ctx,
		`SELECT
		   (SELECT count(*) FROM events WHERE status = 'PENDING'),
		   (SELECT count(*) FROM events),
		   (SELECT count(*) FROM users)`,
	).Scan(&s.PendingEvents, &s.TotalEvents, &s.TotalUsers)
	if err != nil {
		return model.Stats{}, apperr.Store("load stats", err)
	}
	return s, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e      model.Event
		status string
	)
	err := row.Scan(&e.ID, &e.OrganizerID, &e.VenueID, &e.CategoryID, &e.Title, &e.Description,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &status, &e.CreatedAt, &e.ReviewedAt)
	if err != nil {
		return nil, err
	}
	e.Status = model.EventStatus(status)
	return &e, nil
}
