package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/database"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// AttendanceRepository handles persistence for RSVPs.
type AttendanceRepository struct {
	db DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// upsertAttendance writes status for (user, event). A row that already has
// status is left untouched, timestamp included.
const upsertAttendance = `
	INSERT INTO attends (user_id, event_id, status, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (user_id, event_id) DO UPDATE
	SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	WHERE attends.status <> EXCLUDED.status`

// SetAttendance records a user's RSVP for an event.
//
// NOT_GOING and MAYBE are a plain upsert. GOING must keep
//
//	count(attends WHERE event_id = X AND status = 'GOING') <= events.capacity
//
// under concurrent callers, so it runs in a transaction that first locks the
// event row with FOR NO KEY UPDATE. Every other GOING writer for the same
// event blocks on that lock until this transaction ends, and then counts
// with this one's write visible. The lock does not block the foreign-key
// checks of plain NOT_GOING/MAYBE upserts. When the ceiling is already met the
// transaction rolls back and the caller's existing record is unchanged.
func (r *AttendanceRepository) SetAttendance(ctx context.Context, userID, eventID int64, status model.RSVPStatus) error {
	switch status {
	case model.RSVPNotGoing, model.RSVPMaybe:
		_, err := r.db.Exec(ctx, upsertAttendance, userID, eventID, string(status))
		if database.IsForeignKeyViolation(err) {
			return &apperr.Error{Code: apperr.CodeNotFound, Message: "user or event not found"}
		}
		if err != nil {
			return apperr.Store("set attendance", err)
		}
		return nil
	case model.RSVPGoing:
		return r.setGoing(ctx, userID, eventID)
	default:
		return apperr.Validation("unknown rsvp status %q", status)
	}
}

func (r *AttendanceRepository) setGoing(ctx context.Context, userID, eventID int64) error {
	return inTx(ctx, r.db, "set attendance", func(tx pgx.Tx) error {
		var capacity int
		err := tx.QueryRow(ctx,
			`SELECT capacity FROM events WHERE id = $1 FOR NO KEY UPDATE`,
			eventID,
		).Scan(&capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &apperr.Error{Code: apperr.CodeNotFound, Message: fmt.Sprintf("event %d not found", eventID)}
			}
			return fmt.Errorf("lock event row: %w", err)
		}

		var current string
		err = tx.QueryRow(ctx,
			`SELECT status FROM attends WHERE user_id = $1 AND event_id = $2`,
			userID, eventID,
		).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read attendance: %w", err)
		}
		if model.RSVPStatus(current) == model.RSVPGoing {
			return nil
		}

		var going int
		err = tx.QueryRow(ctx,
			`SELECT count(*) FROM attends
			 WHERE event_id = $1 AND status = 'GOING' AND user_id <> $2`,
			eventID, userID,
		).Scan(&going)
		if err != nil {
			return fmt.Errorf("count attendees: %w", err)
		}
		if going >= capacity {
			return apperr.ErrCapacityExceeded
		}

		_, err = tx.Exec(ctx, upsertAttendance, userID, eventID, string(model.RSVPGoing))
		if database.IsForeignKeyViolation(err) {
			return &apperr.Error{Code: apperr.CodeNotFound, Message: fmt.Sprintf("user %d not found", userID)}
		}
		if err != nil {
			return fmt.Errorf("upsert attendance: %w", err)
		}
		return nil
	})
}

// GetStatus returns the user's RSVP for the event, or apperr.ErrNotFound if
// they never answered.
func (r *AttendanceRepository) GetStatus(ctx context.Context, userID, eventID int64) (model.RSVPStatus, error) {
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT status FROM attends WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", apperr.Store("get attendance", err)
	}
	return model.RSVPStatus(status), nil
}

// CountGoing returns the number of GOING records for the event.
func (r *AttendanceRepository) CountGoing(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM attends WHERE event_id = $1 AND status = 'GOING'`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Store("count attendees", err)
	}
	return n, nil
}

// ListAttendees returns the GOING records for an event, most recent first.
func (r *AttendanceRepository) ListAttendees(ctx context.Context, eventID int64) ([]model.Attendance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.user_id, a.event_id, a.status, a.updated_at, u.display_name
		 FROM attends a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.event_id = $1 AND a.status = 'GOING'
		 ORDER BY a.updated_at DESC, a.user_id ASC`,
		eventID,
	)
	if err != nil {
		return nil, apperr.Store("list attendees", err)
	}
	defer rows.Close()

	var out []model.Attendance
	for rows.Next() {
		var (
			a      model.Attendance
			status string
		)
		if err := rows.Scan(&a.UserID, &a.EventID, &status, &a.UpdatedAt, &a.UserName); err != nil {
			return nil, apperr.Store("scan attendee", err)
		}
		a.Status = model.RSVPStatus(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list attendees", err)
	}
	return out, nil
}
