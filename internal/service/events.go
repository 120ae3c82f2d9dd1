package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// EventService handles event submission, review and venue checks.
type EventService struct {
	events EventStore
	opts   Options
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, opts Options) *EventService {
	return &EventService{events: events, opts: opts}
}

// Submit validates in and books the venue slot as a PENDING event.
func (s *EventService) Submit(ctx context.Context, in model.NewEvent) (*model.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	in.StartsAt = in.StartsAt.UTC()
	in.EndsAt = in.EndsAt.UTC()

	log := s.opts.logger().WithFields(logrus.Fields{
		"organizer_id": in.OrganizerID,
		"venue_id":     in.VenueID,
	})
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	event, err := s.events.Create(ctx, in)
	if err != nil {
		logOutcome(log, err, "submit event")
		return nil, err
	}
	log.WithField("event_id", event.ID).Info("event submitted")
	return event, nil
}

// Approve moves a PENDING event to APPROVED. Losing to another reviewer
// returns apperr.ErrConflict.
func (s *EventService) Approve(ctx context.Context, eventID int64) error {
	return s.review(ctx, eventID, model.EventApproved)
}

// Reject moves a PENDING event to REJECTED, releasing its venue slot.
func (s *EventService) Reject(ctx context.Context, eventID int64) error {
	return s.review(ctx, eventID, model.EventRejected)
}

// Review applies an admin decision given as a status string.
func (s *EventService) Review(ctx context.Context, eventID int64, status string) error {
	target, err := model.ParseEventStatus(status)
	if err != nil {
		return apperr.Validation("%v", err)
	}
	return s.review(ctx, eventID, target)
}

func (s *EventService) review(ctx context.Context, eventID int64, target model.EventStatus) error {
	if err := requireID("event id", eventID); err != nil {
		return err
	}
	log := s.opts.logger().WithFields(logrus.Fields{"event_id": eventID, "status": target})
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	if err := s.events.Transition(ctx, eventID, target); err != nil {
		logOutcome(log, err, "review event")
		return err
	}
	log.Info("event reviewed")
	return nil
}

// CheckVenue reports whether [start, end) at venueID overlaps a booking that
// holds the venue. The result is advisory; Submit re-checks atomically.
func (s *EventService) CheckVenue(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	if err := requireID("venue id", venueID); err != nil {
		return false, err
	}
	if !(model.Interval{Start: start, End: end}).Valid() {
		return false, apperr.Validation("start must be before end")
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	conflict, err := s.events.HasConflict(ctx, venueID, start.UTC(), end.UTC())
	if err != nil {
		logOutcome(s.opts.logger().WithField("venue_id", venueID), err, "check venue")
		return false, err
	}
	return conflict, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, eventID int64) (*model.Event, error) {
	if err := requireID("event id", eventID); err != nil {
		return nil, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.events.GetByID(ctx, eventID)
}

// ListPending returns the approval queue.
func (s *EventService) ListPending(ctx context.Context) ([]model.Event, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.events.ListPending(ctx)
}

// Dashboard returns the admin counters.
func (s *EventService) Dashboard(ctx context.Context) (model.Stats, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.events.Stats(ctx)
}
