package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// AttendanceService handles RSVPs.
type AttendanceService struct {
	attendance AttendanceStore
	opts       Options
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance AttendanceStore, opts Options) *AttendanceService {
	return &AttendanceService{attendance: attendance, opts: opts}
}

// RSVP sets the user's attendance for eventID and returns the normalised
// status that was stored. GOING fails with apperr.ErrCapacityExceeded when
// the event is full.
func (s *AttendanceService) RSVP(ctx context.Context, eventID int64, req model.AttendanceRequest) (model.RSVPStatus, error) {
	if err := requireID("event id", eventID); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	status, err := model.ParseRSVPStatus(req.Status)
	if err != nil {
		return "", apperr.Validation("%v", err)
	}

	log := s.opts.logger().WithFields(logrus.Fields{
		"event_id": eventID,
		"user_id":  req.UserID,
		"status":   status,
	})
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	if err := s.attendance.SetAttendance(ctx, req.UserID, eventID, status); err != nil {
		logOutcome(log, err, "set attendance")
		return "", err
	}
	log.Info("attendance set")
	return status, nil
}

// Status returns the user's current RSVP for the event.
func (s *AttendanceService) Status(ctx context.Context, userID, eventID int64) (model.RSVPStatus, error) {
	if err := requireID("user id", userID); err != nil {
		return "", err
	}
	if err := requireID("event id", eventID); err != nil {
		return "", err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.attendance.GetStatus(ctx, userID, eventID)
}

// Attendees lists the users GOING to the event.
func (s *AttendanceService) Attendees(ctx context.Context, eventID int64) ([]model.Attendance, error) {
	if err := requireID("event id", eventID); err != nil {
		return nil, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.attendance.ListAttendees(ctx, eventID)
}

// Headcount returns the number of users GOING to the event.
func (s *AttendanceService) Headcount(ctx context.Context, eventID int64) (int, error) {
	if err := requireID("event id", eventID); err != nil {
		return 0, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.attendance.CountGoing(ctx, eventID)
}
