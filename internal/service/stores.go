package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// EventStore is implemented by *repository.EventRepository.
type EventStore interface {
	Create(ctx context.Context, in model.NewEvent) (*model.Event, error)
	Transition(ctx context.Context, eventID int64, target model.EventStatus) error
	HasConflict(ctx context.Context, venueID int64, start, end time.Time) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	ListPending(ctx context.Context) ([]model.Event, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// UserStore is implemented by *repository.UserRepository.
type UserStore interface {
	Register(ctx context.Context, u model.NewUser) (int64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AttendanceStore is implemented by *repository.AttendanceRepository.
type AttendanceStore interface {
	SetAttendance(ctx context.Context, userID, eventID int64, status model.RSVPStatus) error
	GetStatus(ctx context.Context, userID, eventID int64) (model.RSVPStatus, error)
	ListAttendees(ctx context.Context, eventID int64) ([]model.Attendance, error)
	CountGoing(ctx context.Context, eventID int64) (int, error)
}

// ResourceStore is implemented by *repository.ResourceRepository.
type ResourceStore interface {
	CreateVenue(ctx context.Context, v model.Venue) (*model.Venue, error)
	ListVenues(ctx context.Context) ([]model.Venue, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateDepartment(ctx context.Context, name string) (*model.Department, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
}
