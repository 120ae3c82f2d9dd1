// Package model defines the core domain types for the university event backend.
package model

import (
	"fmt"
	"strings"
	"time"
)

// EventStatus is the review state of an event.
type EventStatus string

const (
	EventPending  EventStatus = "PENDING"
	EventApproved EventStatus = "APPROVED"
	EventRejected EventStatus = "REJECTED"
)

// ParseEventStatus normalises s and checks it is a known status.
func ParseEventStatus(s string) (EventStatus, error) {
	st := EventStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case EventPending, EventApproved, EventRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}

// IsReviewOutcome reports whether s is a status an admin may move an event to.
func (s EventStatus) IsReviewOutcome() bool {
	return s == EventApproved || s == EventRejected
}

// HoldsVenue reports whether an event in this status occupies its venue slot.
func (s EventStatus) HoldsVenue() bool {
	return s == EventPending || s == EventApproved
}

// RSVPStatus is a user's attendance answer for an event.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "GOING"
	RSVPNotGoing RSVPStatus = "NOT_GOING"
	RSVPMaybe    RSVPStatus = "MAYBE"
)

// ParseRSVPStatus normalises s and checks it is a known RSVP status.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	st := RSVPStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case RSVPGoing, RSVPNotGoing, RSVPMaybe:
		return st, nil
	}
	return "", fmt.Errorf("unknown rsvp status %q", s)
}

// Event is a venue booking submitted by an organizer.
type Event struct {
	ID          int64       `json:"id"`
	OrganizerID int64       `json:"organizer_id"`
	VenueID     int64       `json:"venue_id"`
	CategoryID  int64       `json:"category_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Capacity    int         `json:"capacity"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ReviewedAt  *time.Time  `json:"reviewed_at,omitempty"`
}

// Slot returns the half-open interval the event occupies.
func (e *Event) Slot() Interval {
	return Interval{Start: e.StartsAt, End: e.EndsAt}
}

// NewEvent is the input for submitting an event.
type NewEvent struct {
	OrganizerID int64     `json:"organizer_id" validate:"required,gt=0"`
	VenueID     int64     `json:"venue_id" validate:"required,gt=0"`
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int       `json:"capacity" validate:"required,gt=0,lte=100000"`
}

// Attendance is one user's RSVP for one event.
type Attendance struct {
	UserID    int64      `json:"user_id"`
	EventID   int64      `json:"event_id"`
	Status    RSVPStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
	UserName  string     `json:"user_name,omitempty"`
}

// Venue is a bookable location.
type Venue struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=500"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

// Category groups events.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

// Department is an academic or administrative unit.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=200"`
}

// Stats summarises the system for the admin dashboard.
type Stats struct {
	PendingEvents int `json:"pending_events"`
	TotalEvents   int `json:"total_events"`
	TotalUsers    int `json:"total_users"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
