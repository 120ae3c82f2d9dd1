package service

import (
	"context"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

type fakeEvents struct {
	mu          sync.Mutex
	created     []model.NewEvent
	transitions map[int64]model.EventStatus
	err         error
	block       bool
}

func (f *fakeEvents) Create(ctx context.Context, in model.NewEvent) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &model.Event{
		ID: int64(len(f.created)), OrganizerID: in.OrganizerID, VenueID: in.VenueID,
		Title: in.Title, StartsAt: in.StartsAt, EndsAt: in.EndsAt, Capacity: in.Capacity,
		Status: model.EventPending,
	}, nil
}

func (f *fakeEvents) Transition(ctx context.Context, eventID int64, target model.EventStatus) error {
	if f.block {
		<-ctx.Done()
		return apperr.Store("transition event", ctx.Err())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.transitions == nil {
		f.transitions = map[int64]model.EventStatus{}
	}
	if _, done := f.transitions[eventID]; done {
		return apperr.ErrConflict
	}
	f.transitions[eventID] = target
	return nil
}

func (f *fakeEvents) HasConflict(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	return venueID == 1, f.err
}

func (f *fakeEvents) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeEvents) ListPending(ctx context.Context) ([]model.Event, error) { return nil, f.err }

func (f *fakeEvents) Stats(ctx context.Context) (model.Stats, error) {
	return model.Stats{PendingEvents: 1, TotalEvents: 2, TotalUsers: 3}, f.err
}

type fakeUsers struct {
	mu          sync.Mutex
	byEmail     map[string]model.User
	existsCalls int
	registers   int
}

func (f *fakeUsers) Register(ctx context.Context, u model.NewUser) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	if f.byEmail == nil {
		f.byEmail = map[string]model.User{}
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return 0, apperr.ErrDuplicateIdentity
	}
	id := int64(len(f.byEmail) + 1)
	f.byEmail[u.Email] = model.User{
		ID: id, Email: u.Email, PasswordHash: u.PasswordHash,
		DisplayName: u.DisplayName, Phone: u.Phone, Role: u.Role,
	}
	return id, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	_, ok := f.byEmail[email]
	return ok, nil
}

type rsvpKey struct{ user, event int64 }

type fakeAttendance struct {
	mu       sync.Mutex
	capacity int
	records  map[rsvpKey]model.RSVPStatus
	calls    int
}

func (f *fakeAttendance) SetAttendance(ctx context.Context, userID, eventID int64, status model.RSVPStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.records == nil {
		f.records = map[rsvpKey]model.RSVPStatus{}
	}
	k := rsvpKey{userID, eventID}
	if status == model.RSVPGoing && f.records[k] != model.RSVPGoing {
		going := 0
		for key, st := range f.records {
			if key.event == eventID && st == model.RSVPGoing {
				going++
			}
		}
		if going >= f.capacity {
			return apperr.ErrCapacityExceeded
		}
	}
	f.records[k] = status
	return nil
}

func (f *fakeAttendance) GetStatus(ctx context.Context, userID, eventID int64) (model.RSVPStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.records[rsvpKey{userID, eventID}]
	if !ok {
		return "", apperr.ErrNotFound
	}
	return st, nil
}

func (f *fakeAttendance) ListAttendees(ctx context.Context, eventID int64) ([]model.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Attendance
	for k, st := range f.records {
		if k.event == eventID && st == model.RSVPGoing {
			out = append(out, model.Attendance{UserID: k.user, EventID: k.event, Status: st})
		}
	}
	return out, nil
}

func (f *fakeAttendance) CountGoing(ctx context.Context, eventID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k, st := range f.records {
		if k.event == eventID && st == model.RSVPGoing {
			n++
		}
	}
	return n, nil
}
