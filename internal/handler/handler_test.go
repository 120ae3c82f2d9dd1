package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/config"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/service"
)

// ─── Stub stores ──────────────────────────────────────────────────────────────

type stubEvents struct {
	mu       sync.Mutex
	reviewed map[int64]bool
	err      error
}

func (s *stubEvents) Create(_ context.Context, in model.NewEvent) (*model.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if in.VenueID == 1 {
		return nil, apperr.ErrScheduleConflict
	}
	return &model.Event{ID: 7, VenueID: in.VenueID, Title: in.Title, StartsAt: in.StartsAt,
		EndsAt: in.EndsAt, Capacity: in.Capacity, Status: model.EventPending}, nil
}

func (s *stubEvents) Transition(_ context.Context, id int64, _ model.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reviewed == nil {
		s.reviewed = map[int64]bool{}
	}
	if s.reviewed[id] {
		return apperr.ErrConflict
	}
	s.reviewed[id] = true
	return nil
}

func (s *stubEvents) HasConflict(_ context.Context, venueID int64, _, _ time.Time) (bool, error) {
	return venueID == 1, nil
}

func (s *stubEvents) GetByID(_ context.Context, id int64) (*model.Event, error) {
	if id != 7 {
		return nil, apperr.ErrNotFound
	}
	return &model.Event{ID: 7, Title: "Talk", Status: model.EventPending}, nil
}

func (s *stubEvents) ListPending(context.Context) ([]model.Event, error) { return nil, s.err }

func (s *stubEvents) Stats(context.Context) (model.Stats, error) {
	return model.Stats{PendingEvents: 1, TotalEvents: 1, TotalUsers: 2}, s.err
}

type stubUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (s *stubUsers) Register(_ context.Context, u model.NewUser) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = map[string]model.User{}
	}
	if _, ok := s.users[u.Email]; ok {
		return 0, apperr.ErrDuplicateIdentity
	}
	id := int64(len(s.users) + 1)
	s.users[u.Email] = model.User{ID: id, Email: u.Email, PasswordHash: u.PasswordHash, DisplayName: u.DisplayName, Role: u.Role}
	return id, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (s *stubUsers) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok, nil
}

type stubAttendance struct {
	mu    sync.Mutex
	going map[int64]bool
}

func (s *stubAttendance) SetAttendance(_ context.Context, userID, _ int64, status model.RSVPStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.going == nil {
		s.going = map[int64]bool{}
	}
	if status == model.RSVPGoing && !s.going[userID] && len(s.going) >= 1 {
		return apperr.ErrCapacityExceeded
	}
	if status == model.RSVPGoing {
		s.going[userID] = true
	} else {
		delete(s.going, userID)
	}
	return nil
}

func (s *stubAttendance) GetStatus(_ context.Context, userID, _ int64) (model.RSVPStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.going[userID] {
		return model.RSVPGoing, nil
	}
	return "", apperr.ErrNotFound
}

func (s *stubAttendance) ListAttendees(_ context.Context, eventID int64) ([]model.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attendance
	for id := range s.going {
		out = append(out, model.Attendance{UserID: id, EventID: eventID, Status: model.RSVPGoing})
	}
	return out, nil
}

func (s *stubAttendance) CountGoing(context.Context, int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.going), nil
}

type stubResources struct {
	venues []model.Venue
	err    error
}

func (s *stubResources) CreateVenue(_ context.Context, v model.Venue) (*model.Venue, error) {
	if s.err != nil {
		return nil, s.err
	}
	v.ID = int64(len(s.venues) + 1)
	s.venues = append(s.venues, v)
	return &v, nil
}

func (s *stubResources) ListVenues(context.Context) ([]model.Venue, error) { return s.venues, s.err }

func (s *stubResources) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	return &model.Category{ID: 1, Name: name}, s.err
}

func (s *stubResources) ListCategories(context.Context) ([]model.Category, error) { return nil, s.err }

func (s *stubResources) CreateDepartment(_ context.Context, name string) (*model.Department, error) {
	return &model.Department{ID: 1, Name: name}, s.err
}

func (s *stubResources) ListDepartments(context.Context) ([]model.Department, error) {
	return nil, s.err
}

// ─── Harness ──────────────────────────────────────────────────────────────────

type harness struct {
	router    http.Handler
	events    *stubEvents
	resources *stubResources
	hook      *test.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	opts := service.Options{Log: log, StoreTimeout: time.Second}

	events := &stubEvents{}
	resources := &stubResources{}
	h := New(Services{
		Users:      service.NewUserService(&stubUsers{}, bcrypt.MinCost, opts),
		Events:     service.NewEventService(events, opts),
		Attendance: service.NewAttendanceService(&stubAttendance{}, opts),
		Resources:  service.NewResourceService(resources, opts),
	}, log)
	return &harness{router: NewRouter(h, nil), events: events, resources: resources, hook: hook}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

var student = map[string]any{
	"email":         "ada@uni.test",
	"password":      "correct horse",
	"display_name":  "Ada",
	"reg_no":        "2024-CS-1",
	"batch_year":    2024,
	"department_id": 1,
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestHealthCheck(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterStudentAndDuplicate(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/users/students", student)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[model.RegisterResponse](t, rec)
	assert.Equal(t, int64(1), resp.UserID)
	assert.Equal(t, model.RoleStudent, resp.Role)

	rec = h.do(t, http.MethodPost, "/users/students", student)
	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decodeBody[model.ErrorResponse](t, rec)
	assert.Equal(t, string(apperr.CodeDuplicateIdentity), errResp.Code)
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/users/staff", `{"email":"a@uni.test","admin":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidationMessage(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{"email": "not-an-email", "password": "correct horse", "display_name": "Ada",
		"reg_no": "R1", "batch_year": 2024, "department_id": 1}

	rec := h.do(t, http.MethodPost, "/users/students", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[model.ErrorResponse](t, rec)
	assert.Equal(t, string(apperr.CodeValidation), errResp.Code)
	assert.Contains(t, errResp.Error, "email")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/users/students", student).Code)

	rec := h.do(t, http.MethodPost, "/users/login", map[string]string{"email": "ADA@uni.test", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = h.do(t, http.MethodPost, "/users/login", map[string]string{"email": "ada@uni.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitEvent(t *testing.T) {
	h := newHarness(t)
	event := func(venue int64) map[string]any {
		return map[string]any{
			"organizer_id": 1,
			"venue_id":     venue,
			"category_id":  1,
			"title":        "Talk",
			"starts_at":    "2026-04-14T10:00:00Z",
			"ends_at":      "2026-04-14T11:00:00Z",
			"capacity":     30,
		}
	}

	rec := h.do(t, http.MethodPost, "/events", event(2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.EventPending, decodeBody[model.Event](t, rec).Status)

	rec = h.do(t, http.MethodPost, "/events", event(1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(apperr.CodeScheduleConflict), decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestReviewOnlyOnce(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/events/7/approve", nil).Code)

	rec := h.do(t, http.MethodPost, "/events/7/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(apperr.CodeConflict), decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestInvalidPathID(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/events/abc", "/events/0", "/events/-3/attendees"} {
		rec := h.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetEventNotFound(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/events/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/events/8", nil).Code)
}

func TestAttendanceFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPut, "/events/7/attendance", map[string]any{"user_id": 1, "status": "going"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"event_id":7,"user_id":1,"status":"GOING"}`, rec.Body.String())

	rec = h.do(t, http.MethodPut, "/events/7/attendance", map[string]any{"user_id": 2, "status": "GOING"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(apperr.CodeCapacityExceeded), decodeBody[model.ErrorResponse](t, rec).Code)

	rec = h.do(t, http.MethodPut, "/events/7/attendance", map[string]any{"user_id": 2, "status": "LATE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/events/7/attendance/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"GOING"`)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/events/7/attendance/2", nil).Code)

	rec = h.do(t, http.MethodGet, "/events/7/attendees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Attendance](t, rec), 1)

	rec = h.do(t, http.MethodGet, "/events/7/headcount", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"event_id":7,"going":1}`, rec.Body.String())
}

func TestEmailAvailable(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/users/email-available?email=ada@uni.test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/users/students", student).Code)

	rec = h.do(t, http.MethodGet, "/users/email-available?email=ADA@uni.test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":false}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/users/email-available", nil).Code)
}

func TestVenueAvailability(t *testing.T) {
	h := newHarness(t)
	const q = "?start=2026-04-14T10:00:00Z&end=2026-04-14T11:00:00Z"

	rec := h.do(t, http.MethodGet, "/venues/1/availability"+q, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":false}`, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/venues/2/availability"+q, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true}`, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/venues/2/availability?start=tomorrow&end=later", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyListsAreArrays(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/events/pending", "/venues", "/categories", "/departments"} {
		rec := h.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]\n", rec.Body.String(), path)
	}
}

func TestCreateVenue(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/venues", map[string]any{"name": " Main Hall ", "capacity": 300})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Main Hall", decodeBody[model.Venue](t, rec).Name)

	rec = h.do(t, http.MethodPost, "/venues", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreErrorsHideDetail(t *testing.T) {
	h := newHarness(t)
	h.events.err = apperr.Store("stats", errors.New("pq: relation \"events\" does not exist"))

	rec := h.do(t, http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Equal(t, string(apperr.CodeStore), decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	entry := h.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-123", entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	rec = h.do(t, http.MethodGet, "/health", nil)
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodOptions, "/events", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, time.April, 14, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(config.RateLimit{RPS: 0.5, Burst: 1, IdleTTL: time.Minute})
	rl.now = func() time.Time { return now }
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := rl.Middleware(next)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	rec := call("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code, "buckets are per client")

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5002").Code)

	now = now.Add(2 * time.Minute)
	call("10.0.0.3:5000")
	rl.mu.Lock()
	assert.Len(t, rl.clients, 1, "idle buckets are swept")
	rl.mu.Unlock()
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimit{RPS: 0})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	assert.NotNil(t, rl.Middleware(next))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		rl.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestPanicIsLoggedAndAnswered(t *testing.T) {
	log, hook := test.NewNullLogger()
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("nil map write") })
	chain := RequestID(Logger(log)(Recoverer(log)(boom)))

	req := httptest.NewRequest(http.MethodGet, "/events/7", nil)
	req.Header.Set("X-Request-Id", "req-panic")
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { chain.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "nil map")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, "handler panicked", entries[0].Message)
	assert.Equal(t, "nil map write", entries[0].Data["panic"])
	assert.Equal(t, "req-panic", entries[0].Data["request_id"])
	assert.Equal(t, http.StatusInternalServerError, entries[1].Data["status"])
	assert.Equal(t, "req-panic", entries[1].Data["request_id"])
}

func TestRecovererReraisesAbort(t *testing.T) {
	log, _ := test.NewNullLogger()
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Recoverer(log)(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
