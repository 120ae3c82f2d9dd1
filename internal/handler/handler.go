// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/service"
)

// Handler holds all HTTP handlers for the API.
type Handler struct {
	users      *service.UserService
	events     *service.EventService
	attendance *service.AttendanceService
	resources  *service.ResourceService
	log        logrus.FieldLogger
}

// Services groups the services a Handler dispatches to.
type Services struct {
	Users      *service.UserService
	Events     *service.EventService
	Attendance *service.AttendanceService
	Resources  *service.ResourceService
}

// New constructs a Handler.
func New(svc Services, log logrus.FieldLogger) *Handler {
	return &Handler{
		users:      svc.Users,
		events:     svc.Events,
		attendance: svc.Attendance,
		resources:  svc.Resources,
		log:        log,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// writeServiceError maps an error's code to a status. Validation and
// not-found errors carry their own message; store faults never leak detail.
func writeServiceError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	msg := code.UserMessage()
	if code == apperr.CodeValidation || code == apperr.CodeNotFound {
		msg = err.Error()
	}
	writeJSON(w, code.HTTPStatus(), model.ErrorResponse{Error: msg, Code: string(code)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// ─── Users ────────────────────────────────────────────────────────────────────

// RegisterStudent handles POST /users/students
func (h *Handler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.users.RegisterStudent(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RegisterStaff handles POST /users/staff
func (h *Handler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterStaffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.users.RegisterStaff(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /users/login
// Session issuance belongs to the caller; this only verifies credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// EmailAvailable handles GET /users/email-available?email=…
func (h *Handler) EmailAvailable(w http.ResponseWriter, r *http.Request) {
	free, err := h.users.EmailAvailable(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": free})
}

// ─── Events ───────────────────────────────────────────────────────────────────

// SubmitEvent handles POST /events
// The event is created PENDING if the venue is free for its slot.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req model.NewEvent
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListPending handles GET /events/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ApproveEvent handles POST /events/{id}/approve
func (h *Handler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.EventApproved)
}

// RejectEvent handles POST /events/{id}/reject
func (h *Handler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.EventRejected)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, target model.EventStatus) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := h.events.Review(r.Context(), id, string(target)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": target})
}

// VenueAvailability handles GET /venues/{id}/availability?start=…&end=…
// Times are RFC 3339.
func (h *Handler) VenueAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid venue id")
		return
	}
	start, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	end, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "start and end must be RFC 3339 timestamps")
		return
	}
	conflict, err := h.events.CheckVenue(r.Context(), id, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": !conflict})
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ─── Attendance ───────────────────────────────────────────────────────────────

// SetAttendance handles PUT /events/{id}/attendance
func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	var req model.AttendanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	status, err := h.attendance.RSVP(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": id, "user_id": req.UserID, "status": status})
}

// GetAttendance handles GET /events/{id}/attendance/{userID}
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok1 := pathID(r, "id")
	userID, ok2 := pathID(r, "userID")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	status, err := h.attendance.Status(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "user_id": userID, "status": status})
}

// Headcount handles GET /events/{id}/headcount
func (h *Handler) Headcount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	going, err := h.attendance.Headcount(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event_id": id, "going": going})
}

// ListAttendees handles GET /events/{id}/attendees
func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	attendees, err := h.attendance.Attendees(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if attendees == nil {
		attendees = []model.Attendance{}
	}
	writeJSON(w, http.StatusOK, attendees)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
