package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the API router with the global middleware stack.
// A nil limiter disables rate limiting.
func NewRouter(h *Handler, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP) // trust X-Forwarded-For
	r.Use(Logger(h.log))
	r.Use(Recoverer(h.log)) // inside Logger so panics still get an access log entry
	r.Use(CORS)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Get("/health", HealthCheck)

	r.Route("/users", func(r chi.Router) {
		r.Post("/students", h.RegisterStudent)
		r.Post("/staff", h.RegisterStaff)
		r.Post("/login", h.Login)
		r.Get("/email-available", h.EmailAvailable)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.SubmitEvent)
		r.Get("/pending", h.ListPending)
		r.Get("/{id}", h.GetEvent)
		r.Post("/{id}/approve", h.ApproveEvent)
		r.Post("/{id}/reject", h.RejectEvent)
		r.Put("/{id}/attendance", h.SetAttendance)
		r.Get("/{id}/attendance/{userID}", h.GetAttendance)
		r.Get("/{id}/attendees", h.ListAttendees)
		r.Get("/{id}/headcount", h.Headcount)
	})

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", h.ListVenues)
		r.Post("/", h.CreateVenue)
		r.Get("/{id}/availability", h.VenueAvailability)
	})
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Get("/departments", h.ListDepartments)
	r.Post("/departments", h.CreateDepartment)

	r.Get("/admin/stats", h.Stats)

	return r
}
