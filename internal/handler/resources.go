package handler

import (
	"context"
	"net/http"
)

// CreateVenue handles POST /venues
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.resources.CreateVenue)
}

// ListVenues handles GET /venues
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.resources.ListVenues)
}

// CreateCategory handles POST /categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.resources.CreateCategory)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.resources.ListCategories)
}

// CreateDepartment handles POST /departments
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.resources.CreateDepartment)
}

// ListDepartments handles GET /departments
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.resources.ListDepartments)
}

func create[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, T) (*T, error)) {
	var in T
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	out, err := fn(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func list[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]T, error)) {
	items, err := fn(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}
