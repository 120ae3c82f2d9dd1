package service

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// ResourceService manages venues, categories and departments.
type ResourceService struct {
	resources ResourceStore
	opts      Options
}

// NewResourceService constructs a ResourceService.
func NewResourceService(resources ResourceStore, opts Options) *ResourceService {
	return &ResourceService{resources: resources, opts: opts}
}

// CreateVenue validates v and stores it. A taken name is a ValidationError.
func (s *ResourceService) CreateVenue(ctx context.Context, v model.Venue) (*model.Venue, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Location = strings.TrimSpace(v.Location)
	if err := validateStruct(v); err != nil {
		return nil, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.CreateVenue(ctx, v)
}

// ListVenues returns every venue ordered by name.
func (s *ResourceService) ListVenues(ctx context.Context) ([]model.Venue, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.ListVenues(ctx)
}

// CreateCategory validates c and stores it.
func (s *ResourceService) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := validateStruct(c); err != nil {
		return nil, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.CreateCategory(ctx, c.Name)
}

// ListCategories returns every category ordered by name.
func (s *ResourceService) ListCategories(ctx context.Context) ([]model.Category, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.ListCategories(ctx)
}

// CreateDepartment validates d and stores it.
func (s *ResourceService) CreateDepartment(ctx context.Context, d model.Department) (*model.Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.CreateDepartment(ctx, d.Name)
}

// ListDepartments returns every department ordered by name.
func (s *ResourceService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()
	return s.resources.ListDepartments(ctx)
}
