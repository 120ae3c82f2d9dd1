package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/database"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// ResourceRepository manages the admin-maintained lookup tables: venues,
// categories and departments.
type ResourceRepository struct {
	db DB
}

// NewResourceRepository constructs a ResourceRepository.
func NewResourceRepository(db DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// CreateVenue inserts a venue and returns it with its generated id.
func (r *ResourceRepository) CreateVenue(ctx context.Context, v model.Venue) (*model.Venue, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO venues (name, location, capacity) VALUES ($1, $2, $3) RETURNING id`,
		v.Name, v.Location, v.Capacity,
	).Scan(&v.ID)
	if err != nil {
		return nil, nameErr("venue", "venues_name_key", err)
	}
	return &v, nil
}

// ListVenues returns every venue ordered by name.
func (r *ResourceRepository) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, location, capacity FROM venues ORDER BY name`)
	if err != nil {
		return nil, apperr.Store("list venues", err)
	}
	defer rows.Close()

	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity); err != nil {
			return nil, apperr.Store("scan venue", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("list venues", err)
	}
	return out, nil
}

// CreateCategory inserts a category.
func (r *ResourceRepository) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	c := model.Category{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&c.ID)
	if err != nil {
		return nil, nameErr("category", "categories_name_key", err)
	}
	return &c, nil
}

// ListCategories returns every category ordered by name.
func (r *ResourceRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	out, err := listNamed(ctx, r.db, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, apperr.Store("list categories", err)
	}
	cats := make([]model.Category, len(out))
	for i, n := range out {
		cats[i] = model.Category{ID: n.id, Name: n.name}
	}
	return cats, nil
}

// CreateDepartment inserts a department.
func (r *ResourceRepository) CreateDepartment(ctx context.Context, name string) (*model.Department, error) {
	d := model.Department{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO departments (name) VALUES ($1) RETURNING id`, name,
	).Scan(&d.ID)
	if err != nil {
		return nil, nameErr("department", "departments_name_key", err)
	}
	return &d, nil
}

// ListDepartments returns every department ordered by name.
func (r *ResourceRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	out, err := listNamed(ctx, r.db, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, apperr.Store("list departments", err)
	}
	depts := make([]model.Department, len(out))
	for i, n := range out {
		depts[i] = model.Department{ID: n.id, Name: n.name}
	}
	return depts, nil
}

type named struct {
	id   int64
	name string
}

func listNamed(ctx context.Context, q querier, sql string) ([]named, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []named
	for rows.Next() {
		var n named
		if err := rows.Scan(&n.id, &n.name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func nameErr(kind, constraint string, err error) error {
	if database.IsUniqueViolation(err, constraint) {
		return apperr.Validation("%s name already exists", kind)
	}
	return apperr.Store("create "+kind, err)
}
