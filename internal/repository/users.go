package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/database"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// UserRepository handles persistence for identities and their role extensions.
type UserRepository struct {
	db DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register creates the identity record and its single role extension in one
// transaction and returns the generated user id.
//
// Either both rows are committed or neither is: any failure after the
// identity insert, including a missing department, rolls the identity back.
// A taken email is reported as apperr.ErrDuplicateIdentity.
func (r *UserRepository) Register(ctx context.Context, u model.NewUser) (int64, error) {
	if u.Role == nil {
		return 0, apperr.Validation("a role is required")
	}

	var userID int64
	err := inTx(ctx, r.db, "register user", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, display_name, phone)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			u.Email, u.PasswordHash, u.DisplayName, u.Phone,
		).Scan(&userID)
		switch {
		case database.IsUniqueViolation(err, "users_email_key"):
			return apperr.ErrDuplicateIdentity
		case errors.Is(err, pgx.ErrNoRows):
			return errors.New("insert user: no id returned")
		case err != nil:
			return fmt.Errorf("insert user: %w", err)
		case userID == 0:
			return errors.New("insert user: no id returned")
		}

		switch p := u.Role.(type) {
		case model.StudentProfile:
			_, err = tx.Exec(ctx,
				`INSERT INTO students (user_id, reg_no, batch_year, department_id)
				 VALUES ($1, $2, $3, $4)`,
				userID, p.RegNo, p.BatchYear, p.DepartmentID,
			)
			if database.IsUniqueViolation(err, "students_reg_no_key") {
				return &apperr.Error{Code: apperr.CodeDuplicateIdentity, Message: "registration number already registered"}
			}
		case model.StaffProfile:
			_, err = tx.Exec(ctx,
				`INSERT INTO staff (user_id, staff_no, department_id, position)
				 VALUES ($1, $2, $3, $4)`,
				userID, p.StaffNo, p.DepartmentID, p.Position,
			)
			if database.IsUniqueViolation(err, "staff_staff_no_key") {
				return &apperr.Error{Code: apperr.CodeDuplicateIdentity, Message: "staff number already registered"}
			}
		default:
			return apperr.Validation("unsupported role %T", u.Role)
		}
		if database.IsForeignKeyViolation(err) {
			return apperr.Validation("department does not exist")
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", u.Role.Kind(), err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// GetByEmail returns the user with the given email, role included, or
// apperr.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u                      model.User
		regNo, staffNo, pos    *string
		batchYear              *int
		studentDept, staffDept *int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.display_name, u.phone, u.created_at,
		        s.reg_no, s.batch_year, s.department_id,
		        f.staff_no, f.department_id, f.position
		 FROM users u
		 LEFT JOIN students s ON s.user_id = u.id
		 LEFT JOIN staff f ON f.user_id = u.id
		 WHERE u.email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Phone, &u.CreatedAt,
		&regNo, &batchYear, &studentDept,
		&staffNo, &staffDept, &pos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("get user", err)
	}

	switch {
	case regNo != nil:
		u.Role = model.StudentProfile{RegNo: *regNo, BatchYear: deref(batchYear), DepartmentID: deref(studentDept)}
	case staffNo != nil:
		u.Role = model.StaffProfile{StaffNo: *staffNo, DepartmentID: deref(staffDept), Position: deref(pos)}
	}
	return &u, nil
}

// EmailExists reports whether an identity already uses email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Store("check email", err)
	}
	return exists, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
