package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
	"github.com/Shivanand-hulikatti/unievent-backend/internal/model"
)

// UserService registers students and staff.
type UserService struct {
	users UserStore
	opts  Options
	cost  int
}

// NewUserService constructs a UserService. bcryptCost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewUserService(users UserStore, bcryptCost int, opts Options) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, opts: opts, cost: bcryptCost}
}

// RegisterStudent validates req and creates the user and student records together.
func (s *UserService) RegisterStudent(ctx context.Context, req model.RegisterStudentRequest) (*model.RegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.RegNo = strings.TrimSpace(req.RegNo)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.register(ctx, req.Email, req.Password, req.DisplayName, req.Phone, model.StudentProfile{
		RegNo:        req.RegNo,
		BatchYear:    req.BatchYear,
		DepartmentID: req.DepartmentID,
	})
}

// RegisterStaff validates req and creates the user and staff records together.
func (s *UserService) RegisterStaff(ctx context.Context, req model.RegisterStaffRequest) (*model.RegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.StaffNo = strings.TrimSpace(req.StaffNo)
	req.Position = strings.TrimSpace(req.Position)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.register(ctx, req.Email, req.Password, req.DisplayName, req.Phone, model.StaffProfile{
		StaffNo:      req.StaffNo,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
	})
}

// register skips hashing when the email is already taken. The unique
// constraint still decides races between concurrent sign-ups.
func (s *UserService) register(ctx context.Context, email, password, name, phone string, role model.Role) (*model.RegisterResponse, error) {
	log := s.opts.logger().WithFields(logrus.Fields{"email": email, "role": role.Kind()})
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		logOutcome(log, err, "check email")
		return nil, err
	}
	if taken {
		logOutcome(log, apperr.ErrDuplicateIdentity, "register user")
		return nil, apperr.ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Validation("password cannot be used: %v", err)
	}

	id, err := s.users.Register(ctx, model.NewUser{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  name,
		Phone:        strings.TrimSpace(phone),
		Role:         role,
	})
	if err != nil {
		logOutcome(log, err, "register user")
		return nil, err
	}
	log.WithField("user_id", id).Info("user registered")
	return &model.RegisterResponse{UserID: id, Role: role.Kind()}, nil
}

// Authenticate returns the user whose email and password match. Any
// mismatch is reported as apperr.ErrNotFound.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

// EmailAvailable reports whether no account uses email yet.
func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return false, apperr.Validation("email is not a valid address")
	}
	ctx, cancel := s.opts.withDeadline(ctx)
	defer cancel()

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
