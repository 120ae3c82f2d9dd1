package model

import "time"

// RoleKind names the extension table a user's role lives in.
type RoleKind string

const (
	RoleStudent RoleKind = "student"
	RoleStaff   RoleKind = "staff"
)

// Role is the role-specific part of a user. It is one of StudentProfile or
// StaffProfile; callers switch on the concrete type.
type Role interface {
	Kind() RoleKind
	isRole()
}

// StudentProfile is the student extension of a user.
type StudentProfile struct {
	RegNo        string `json:"reg_no"`
	BatchYear    int    `json:"batch_year"`
	DepartmentID int64  `json:"department_id"`
}

func (StudentProfile) Kind() RoleKind { return RoleStudent }
func (StudentProfile) isRole()        {}

// StaffProfile is the staff extension of a user.
type StaffProfile struct {
	StaffNo      string `json:"staff_no"`
	DepartmentID int64  `json:"department_id"`
	Position     string `json:"position"`
}

func (StaffProfile) Kind() RoleKind { return RoleStaff }
func (StaffProfile) isRole()        {}

// User is the identity record shared by every role.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	Role         Role      `json:"role,omitempty"`
}

// NewUser is an identity plus exactly one role extension, created together.
type NewUser struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Phone        string
	Role         Role
}

// RegisterStudentRequest is the payload for student sign-up.
type RegisterStudentRequest struct {
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	DisplayName  string `json:"display_name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	RegNo        string `json:"reg_no" validate:"required,max=32"`
	BatchYear    int    `json:"batch_year" validate:"required,gte=1900,lte=2200"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// RegisterStaffRequest is the payload for staff sign-up.
type RegisterStaffRequest struct {
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	DisplayName  string `json:"display_name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	StaffNo      string `json:"staff_no" validate:"required,max=32"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	Position     string `json:"position" validate:"required,max=100"`
}

// RegisterResponse is returned after a successful sign-up.
type RegisterResponse struct {
	UserID int64    `json:"user_id"`
	Role   RoleKind `json:"role"`
}

// AttendanceRequest is the payload for setting an RSVP.
type AttendanceRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required"`
}
