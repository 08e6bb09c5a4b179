package user

import (
	"errors"
	"time"
)

// Role values as stored and exchanged over the wire.
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleParent  = "PARENT"
	RoleAdmin   = "ADMIN"
)

var ErrNotFound = errors.New("user not found")
var ErrLoginTaken = errors.New("login identifier already in use")

// User is an account in the school roster. Which login field is populated
// depends on the role: students carry an NISN, teachers an NIP, parents an
// NIK and admins a plain username.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	NISN     string `json:"nisn,omitempty"`
	NIP      string `json:"nip,omitempty"`
	NIK      string `json:"nik,omitempty"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	// ChildIDs links a PARENT account to its students.
	ChildIDs []string `json:"childIds,omitempty"`

	PasswordHash string `json:"-"` // never expose hash in JSON

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidRole reports whether r is one of the four recognized roles.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// LoginID returns the role-specific identifier used to authenticate u.
func (u User) LoginID() string {
	switch u.Role {
	case RoleStudent:
		return u.NISN
	case RoleTeacher:
		return u.NIP
	case RoleParent:
		return u.NIK
	case RoleAdmin:
		return u.Username
	}
	return ""
}

type LoginRequest struct {
	Role       string `json:"role" binding:"required,oneof=STUDENT TEACHER PARENT ADMIN"`
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Name     string   `json:"name" binding:"required,min=2,max=120"`
	Role     string   `json:"role" binding:"required,oneof=STUDENT TEACHER PARENT ADMIN"`
	NISN     string   `json:"nisn" binding:"omitempty,max=20"`
	NIP      string   `json:"nip" binding:"omitempty,max=30"`
	NIK      string   `json:"nik" binding:"omitempty,max=30"`
	Username string   `json:"username" binding:"omitempty,min=3,max=60"`
	Password string   `json:"password" binding:"required,min=4,max=128"`
	Avatar   string   `json:"avatar" binding:"omitempty,max=300"`
	ChildIDs []string `json:"childIds" binding:"omitempty,dive,required"`
}

// UpdateUserRequest is a full-record update. ID presence is checked by the
// handler (the contract demands a dedicated message for its absence).
// An empty Password keeps the stored hash.
type UpdateUserRequest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" binding:"required,min=2,max=120"`
	Role     string   `json:"role" binding:"required,oneof=STUDENT TEACHER PARENT ADMIN"`
	NISN     string   `json:"nisn" binding:"omitempty,max=20"`
	NIP      string   `json:"nip" binding:"omitempty,max=30"`
	NIK      string   `json:"nik" binding:"omitempty,max=30"`
	Username string   `json:"username" binding:"omitempty,min=3,max=60"`
	Password string   `json:"password" binding:"omitempty,min=4,max=128"`
	Avatar   string   `json:"avatar" binding:"omitempty,max=300"`
	ChildIDs []string `json:"childIds" binding:"omitempty,dive,required"`
}
