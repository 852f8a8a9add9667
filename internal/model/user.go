package model

import "time"

// Role is the coarse authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the identity resolved from a verified token.
type Principal struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User represents a platform account.
type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ConsentRGPD  bool       `json:"consent_rgpd"`
	ConsentDate  *time.Time `json:"consent_date,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal returns the token identity for this user.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

// UserWithStats adds training statistics for the admin listing.
type UserWithStats struct {
	User
	ModulesCompleted int     `json:"modules_completed"`
	ModulesPassed    int     `json:"modules_passed"`
	AverageScore     float64 `json:"average_score"`
}

// RegisterRequest is the payload for self-service account creation.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Password        string `json:"password" binding:"required,strongpassword,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	ConsentRGPD     bool   `json:"consent_rgpd" binding:"required"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// CreateUserRequest is the admin payload for creating an account.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,strongpassword,max=128"`
	Role     Role   `json:"role" binding:"omitempty,oneof=user admin"`
}

// UpdateUserRequest is the admin payload for updating an account.
// Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"omitempty,strongpassword,max=128"`
	Role     Role   `json:"role" binding:"omitempty,oneof=user admin"`
}

// DeleteAccountRequest confirms a data-subject erasure.
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}
