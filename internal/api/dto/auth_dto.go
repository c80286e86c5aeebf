package dto

import (
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
)

// LoginRequest payload for admin login. Identifier may be a username or an email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required_without=Username"`
	Username   string `json:"username"`
	Password   string `json:"password" validate:"required"`
}

// Login returns the identifier the client sent, preferring the explicit field.
func (r LoginRequest) Login() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Username
}

// RegisterAdminRequest payload for self-registration.
type RegisterAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// PasswordStatusResponse describes password age.
type PasswordStatusResponse struct {
	MustChange      bool       `json:"must_change"`
	LastChanged     *time.Time `json:"last_changed,omitempty"`
	DaysSinceChange int        `json:"days_since_change"`
	MaxAgeDays      int        `json:"max_age_days"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token          string                 `json:"token"`
	ExpiresAt      time.Time              `json:"expires_at"`
	SessionID      string                 `json:"session_id"`
	Admin          domain.AdminAccount    `json:"admin"`
	PasswordStatus PasswordStatusResponse `json:"password_status"`
}

// MeResponse describes the calling admin.
type MeResponse struct {
	Admin            domain.AdminAccount    `json:"admin"`
	SessionExpiresAt time.Time              `json:"session_expires_at"`
	PasswordStatus   PasswordStatusResponse `json:"password_status"`
}
