// Package user defines users and the sessions that authenticate them.
package user

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

// MinPasswordLength is enforced when creating users or resetting passwords.
const MinPasswordLength = 8

// User is an operator of the control plane.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never serialized
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if r.Username == "" {
		return domain.NewValidationError("Username is required")
	}
	if !usernamePattern.MatchString(r.Username) {
		return domain.NewValidationError("Username must be 3-64 characters of letters, digits, '.', '_' or '-'")
	}
	if r.Email == "" {
		return domain.NewValidationError("Email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return domain.NewValidationError("Invalid email format")
	}
	return ValidatePassword(r.Password)
}

// ValidatePassword enforces the password policy.
func ValidatePassword(p string) error {
	if p == "" {
		return domain.NewValidationError("Password is required")
	}
	if len(p) < MinPasswordLength {
		return domain.NewValidationError("Password must be at least 8 characters")
	}
	return nil
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that both credentials are present.
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return domain.NewValidationError("Username and password are required")
	}
	return nil
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
