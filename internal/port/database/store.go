// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/user"
)

// UserStore persists operator accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	DeleteUser(ctx context.Context, id string) error
}

// SessionStore persists login sessions. Every read takes the caller's notion
// of "now" so expiry is decided by one clock.
type SessionStore interface {
	CreateSession(ctx context.Context, s *user.Session) error

	// GetSessionByToken returns the session with the exact token whose
	// expiry lies after now.
	GetSessionByToken(ctx context.Context, token string, now time.Time) (*user.Session, error)

	// ExtendSession locks the session row and moves its expiry to expiresAt.
	// It reports false, without error, when the token is missing or expired.
	ExtendSession(ctx context.Context, token string, now, expiresAt time.Time) (bool, error)

	// DeleteSession removes the session. Deleting a missing token is not an error.
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredSessions removes sessions with expires_at <= now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ProjectStore persists tenants and their schemas.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *project.Project) error
	GetProject(ctx context.Context, id string) (*project.Project, error)
	GetProjectByToken(ctx context.Context, token string) (*project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// UpdateProjectSchema replaces the schema wholesale under a row lock
	// and returns the updated project.
	UpdateProjectSchema(ctx context.Context, id string, schema *project.Schema, now time.Time) (*project.Project, error)
}

// Store is the port interface for database operations.
type Store interface {
	UserStore
	SessionStore
	ProjectStore

	// Ping checks connectivity for the health endpoint.
	Ping(ctx context.Context) error
}
