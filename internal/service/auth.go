package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	cfotel "github.com/Strob0t/lightlogger/internal/adapter/otel"
	"github.com/Strob0t/lightlogger/internal/config"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/port/database"
)

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password. It matches domain.ErrUnauthorized.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// AuthService handles users, logins and session-token authentication.
type AuthService struct {
	store    database.Store
	sessions *SessionService
	cost     int
	metrics  *cfotel.Metrics
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(store database.Store, sessions *SessionService, cfg *config.Auth) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, sessions: sessions, cost: cost, now: time.Now}
}

// SetMetrics attaches metric instruments. nil disables recording.
func (s *AuthService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &user.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies credentials and opens a session bound to the client's IP
// and User-Agent.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest, ip, userAgent string) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordAuthRejected(ctx, "login")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordAuthRejected(ctx, "login")
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u.ID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		slog.WarnContext(ctx, "failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}
	s.metrics.RecordSessionCreated(ctx)

	return &user.LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: *u}, nil
}

// Logout ends the session identified by token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its user and slides the
// session's expiry. Unknown, expired or orphaned tokens yield
// domain.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordAuthRejected(ctx, "session")
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	u, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordAuthRejected(ctx, "session")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get session user: %w", err)
	}

	if _, err := s.sessions.Extend(ctx, token); err != nil {
		return nil, err
	}
	return u, nil
}

// Check reports whether token names an active session without extending it.
func (s *AuthService) Check(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns all users ordered by username.
func (s *AuthService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// DeleteUser removes a user together with their sessions.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := checkID("user", id); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteForUser(ctx, id); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// ResetPassword sets a new password for username and revokes their sessions.
func (s *AuthService) ResetPassword(ctx context.Context, username, password string) error {
	if err := user.ValidatePassword(password); err != nil {
		return err
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteForUser(ctx, u.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
