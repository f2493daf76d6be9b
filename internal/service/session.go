package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/port/database"
)

// SessionService manages login sessions with a sliding expiry.
type SessionService struct {
	store    database.SessionStore
	lifetime time.Duration
	now      func() time.Time
}

// NewSessionService creates a SessionService. A non-positive lifetime falls
// back to user.SessionLifetime.
func NewSessionService(store database.SessionStore, lifetime time.Duration) *SessionService {
	if lifetime <= 0 {
		lifetime = user.SessionLifetime
	}
	return &SessionService{store: store, lifetime: lifetime, now: time.Now}
}

// Create opens a new session for userID.
func (s *SessionService) Create(ctx context.Context, userID, ip, userAgent string) (*user.Session, error) {
	id, err := generateRandomToken(user.SessionIDBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	token, err := generateRandomToken(user.SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	sess := &user.Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.lifetime),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Lookup purges expired sessions and returns the active session for token.
// An unknown or expired token yields domain.ErrNotFound.
func (s *SessionService) Lookup(ctx context.Context, token string) (*user.Session, error) {
	now := s.now().UTC()
	if _, err := s.PurgeExpiredAt(ctx, now); err != nil {
		return nil, err
	}
	return s.store.GetSessionByToken(ctx, token, now)
}

// Extend slides the session's expiry to now plus the session lifetime. It
// reports false for a missing or expired token.
func (s *SessionService) Extend(ctx context.Context, token string) (bool, error) {
	now := s.now().UTC()
	ok, err := s.store.ExtendSession(ctx, token, now, now.Add(s.lifetime))
	if err != nil {
		return false, fmt.Errorf("extend session: %w", err)
	}
	return ok, nil
}

// Delete removes the session. Unknown tokens are ignored.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// DeleteForUser removes every session of userID.
func (s *SessionService) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	return s.store.DeleteSessionsByUser(ctx, userID)
}

// PurgeExpired removes sessions that have expired by now.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.PurgeExpiredAt(ctx, s.now().UTC())
}

// PurgeExpiredAt removes sessions with an expiry at or before now.
func (s *SessionService) PurgeExpiredAt(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "purged expired sessions", "count", n)
	}
	return n, nil
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
