package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/lightlogger/internal/domain/user"
)

const sessionColumns = `id, user_id, token, ip_address, user_agent, expires_at, created_at`

func scanSession(row scannable) (user.Session, error) {
	var ss user.Session
	err := row.Scan(&ss.ID, &ss.UserID, &ss.Token, &ss.IPAddress, &ss.UserAgent, &ss.ExpiresAt, &ss.CreatedAt)
	return ss, err
}

func (s *Store) CreateSession(ctx context.Context, ss *user.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ss.ID, ss.UserID, ss.Token, ss.IPAddress, ss.UserAgent, ss.ExpiresAt, ss.CreatedAt,
	)
	if err != nil {
		return conflictWrap(err, "create session")
	}
	return nil
}

func (s *Store) GetSessionByToken(ctx context.Context, token string, now time.Time) (*user.Session, error) {
	ss, err := scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1 AND expires_at > $2`, token, now))
	if err != nil {
		return nil, notFoundWrap(err, "get session")
	}
	return &ss, nil
}

// ExtendSession locks the row with SELECT ... FOR UPDATE so concurrent
// extensions of the same session serialize.
func (s *Store) ExtendSession(ctx context.Context, token string, now, expiresAt time.Time) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM sessions WHERE token = $1 AND expires_at > $2 FOR UPDATE`, token, now).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock session: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE sessions SET expires_at = $2 WHERE id = $1`, id, expiresAt); err != nil {
		return false, fmt.Errorf("extend session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSessionsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("delete sessions by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
