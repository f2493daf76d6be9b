package user

import "time"

// SessionLifetime is how long a session stays valid after creation or its
// most recent use.
const SessionLifetime = 24 * time.Hour

const (
	// SessionIDBytes is the number of random bytes behind a session id.
	SessionIDBytes = 32
	// SessionTokenBytes is the number of random bytes behind a session token.
	SessionTokenBytes = 64
)

// SessionState is the lifecycle state of a session at a point in time.
type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionExpired SessionState = "expired"
)

// Session binds a bearer token to a user for a sliding window.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// StateAt reports whether the session is active or expired at now.
// A session whose expiry equals now is expired.
func (s *Session) StateAt(now time.Time) SessionState {
	if s.ExpiresAt.After(now) {
		return SessionActive
	}
	return SessionExpired
}
