package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/user"
)

const (
	msgAuthRequired  = "Authentication required"
	msgInvalidHeader = "Invalid authorization header"
	msgInvalidToken  = "Invalid or expired token"
)

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	m := bearerPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SessionAuthenticator resolves a session token to its user, extending the
// session on success. Unknown or expired tokens yield domain.ErrUnauthorized.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

type authUserCtxKey struct{}

type sessionTokenCtxKey struct{}

// SessionAuth returns middleware that admits only requests carrying a valid
// session token. The user and token are stored in the request context.
func SessionAuth(auth SessionAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				envelope.Error(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}
			token, ok := BearerToken(header)
			if !ok {
				envelope.Error(w, http.StatusUnauthorized, msgInvalidHeader)
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					envelope.Error(w, http.StatusUnauthorized, msgInvalidToken)
					return
				}
				slog.ErrorContext(r.Context(), "session lookup failed", "error", err)
				envelope.Error(w, http.StatusInternalServerError, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
			ctx = context.WithValue(ctx, sessionTokenCtxKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}

// SessionTokenFromContext returns the session token the request was
// authenticated with.
func SessionTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(sessionTokenCtxKey{}).(string)
	return t
}
