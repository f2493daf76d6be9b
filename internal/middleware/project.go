package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/logger"
)

const (
	msgMissingProjectToken = "Missing or invalid Authorization header. Use: Bearer YOUR_PROJECT_TOKEN"
	msgInvalidProjectToken = "Invalid project token"
)

// ProjectResolver looks a project up by its ingestion token.
type ProjectResolver interface {
	ResolveToken(ctx context.Context, token string) (*project.Project, error)
}

type projectCtxKey struct{}

// ProjectAuth returns middleware for the data plane. It admits requests
// whose bearer token is a project token and stores the project in the
// context. Session tokens are not accepted here.
func ProjectAuth(resolver ProjectResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				envelope.Error(w, http.StatusUnauthorized, msgMissingProjectToken)
				return
			}

			p, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
					envelope.Error(w, http.StatusUnauthorized, msgInvalidProjectToken)
					return
				}
				slog.ErrorContext(r.Context(), "project lookup failed", "error", err)
				envelope.Error(w, http.StatusInternalServerError, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), projectCtxKey{}, p)
			ctx = logger.WithProjectID(ctx, p.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProjectFromContext returns the project the request was authenticated for, or nil.
func ProjectFromContext(ctx context.Context) *project.Project {
	p, _ := ctx.Value(projectCtxKey{}).(*project.Project)
	return p
}
