// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	cfotel "github.com/Strob0t/lightlogger/internal/adapter/otel"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/value"
	"github.com/Strob0t/lightlogger/internal/port/cache"
	"github.com/Strob0t/lightlogger/internal/port/database"
)

const projectTokenKeyPrefix = "project.token."

// ProjectService manages tenants and their schemas. Token lookups on the
// data plane are served through a cache.
type ProjectService struct {
	store    database.ProjectStore
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *cfotel.Metrics
	now      func() time.Time
}

// NewProjectService creates a ProjectService. A nil cache or a
// non-positive TTL disables caching.
func NewProjectService(store database.ProjectStore, c cache.Cache, ttl time.Duration) *ProjectService {
	if c == nil || ttl <= 0 {
		c = cache.Nop{}
	}
	return &ProjectService{store: store, cache: c, cacheTTL: ttl, now: time.Now}
}

// SetMetrics attaches metric instruments. nil disables recording.
func (s *ProjectService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]project.Project, error) {
	return s.store.ListProjects(ctx)
}

// Get returns a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	if err := checkID("project", id); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, id)
}

// Create validates the request and stores a project with a fresh token.
func (s *ProjectService) Create(ctx context.Context, req *project.CreateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	token, err := generateRandomToken(project.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate project token: %w", err)
	}

	now := s.now().UTC()
	p := &project.Project{
		ID:        uuid.NewString(),
		Name:      *req.Name,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	slog.InfoContext(ctx, "project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

// Delete removes a project and forgets its cached token.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := checkID("project", id); err != nil {
		return err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, p.Token)
	return nil
}

// GetSchema returns the project's schema, or nil when none is set.
func (s *ProjectService) GetSchema(ctx context.Context, id string) (*project.Schema, error) {
	if err := checkID("project", id); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Schema, nil
}

// UpdateSchema validates raw as a schema document and replaces the stored
// schema with it. Nothing is written when the document has any violation.
func (s *ProjectService) UpdateSchema(ctx context.Context, id string, raw value.Value) (*project.Project, error) {
	if err := checkID("project", id); err != nil {
		return nil, err
	}
	schema, err := project.ParseSchema(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartSchemaUpdateSpan(ctx, id, len(schema.Fields))
	defer span.End()

	p, err := s.store.UpdateProjectSchema(ctx, id, schema, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.invalidate(ctx, p.Token)
	s.metrics.RecordSchemaUpdate(ctx, id)
	slog.InfoContext(ctx, "schema updated", "project_id", id, "fields", len(schema.Fields))
	return p, nil
}

// ResolveToken returns the project owning token. Unknown tokens yield
// domain.ErrNotFound. Cache failures fall back to the store.
func (s *ProjectService) ResolveToken(ctx context.Context, token string) (*project.Project, error) {
	key := projectTokenKeyPrefix + token

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "project cache get failed", "error", err)
	}
	if ok {
		var p project.Project
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cached project", "error", err)
	}

	p, err := s.store.GetProjectByToken(ctx, token)
	if err != nil {
		s.metrics.RecordAuthRejected(ctx, "project")
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			slog.WarnContext(ctx, "project cache set failed", "error", err)
		}
	}
	return p, nil
}

func (s *ProjectService) invalidate(ctx context.Context, token string) {
	if err := s.cache.Delete(ctx, projectTokenKeyPrefix+token); err != nil {
		slog.WarnContext(ctx, "project cache invalidation failed", "error", err)
	}
}

// checkID reports ids that cannot name a stored row as not found.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
