package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain/project"
)

const projectColumns = `id, name, token, schema, created_at, updated_at`

func scanProject(row scannable) (project.Project, error) {
	var (
		p   project.Project
		raw []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Token, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	schema, err := decodeSchema(raw)
	if err != nil {
		return p, fmt.Errorf("decode schema of project %s: %w", p.ID, err)
	}
	p.Schema = schema
	return p, nil
}

// decodeSchema turns the JSONB column into a schema. SQL NULL and JSON null
// both mean "no schema".
func decodeSchema(raw []byte) (*project.Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var sc project.Schema
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func encodeSchema(sc *project.Schema) ([]byte, error) {
	if sc == nil {
		return nil, nil
	}
	return json.Marshal(sc)
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	raw, err := encodeSchema(p.Schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO projects (id, name, token, schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Token, raw, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return conflictWrap(err, "create project %s", p.Name)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get project %s", id)
	}
	return &p, nil
}

func (s *Store) GetProjectByToken(ctx context.Context, token string) (*project.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE token = $1`, token))
	if err != nil {
		return nil, notFoundWrap(err, "get project by token")
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]project.Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return orEmpty(projects), rows.Err()
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete project %s", id)
}

// UpdateProjectSchema locks the project row, replaces its schema and returns
// the row as written.
func (s *Store) UpdateProjectSchema(ctx context.Context, id string, sc *project.Schema, now time.Time) (*project.Project, error) {
	raw, err := encodeSchema(sc)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return nil, notFoundWrap(err, "lock project %s", id)
	}

	p, err := scanProject(tx.QueryRow(ctx, `
		UPDATE projects SET schema = $2, updated_at = $3 WHERE id = $1
		RETURNING `+projectColumns, id, raw, now))
	if err != nil {
		return nil, fmt.Errorf("update schema of project %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &p, nil
}
