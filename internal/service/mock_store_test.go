package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/port/database"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for testing.
type mockStore struct {
	mu       sync.Mutex
	users    map[string]user.User
	sessions map[string]user.Session // by token
	projects map[string]project.Project

	// Error hooks; set these to inject failures.
	getProjectErr   error
	updateSchemaErr error
	purgeErr        error

	projectByTokenCalls int
	schemaWrites        int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]user.User),
		sessions: make(map[string]user.Session),
		projects: make(map[string]project.Project),
	}
}

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *mockStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *mockStore) UpdateUserPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *mockStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.LastLoginAt = &at
	m.users[id] = u
	return nil
}

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	for tok, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, tok)
		}
	}
	return nil
}

func (m *mockStore) CreateSession(_ context.Context, s *user.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.Token]; ok {
		return domain.ErrConflict
	}
	m.sessions[s.Token] = *s
	return nil
}

func (m *mockStore) GetSessionByToken(_ context.Context, token string, now time.Time) (*user.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *mockStore) ExtendSession(_ context.Context, token string, now, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || !s.ExpiresAt.After(now) {
		return false, nil
	}
	s.ExpiresAt = expiresAt
	m.sessions[token] = s
	return true, nil
}

func (m *mockStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *mockStore) DeleteSessionsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	var n int64
	for tok, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) CreateProject(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *p
	return nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getProjectErr != nil {
		return nil, m.getProjectErr
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockStore) GetProjectByToken(_ context.Context, token string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectByTokenCalls++
	for _, p := range m.projects {
		if p.Token == token {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListProjects(context.Context) ([]project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]project.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockStore) UpdateProjectSchema(_ context.Context, id string, schema *project.Schema, now time.Time) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateSchemaErr != nil {
		return nil, m.updateSchemaErr
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Schema = schema
	p.UpdatedAt = now
	m.projects[id] = p
	m.schemaWrites++
	return &p, nil
}
