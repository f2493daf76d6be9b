package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/event"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/port/database"
)

var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory database.Store for handler tests.
type mockStore struct {
	mu       sync.Mutex
	users    []user.User
	sessions []user.Session
	projects []project.Project
	pingErr  error
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Username == u.Username || x.Email == u.Email {
			return domain.ErrConflict
		}
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByUsername(_ context.Context, name string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Username == name {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]user.User(nil), m.users...), nil
}

func (m *mockStore) UpdateUserPassword(context.Context, string, string) error { return nil }

func (m *mockStore) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CreateSession(_ context.Context, s *user.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *mockStore) GetSessionByToken(_ context.Context, token string, now time.Time) (*user.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].Token == token && m.sessions[i].ExpiresAt.After(now) {
			s := m.sessions[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ExtendSession(_ context.Context, token string, now, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].Token == token && m.sessions[i].ExpiresAt.After(now) {
			m.sessions[i].ExpiresAt = expiresAt
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	m.sessions = kept
	return nil
}

func (m *mockStore) DeleteSessionsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	return n, nil
}

func (m *mockStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	return n, nil
}

func (m *mockStore) CreateProject(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, *p)
	return nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			p := m.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetProjectByToken(_ context.Context, token string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].Token == token {
			p := m.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListProjects(context.Context) ([]project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]project.Project(nil), m.projects...), nil
}

func (m *mockStore) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) UpdateProjectSchema(_ context.Context, id string, schema *project.Schema, now time.Time) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects[i].Schema = schema
			m.projects[i].UpdatedAt = now
			p := m.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// captureSink records what the ingest service forwards.
type captureSink struct {
	mu     sync.Mutex
	events []event.LogEvent
	fail   bool
}

func (s *captureSink) Store(_ context.Context, _ string, events []event.LogEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.events = append(s.events, events...)
	return nil
}
