package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/value"
)

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, v []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}

func strPtr(s string) *string { return &s }

func newTestProjectService(store *mockStore, c *memCache) *ProjectService {
	svc := NewProjectService(store, c, time.Minute)
	svc.now = newTestClock().Now
	return svc
}

func TestProjectService_Create(t *testing.T) {
	svc := newTestProjectService(newMockStore(), newMemCache())

	p, err := svc.Create(context.Background(), &project.CreateRequest{Name: strPtr("  shop  ")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "shop" {
		t.Errorf("name = %q, want shop", p.Name)
	}
	if len(p.Token) != 2*project.TokenBytes {
		t.Errorf("token length = %d", len(p.Token))
	}
	if p.ID == "" || p.Schema != nil {
		t.Errorf("unexpected project %+v", p)
	}
}

func TestProjectService_CreateValidation(t *testing.T) {
	svc := newTestProjectService(newMockStore(), newMemCache())
	tests := []struct {
		name string
		req  project.CreateRequest
		want string
	}{
		{"missing", project.CreateRequest{}, "Project name is required"},
		{"blank", project.CreateRequest{Name: strPtr("   ")}, "Project name cannot be empty"},
		{"too long", project.CreateRequest{Name: strPtr(strings.Repeat("x", 256))}, "Project name is too long (max 255 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.req)
			if err == nil || err.Error() != tt.want {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestProjectService_SchemaRoundTrip(t *testing.T) {
	store := newMockStore()
	svc := newTestProjectService(store, newMemCache())
	ctx := context.Background()

	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})

	doc := `{"fields":[
		{"name":"user_id","type":"string","required":true,"indexed":true,"validation":{"pattern":"^u_","x_custom":1}},
		{"name":"amount","type":"number","required":false,"indexed":false,"validation":{"min":0,"max":100}}
	]}`
	if _, err := svc.UpdateSchema(ctx, p.ID, mustParse(t, doc)); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.GetSchema(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := project.ParseSchema(mustParse(t, doc))

	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("schema = %s\nwant %s", gotJSON, wantJSON)
	}
	if !strings.Contains(string(gotJSON), `"x_custom":1`) {
		t.Errorf("unknown rule key not preserved: %s", gotJSON)
	}
}

func TestProjectService_UpdateSchemaRejectsWithoutWriting(t *testing.T) {
	store := newMockStore()
	svc := newTestProjectService(store, newMemCache())
	ctx := context.Background()
	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})

	doc := `{"fields":[
		{"name":"a","type":"string","required":true,"indexed":false},
		{"name":"a","type":"string","required":true,"indexed":false},
		{"name":"b","type":"string","required":true,"indexed":false,"validation":{"pattern":"("}}
	]}`
	_, err := svc.UpdateSchema(ctx, p.ID, mustParse(t, doc))

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Message != "Invalid schema definition" || len(verr.Details) != 2 {
		t.Errorf("validation error = %q %v", verr.Message, verr.Details)
	}
	if store.schemaWrites != 0 {
		t.Errorf("schema was written %d times", store.schemaWrites)
	}
}

func TestProjectService_UpdateSchemaUnknownProject(t *testing.T) {
	svc := newTestProjectService(newMockStore(), newMemCache())
	_, err := svc.UpdateSchema(context.Background(), uuid.New().String(), mustParse(t, `{"fields":[]}`))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestProjectService_ResolveTokenCaches(t *testing.T) {
	store := newMockStore()
	c := newMemCache()
	svc := newTestProjectService(store, c)
	ctx := context.Background()

	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})

	for range 3 {
		got, err := svc.ResolveToken(ctx, p.Token)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.ID != p.ID {
			t.Errorf("id = %q, want %q", got.ID, p.ID)
		}
	}
	if store.projectByTokenCalls != 1 {
		t.Errorf("store lookups = %d, want 1", store.projectByTokenCalls)
	}

	if _, err := svc.ResolveToken(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown token: err = %v", err)
	}
}

func TestProjectService_SchemaUpdateInvalidatesCache(t *testing.T) {
	store := newMockStore()
	c := newMemCache()
	svc := newTestProjectService(store, c)
	ctx := context.Background()

	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})
	if _, err := svc.ResolveToken(ctx, p.Token); err != nil {
		t.Fatal(err)
	}

	doc := `{"fields":[{"name":"n","type":"number","required":true,"indexed":false}]}`
	if _, err := svc.UpdateSchema(ctx, p.ID, mustParse(t, doc)); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ResolveToken(ctx, p.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Schema.HasFields() {
		t.Error("resolved project carries a stale schema")
	}
}

func TestProjectService_DeleteInvalidatesCache(t *testing.T) {
	store := newMockStore()
	c := newMemCache()
	svc := newTestProjectService(store, c)
	ctx := context.Background()

	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})
	_, _ = svc.ResolveToken(ctx, p.Token)

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResolveToken(ctx, p.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted project still resolves: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestProjectService_NilCache(t *testing.T) {
	store := newMockStore()
	svc := NewProjectService(store, nil, 0)
	ctx := context.Background()

	p, _ := svc.Create(ctx, &project.CreateRequest{Name: strPtr("shop")})
	_, _ = svc.ResolveToken(ctx, p.Token)
	_, _ = svc.ResolveToken(ctx, p.Token)
	if store.projectByTokenCalls != 2 {
		t.Errorf("store lookups = %d, want 2", store.projectByTokenCalls)
	}
}

func TestProjectService_MalformedIDIsNotFound(t *testing.T) {
	store := newMockStore()
	store.getProjectErr = errors.New("invalid input syntax for type uuid")
	svc := newTestProjectService(store, newMemCache())
	ctx := context.Background()

	for _, id := range []string{"abc", "", "42", "not-a-uuid-at-all"} {
		if _, err := svc.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Get(%q): err = %v, want ErrNotFound", id, err)
		}
		if _, err := svc.GetSchema(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("GetSchema(%q): err = %v, want ErrNotFound", id, err)
		}
		if _, err := svc.UpdateSchema(ctx, id, mustParse(t, `{"fields":[]}`)); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("UpdateSchema(%q): err = %v, want ErrNotFound", id, err)
		}
		if err := svc.Delete(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Delete(%q): err = %v, want ErrNotFound", id, err)
		}
	}
	if store.schemaWrites != 0 {
		t.Errorf("schema was written %d times", store.schemaWrites)
	}
}
