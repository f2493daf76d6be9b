package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Strob0t/lightlogger/internal/config"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/service"
)

type testEnv struct {
	t       *testing.T
	store   *mockStore
	sink    *captureSink
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := &mockStore{}
	sink := &captureSink{}

	sessions := service.NewSessionService(store, 0)
	auth := service.NewAuthService(store, sessions, &config.Auth{BcryptCost: 4})
	if _, err := auth.Register(context.Background(), &user.CreateRequest{
		Username: "admin", Email: "admin@example.com", Password: "admin-pass",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	h := &Handlers{
		Auth:     auth,
		Projects: service.NewProjectService(store, nil, 0),
		Ingest:   service.NewIngestService(sink),
		DB:       store,
	}
	return &testEnv{
		t:       t,
		store:   store,
		sink:    sink,
		handler: NewServerHandler(config.Defaults().Server, "lightlogger-test", h, nil),
	}
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login() string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"admin-pass"}`)
	if rec.Code != http.StatusOK {
		e.t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		e.t.Fatal(err)
	}
	return body.Data.Token
}

func (e *testEnv) createProject(session, name string) project.Project {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/projects", session, `{"name":"`+name+`"}`)
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("create project: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data project.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		e.t.Fatal(err)
	}
	return body.Data
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) map[string]any {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, code, rec.Body.String())
	}
	return envelopeOf(t, rec)
}

func TestRootAndHealth(t *testing.T) {
	e := newTestEnv(t)

	root := wantStatus(t, e.do(http.MethodGet, "/", "", ""), http.StatusOK)
	if root["name"] != "Light Logger" || root["status"] != "running" {
		t.Errorf("root = %v", root)
	}

	health := wantStatus(t, e.do(http.MethodGet, "/health", "", ""), http.StatusOK)
	if health["status"] != "ok" || health["time"] == nil {
		t.Errorf("health = %v", health)
	}

	e.store.pingErr = errors.New("down")
	health = wantStatus(t, e.do(http.MethodGet, "/health", "", ""), http.StatusServiceUnavailable)
	if health["status"] != "degraded" {
		t.Errorf("health = %v", health)
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"ok", `{"username":"admin","password":"admin-pass"}`, http.StatusOK, "Login successful"},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"missing fields", `{"username":"admin"}`, http.StatusBadRequest, "Username and password are required"},
		{"malformed", `{"username":`, http.StatusBadRequest, "Invalid JSON body"},
		{"not an object", `[1,2]`, http.StatusBadRequest, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := wantStatus(t, e.do(http.MethodPost, "/api/auth/login", "", tt.body), tt.wantCode)
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMsg)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)

	body := wantStatus(t, e.do(http.MethodGet, "/api/auth/me", "", ""), http.StatusUnauthorized)
	if body["message"] != "Authentication required" {
		t.Errorf("message = %v", body["message"])
	}

	token := e.login()
	body = wantStatus(t, e.do(http.MethodGet, "/api/auth/me", token, ""), http.StatusOK)
	data, _ := body["data"].(map[string]any)
	if u, _ := data["user"].(map[string]any); u["username"] != "admin" {
		t.Errorf("me = %v", body)
	}
	if strings.Contains(e.do(http.MethodGet, "/api/auth/me", token, "").Body.String(), "password") {
		t.Error("password hash leaked")
	}

	body = wantStatus(t, e.do(http.MethodPost, "/api/auth/check", "", `{"token":"`+token+`"}`), http.StatusOK)
	if data, _ := body["data"].(map[string]any); data["valid"] != true {
		t.Errorf("check = %v", body)
	}

	wantStatus(t, e.do(http.MethodPost, "/api/auth/logout", token, ""), http.StatusOK)

	body = wantStatus(t, e.do(http.MethodGet, "/api/auth/me", token, ""), http.StatusUnauthorized)
	if body["message"] != "Invalid or expired token" {
		t.Errorf("message = %v", body["message"])
	}
	body = wantStatus(t, e.do(http.MethodPost, "/api/auth/check", "", `{"token":"`+token+`"}`), http.StatusOK)
	if data, _ := body["data"].(map[string]any); data["valid"] != false {
		t.Errorf("check after logout = %v", body)
	}
	wantStatus(t, e.do(http.MethodPost, "/api/auth/check", "", `{}`), http.StatusBadRequest)
}

func TestProjects(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	wantStatus(t, e.do(http.MethodGet, "/api/projects", "", ""), http.StatusUnauthorized)

	p := e.createProject(token, "shop")
	if p.Name != "shop" || len(p.Token) != 64 {
		t.Errorf("project = %+v", p)
	}

	body := wantStatus(t, e.do(http.MethodGet, "/api/projects", token, ""), http.StatusOK)
	if list, _ := body["data"].([]any); len(list) != 1 {
		t.Errorf("list = %v", body["data"])
	}

	wantStatus(t, e.do(http.MethodGet, "/api/projects/"+p.ID, token, ""), http.StatusOK)

	body = wantStatus(t, e.do(http.MethodGet, "/api/projects/missing", token, ""), http.StatusNotFound)
	if body["message"] != "Project not found" {
		t.Errorf("message = %v", body["message"])
	}
	body = wantStatus(t, e.do(http.MethodGet, "/api/projects//schema", "", ""), http.StatusNotFound)
	if body["message"] != "Not Found" {
		t.Errorf("empty id: message = %v", body["message"])
	}

	body = wantStatus(t, e.do(http.MethodPost, "/api/projects", token, `{"name":"   "}`), http.StatusBadRequest)
	if body["message"] != "Project name cannot be empty" {
		t.Errorf("message = %v", body["message"])
	}
	body = wantStatus(t, e.do(http.MethodPost, "/api/projects", token, `{}`), http.StatusBadRequest)
	if body["message"] != "Project name is required" {
		t.Errorf("message = %v", body["message"])
	}

	wantStatus(t, e.do(http.MethodDelete, "/api/projects/"+p.ID, token, ""), http.StatusOK)
	wantStatus(t, e.do(http.MethodDelete, "/api/projects/"+p.ID, token, ""), http.StatusNotFound)
}

func TestSchemaUpdate(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()
	p := e.createProject(token, "shop")
	path := "/api/projects/" + p.ID + "/schema"

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
		wantErrs int
	}{
		{"missing schema", `{}`, http.StatusBadRequest, "Schema is required", 0},
		{"schema not object", `{"schema":"x"}`, http.StatusBadRequest, "Schema must be an object", 0},
		{"no fields", `{"schema":{}}`, http.StatusBadRequest, "Schema must contain a fields array", 0},
		{"bad field", `{"schema":{"fields":[{"name":"1x","type":"uuid","required":true,"indexed":false}]}}`, http.StatusBadRequest, "Invalid schema definition", 2},
		{"ok", `{"schema":{"fields":[{"name":"amount","type":"number","required":true,"indexed":false,"validation":{"min":0}}]}}`, http.StatusOK, "Schema updated successfully", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := wantStatus(t, e.do(http.MethodPut, path, token, tt.body), tt.wantCode)
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMsg)
			}
			if errs, _ := body["errors"].([]any); len(errs) != tt.wantErrs {
				t.Errorf("errors = %v, want %d", body["errors"], tt.wantErrs)
			}
		})
	}

	rec := e.do(http.MethodGet, path, token, "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"validation":{"min":0}`) {
		t.Errorf("schema not round-tripped: %s", rec.Body.String())
	}

	wantStatus(t, e.do(http.MethodPut, "/api/projects/missing/schema", token, `{"schema":{"fields":[]}}`), http.StatusNotFound)
}

func TestIngestAuth(t *testing.T) {
	e := newTestEnv(t)
	session := e.login()
	e.createProject(session, "shop")

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing", "", "Missing or invalid Authorization header. Use: Bearer YOUR_PROJECT_TOKEN"},
		{"malformed", "Token abc", "Missing or invalid Authorization header. Use: Bearer YOUR_PROJECT_TOKEN"},
		{"unknown", "Bearer nope", "Invalid project token"},
		{"session token", "Bearer " + session, "Invalid project token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.handler.ServeHTTP(rec, req)
			body := wantStatus(t, rec, http.StatusUnauthorized)
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %v", body["message"])
			}
		})
	}
}

func TestIngest(t *testing.T) {
	e := newTestEnv(t)
	session := e.login()
	p := e.createProject(session, "shop")

	body := wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token,
		`{"timestamp":"2024-01-01T00:00:00Z","level":"info","title":"hello","data":{"k":1}}`), http.StatusOK)
	if body["message"] != "Logs received successfully" {
		t.Errorf("message = %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	if data["accepted"] != float64(1) || data["rejected"] != float64(0) || data["project"] != "shop" {
		t.Errorf("data = %v", data)
	}

	body = wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token, `{"logs":[
		{"timestamp":"2024-01-01T00:00:00Z","level":"info","title":"a"},
		{"timestamp":"2024-01-01T00:00:00Z","level":"debug","title":"b"},
		{"timestamp":"2024-01-01T00:00:00Z","level":"info","title":""}
	]}`), http.StatusUnprocessableEntity)
	if body["message"] != "Some logs failed validation" {
		t.Errorf("message = %v", body["message"])
	}
	errs, _ := body["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("errors = %v", body["errors"])
	}
	if item, _ := errs[0].(map[string]any); item["index"] != float64(2) {
		t.Errorf("failed index = %v, want 2", item["index"])
	}
	data, _ = body["data"].(map[string]any)
	if data["accepted"] != float64(2) || data["rejected"] != float64(1) {
		t.Errorf("data = %v", data)
	}

	if got := len(e.sink.events); got != 3 {
		t.Errorf("sink received %d events, want 3", got)
	}

	wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token, `{"logs":{}}`), http.StatusBadRequest)
	body = wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token, `not json`), http.StatusBadRequest)
	if body["message"] != "Invalid JSON body" {
		t.Errorf("message = %v", body["message"])
	}
	body = wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token, `null`), http.StatusBadRequest)
	if body["message"] != "Invalid JSON body" {
		t.Errorf("null body: message = %v", body["message"])
	}
}

func TestIngestRequiredDataField(t *testing.T) {
	e := newTestEnv(t)
	session := e.login()
	p := e.createProject(session, "shop")
	wantStatus(t, e.do(http.MethodPut, "/api/projects/"+p.ID+"/schema", session,
		`{"schema":{"fields":[{"name":"user_id","type":"string","required":true,"indexed":true}]}}`), http.StatusOK)

	rec := e.do(http.MethodPost, "/api/v1/logs", p.Token,
		`{"timestamp":"2024-01-01T00:00:00Z","level":"info","title":"no data"}`)
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	if !strings.Contains(rec.Body.String(), `"field":"data"`) {
		t.Errorf("missing data not reported: %s", rec.Body.String())
	}
}

func TestIngestSinkFailure(t *testing.T) {
	e := newTestEnv(t)
	session := e.login()
	p := e.createProject(session, "shop")
	e.sink.fail = true

	wantStatus(t, e.do(http.MethodPost, "/api/v1/logs", p.Token,
		`{"timestamp":"2024-01-01T00:00:00Z","level":"info","title":"x"}`), http.StatusInternalServerError)
}

func TestQueryLogs(t *testing.T) {
	e := newTestEnv(t)
	session := e.login()
	p := e.createProject(session, "shop")

	body := wantStatus(t, e.do(http.MethodGet, "/api/v1/logs?limit=5000&level=error", p.Token, ""), http.StatusOK)
	data, _ := body["data"].(map[string]any)
	if data["limit"] != float64(1000) || data["level"] != "error" {
		t.Errorf("data = %v", data)
	}
	if logs, ok := data["logs"].([]any); !ok || len(logs) != 0 {
		t.Errorf("logs = %v", data["logs"])
	}

	wantStatus(t, e.do(http.MethodGet, "/api/v1/logs?level=loud", p.Token, ""), http.StatusBadRequest)
	wantStatus(t, e.do(http.MethodPut, "/api/v1/logs", p.Token, ""), http.StatusNotFound)
}

func TestUsers(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	body := wantStatus(t, e.do(http.MethodGet, "/api/users", token, ""), http.StatusOK)
	list, _ := body["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("users = %v", body["data"])
	}
	self, _ := list[0].(map[string]any)
	selfID, _ := self["id"].(string)

	wantStatus(t, e.do(http.MethodDelete, "/api/users/"+selfID, token, ""), http.StatusBadRequest)
	wantStatus(t, e.do(http.MethodDelete, "/api/users/missing", token, ""), http.StatusNotFound)
}
