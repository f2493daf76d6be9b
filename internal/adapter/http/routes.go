package http

import (
	"net/http"

	"github.com/Strob0t/lightlogger/internal/middleware"
)

// MountRoutes registers all routes on rt. limiter may be nil.
func MountRoutes(rt *Router, h *Handlers, limiter *middleware.RateLimiter) {
	// Public
	rt.HandleFunc(http.MethodGet, "/", h.Root)
	rt.HandleFunc(http.MethodGet, "/health", h.Health)

	// Control plane
	session := middleware.SessionAuth(h.Auth)

	rt.HandleFunc(http.MethodPost, "/api/auth/login", h.Login)
	rt.HandleFunc(http.MethodPost, "/api/auth/check", h.CheckToken)
	rt.HandleFunc(http.MethodPost, "/api/auth/logout", h.Logout, session)
	rt.HandleFunc(http.MethodGet, "/api/auth/me", h.Me, session)

	rt.HandleFunc(http.MethodGet, "/api/projects", h.ListProjects, session)
	rt.HandleFunc(http.MethodPost, "/api/projects", h.CreateProject, session)
	rt.HandleFunc(http.MethodGet, "/api/projects/{id}", h.GetProject, session)
	rt.HandleFunc(http.MethodDelete, "/api/projects/{id}", h.DeleteProject, session)
	rt.HandleFunc(http.MethodGet, "/api/projects/{id}/schema", h.GetSchema, session)
	rt.HandleFunc(http.MethodPut, "/api/projects/{id}/schema", h.UpdateSchema, session)

	rt.HandleFunc(http.MethodGet, "/api/users", h.ListUsers, session)
	rt.HandleFunc(http.MethodDelete, "/api/users/{id}", h.DeleteUser, session)

	// Data plane
	dataPlane := []middleware.Middleware{middleware.ProjectAuth(h.Projects)}
	if limiter != nil {
		dataPlane = append(dataPlane, limiter.Handler)
	}
	rt.HandleFunc(http.MethodPost, "/api/v1/logs", h.IngestLogs, dataPlane...)
	rt.HandleFunc(http.MethodGet, "/api/v1/logs", h.QueryLogs, dataPlane...)
}
