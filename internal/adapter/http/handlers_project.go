package http

import (
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain/project"
)

const msgProjectNotFound = "Project not found"

// ListProjects handles GET /api/projects
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	envelope.OK(w, http.StatusOK, "Success", projects)
}

// CreateProject handles POST /api/projects
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r, h.bodyLimit())
	if !ok {
		return
	}
	var req project.CreateRequest
	if name, isString := body.Field("name").AsString(); isString {
		req.Name = &name
	}

	p, err := h.Projects.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, msgProjectNotFound)
		return
	}
	envelope.OK(w, http.StatusCreated, "Project created successfully", p)
}

// GetProject handles GET /api/projects/{id}
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Projects.Get(r.Context(), PathParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, msgProjectNotFound)
		return
	}
	envelope.OK(w, http.StatusOK, "Success", p)
}

// DeleteProject handles DELETE /api/projects/{id}
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Projects.Delete(r.Context(), PathParam(r, "id")); err != nil {
		writeDomainError(w, r, err, msgProjectNotFound)
		return
	}
	envelope.OK(w, http.StatusOK, "Project deleted successfully", nil)
}

// GetSchema handles GET /api/projects/{id}/schema
func (h *Handlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.Projects.GetSchema(r.Context(), PathParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, msgProjectNotFound)
		return
	}
	envelope.OK(w, http.StatusOK, "Success", map[string]any{"schema": schema})
}

// UpdateSchema handles PUT /api/projects/{id}/schema
func (h *Handlers) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r, h.bodyLimit())
	if !ok {
		return
	}
	p, err := h.Projects.UpdateSchema(r.Context(), PathParam(r, "id"), body.Field("schema"))
	if err != nil {
		writeDomainError(w, r, err, msgProjectNotFound)
		return
	}
	envelope.OK(w, http.StatusOK, "Schema updated successfully", map[string]any{"schema": p.Schema})
}
