package http

import (
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/middleware"
)

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if users == nil {
		users = []user.User{}
	}
	envelope.OK(w, http.StatusOK, "Success", users)
}

// DeleteUser handles DELETE /api/users/{id}. Users cannot delete themselves.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "id")
	if me := middleware.UserFromContext(r.Context()); me != nil && me.ID == id {
		envelope.Error(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	if err := h.Auth.DeleteUser(r.Context(), id); err != nil {
		writeDomainError(w, r, err, "User not found")
		return
	}
	envelope.OK(w, http.StatusOK, "User deleted successfully", nil)
}
