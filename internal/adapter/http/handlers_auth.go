package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/middleware"
)

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r, h.bodyLimit())
	if !ok {
		return
	}
	req := user.LoginRequest{
		Username: stringField(body, "username"),
		Password: stringField(body, "password"),
	}

	resp, err := h.Auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.DebugContext(r.Context(), "login failed", "username", req.Username)
			envelope.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeDomainError(w, r, err, "User not found")
		return
	}
	envelope.OK(w, http.StatusOK, "Login successful", resp)
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), middleware.SessionTokenFromContext(r.Context())); err != nil {
		writeInternalError(w, r, err)
		return
	}
	envelope.OK(w, http.StatusOK, "Logged out successfully", nil)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		envelope.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	envelope.OK(w, http.StatusOK, "Success", map[string]any{"user": u})
}

// CheckToken handles POST /api/auth/check. It does not extend the session.
func (h *Handlers) CheckToken(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r, h.bodyLimit())
	if !ok {
		return
	}
	token := stringField(body, "token")
	if token == "" {
		envelope.Error(w, http.StatusBadRequest, "Token required")
		return
	}

	valid, err := h.Auth.Check(r.Context(), token)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	envelope.OK(w, http.StatusOK, "Success", map[string]bool{"valid": valid})
}

// clientIP is the connection's remote host. Proxy headers are resolved by
// chi's RealIP middleware when server.trust_proxy is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
