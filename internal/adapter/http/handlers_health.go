package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
)

const healthPingTimeout = 2 * time.Second

// Root handles GET /
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	envelope.WriteJSON(w, http.StatusOK, map[string]any{
		"name":    "Light Logger",
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":   "/health",
			"logs":     "/api/v1/logs",
			"projects": "/api/projects",
		},
	})
}

// Health handles GET /health. It reports 503 when the database is unreachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "nats": "disabled"}
	status, code := "ok", http.StatusOK

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			checks["database"] = "error"
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	if h.Queue != nil {
		checks["nats"] = "ok"
		if !h.Queue.IsConnected() {
			checks["nats"] = "disconnected"
		}
	}

	envelope.WriteJSON(w, code, map[string]any{
		"status": status,
		"time":   time.Now().Unix(),
		"checks": checks,
	})
}
