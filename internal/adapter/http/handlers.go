package http

import (
	"context"

	"github.com/Strob0t/lightlogger/internal/service"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connectivity reports the state of an optional connection.
type Connectivity interface {
	IsConnected() bool
}

// Handlers holds the services the HTTP handlers delegate to.
type Handlers struct {
	Auth     *service.AuthService
	Projects *service.ProjectService
	Ingest   *service.IngestService

	DB    Pinger
	Queue Connectivity // nil when NATS is not configured

	BodyLimit int64
}

func (h *Handlers) bodyLimit() int64 {
	if h.BodyLimit > 0 {
		return h.BodyLimit
	}
	return 1 << 20
}
