package http

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	cfotel "github.com/Strob0t/lightlogger/internal/adapter/otel"
	"github.com/Strob0t/lightlogger/internal/config"
	"github.com/Strob0t/lightlogger/internal/middleware"
)

// NewServerHandler builds the complete HTTP handler: global middlewares in
// their fixed order followed by the routes.
func NewServerHandler(cfg config.Server, serviceName string, h *Handlers, limiter *middleware.RateLimiter) http.Handler {
	rt := NewRouter()
	rt.Use(middleware.RequestID)
	if cfg.TrustProxy {
		rt.Use(chimw.RealIP)
	}
	rt.Use(
		Logger,
		CORS(cfg.CORSOrigin),
		cfotel.HTTPMiddleware(serviceName),
		middleware.WorkerPool(cfg.Workers),
	)
	if cfg.RequestTimeout > 0 {
		rt.Use(Timeout(cfg.RequestTimeout))
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = cfg.BodyLimit
	}
	MountRoutes(rt, h, limiter)
	return rt
}

// NewServer wraps handler in an *http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
