package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/middleware"
)

const catchAll = "{path}"

var paramRe = regexp.MustCompile(`\{([^{}:]+)(?::[^{}]*)?\}`)

// Router dispatches requests by method and path pattern. Patterns use
// {name} for a single segment and a trailing {path} for the rest of the path.
// Method is part of the match key: a known path with another method is 404.
type Router struct {
	mux  *chi.Mux
	root http.Handler

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRouter creates an empty Router. Panics in handlers and middlewares are
// recovered into a 500 envelope.
func NewRouter() *Router {
	mux := chi.NewRouter()
	mux.NotFound(notFound)
	mux.MethodNotAllowed(notFound)
	return &Router{
		mux:  mux,
		root: Recover(mux),
		seen: make(map[string]struct{}),
	}
}

// Use appends global middlewares. They run before route matching, so they
// also see unmatched requests. Use must be called before any Handle.
func (rt *Router) Use(mws ...middleware.Middleware) {
	for _, mw := range mws {
		rt.mux.Use(mw)
	}
}

// Handle registers h for method and pattern, wrapped in mws with the first
// middleware outermost. Registering a method and pattern twice keeps the
// first handler.
func (rt *Router) Handle(method, pattern string, h http.Handler, mws ...middleware.Middleware) {
	method = strings.ToUpper(method)
	key := method + " " + pattern

	rt.mu.Lock()
	if _, dup := rt.seen[key]; dup {
		rt.mu.Unlock()
		slog.Warn("duplicate route ignored", "method", method, "pattern", pattern)
		return
	}
	rt.seen[key] = struct{}{}
	rt.mu.Unlock()

	chiPattern, greedy := translatePattern(pattern)
	if greedy {
		h = exposeCatchAll(h)
	}
	handler := middleware.NewChain(mws...).Then(h)
	if names := paramNames(chiPattern); len(names) > 0 {
		handler = requireParams(names, handler)
	}
	rt.mux.Method(method, chiPattern, handler)
}

// HandleFunc is Handle for a plain function.
func (rt *Router) HandleFunc(method, pattern string, fn http.HandlerFunc, mws ...middleware.Middleware) {
	rt.Handle(method, pattern, fn, mws...)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.root.ServeHTTP(w, r)
}

// PathParam returns the value bound to a pattern parameter.
func PathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// translatePattern maps a trailing {path} onto chi's wildcard.
func translatePattern(pattern string) (string, bool) {
	idx := strings.Index(pattern, catchAll)
	if idx < 0 {
		return pattern, false
	}
	if idx+len(catchAll) != len(pattern) {
		panic(fmt.Sprintf("router: %s must be the last segment of %q", catchAll, pattern))
	}
	return pattern[:idx] + "*", true
}

// exposeCatchAll republishes chi's wildcard value under the name "path".
// An empty remainder does not match.
func exposeCatchAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := chi.URLParam(r, "*")
		if rest == "" {
			notFound(w, r)
			return
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.URLParams.Add("path", rest)
		}
		next.ServeHTTP(w, r)
	})
}

// paramNames lists the {name} parameters of a chi pattern.
func paramNames(pattern string) []string {
	var names []string
	for _, m := range paramRe.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}

// requireParams rejects requests where a named segment matched the empty
// string, as in /api/projects//schema. It runs before route middlewares.
func requireParams(names []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, name := range names {
			if chi.URLParam(r, name) == "" {
				notFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	envelope.Error(w, http.StatusNotFound, "Not Found")
}
