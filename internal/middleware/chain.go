// Package middleware provides the HTTP middleware of the lightlogger gateway:
// ordered chains, request IDs, session and project token authentication,
// rate limiting and the worker pool gate.
package middleware

import "net/http"

// Middleware wraps a handler. It may answer the request itself without
// calling next, or delegate to next and act on the way back.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered list of middleware. The first element is outermost,
// so it sees the request first.
type Chain []Middleware

// NewChain builds a chain from the given middleware in order.
func NewChain(mws ...Middleware) Chain {
	return append(Chain(nil), mws...)
}

// Then wraps h with every middleware of the chain.
func (c Chain) Then(h http.Handler) http.Handler {
	if h == nil {
		h = http.DefaultServeMux
	}
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

// ThenFunc is Then for a plain handler function.
func (c Chain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}

// Append returns a new chain with mws added after the existing middleware.
// The receiver is left unchanged.
func (c Chain) Append(mws ...Middleware) Chain {
	out := make(Chain, 0, len(c)+len(mws))
	out = append(out, c...)
	return append(out, mws...)
}
