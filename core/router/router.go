package router

import (
	"net/http"

	"github.com/onedesigner/onedesigner/core/handler"
)

// Router registers typed handlers on top of net/http pattern matching.
// Patterns use the standard library syntax, e.g. "/api/briefs/{id}".
type Router[C handler.Context] interface {
	http.Handler
	Routes

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])

	// Handle registers h for every method.
	Handle(pattern string, h handler.HandlerFunc[C])

	// Use appends middleware for routes registered afterwards.
	Use(middlewares ...handler.Middleware[C])
	// With returns a router sharing the route table with extra middleware.
	With(middlewares ...handler.Middleware[C]) Router[C]

	// Group creates an inline router with its own middleware stack.
	Group(fn func(r Router[C])) Router[C]
	// Route creates a router mounted under pattern.
	Route(pattern string, fn func(r Router[C])) Router[C]
}

// Routes exposes the registered routes for introspection and tests.
type Routes interface {
	Routes() []Route
}

// Route describes a single registered route.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router. Without WithContextFactory the context type must be *Context.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux(opts...)
}
