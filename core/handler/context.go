package handler

import (
	"context"
	"net/http"
)

// Context is the request context handed to every handler.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param returns a path wildcard value ("{id}" in the route pattern).
	Param(key string) string
	// SetValue stores a request-scoped value visible through Value.
	SetValue(key, val any)
}
