package router

import (
	"log/slog"
	"net/http"
	"path"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/logger"
)

// table is the route table shared by a root router and every group derived from it.
type table[C handler.Context] struct {
	mu              sync.RWMutex
	serveMux        *http.ServeMux
	routes          []Route
	errorHandler    handler.ErrorHandler[C]
	newContext      func(http.ResponseWriter, *http.Request) C
	logger          *slog.Logger
	rootMiddlewares []handler.Middleware[C]
}

type mux[C handler.Context] struct {
	table       *table[C]
	prefix      string
	middlewares []handler.Middleware[C]
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	t := &table[C]{
		serveMux:     http.NewServeMux(),
		errorHandler: defaultErrorHandler[C],
		logger:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.newContext == nil {
		t.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m := &mux[C]{
		table:       t,
		middlewares: slices.Clone(t.rootMiddlewares),
	}

	// Unmatched requests still go through root middleware and the error handler.
	t.serveMux.Handle("/", m.wrap(func(C) handler.Response {
		return func(http.ResponseWriter, *http.Request) error { return ErrNotFound }
	}))

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.table.serveMux.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.middlewares = append(m.middlewares, middlewares...)
}

func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		table:       m.table,
		prefix:      m.prefix,
		middlewares: append(slices.Clone(m.middlewares), middlewares...),
	}
}

func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	sub := m.With()
	if fn != nil {
		fn(sub)
	}
	return sub
}

func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	sub := &mux[C]{
		table:       m.table,
		prefix:      joinPath(m.prefix, pattern),
		middlewares: slices.Clone(m.middlewares),
	}
	if fn != nil {
		fn(sub)
	}
	return sub
}

func (m *mux[C]) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()
	return slices.Clone(m.table.routes)
}

func (m *mux[C]) handle(method, pattern string, h handler.HandlerFunc[C]) {
	if h == nil {
		panic(ErrNilHandler)
	}
	if !strings.HasPrefix(pattern, "/") {
		panic(ErrInvalidPattern)
	}

	full := joinPath(m.prefix, pattern)
	muxPattern := full
	if method != "" {
		muxPattern = method + " " + full
	}

	m.table.mu.Lock()
	m.table.routes = append(m.table.routes, Route{Method: method, Pattern: full})
	m.table.mu.Unlock()

	m.table.serveMux.Handle(muxPattern, m.wrap(h))
}

// wrap freezes the current middleware chain around h and adapts it to http.Handler.
func (m *mux[C]) wrap(h handler.HandlerFunc[C]) http.Handler {
	chain := h
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		chain = m.middlewares[i](chain)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.table.newContext(ww, r)

		defer func() {
			if p := recover(); p != nil {
				perr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					m.table.logger.Error("panic after response written",
						slog.Any("panic", p),
						logger.Path(r.URL.Path),
						logger.Method(r.Method),
					)
					return
				}
				m.table.errorHandler(ctx, perr)
			}
		}()

		resp := chain(ctx)
		if resp == nil {
			m.table.errorHandler(ctx, ErrNilResponse)
			return
		}
		// Middleware may have replaced the request (SetValue), so render with the context's view.
		if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
			m.table.errorHandler(ctx, err)
		}
	})
}

func joinPath(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	joined := path.Join(prefix, pattern)
	// path.Join drops the trailing slash that marks a subtree pattern.
	if strings.HasSuffix(pattern, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}
