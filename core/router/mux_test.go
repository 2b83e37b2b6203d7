package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/router"
)

func text(s string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := w.Write([]byte(s))
		return err
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMux_MethodRoutingAndParams(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/briefs/{id}", func(ctx *router.Context) handler.Response {
		return text("get " + ctx.Param("id"))
	})
	r.Post("/briefs/{id}", func(ctx *router.Context) handler.Response {
		return text("post " + ctx.Param("id"))
	})

	rec := serve(t, r, http.MethodGet, "/briefs/42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "get 42", rec.Body.String())

	rec = serve(t, r, http.MethodPost, "/briefs/7")
	assert.Equal(t, "post 7", rec.Body.String())
}

func TestMux_NotFoundUsesErrorHandler(t *testing.T) {
	t.Parallel()

	var got error
	r := router.New(router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
		got = err
		ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
	}))
	r.Get("/known", func(*router.Context) handler.Response { return text("ok") })

	rec := serve(t, r, http.MethodGet, "/unknown")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, router.ErrNotFound)
}

func TestMux_DefaultErrorHandlerStatus(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/fail", func(*router.Context) handler.Response {
		return func(http.ResponseWriter, *http.Request) error { return errors.New("boom") }
	})

	rec := serve(t, r, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")

	rec = serve(t, r, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMux_MiddlewareOrderAndScope(t *testing.T) {
	t.Parallel()

	var calls []string
	mw := func(name string) handler.Middleware[*router.Context] {
		return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
			return func(ctx *router.Context) handler.Response {
				calls = append(calls, name)
				return next(ctx)
			}
		}
	}

	r := router.New[*router.Context]()
	r.Use(mw("root"))
	r.Route("/api", func(api router.Router[*router.Context]) {
		api.Use(mw("api"))
		api.Get("/ping", func(*router.Context) handler.Response { return text("pong") })
	})
	r.Get("/plain", func(*router.Context) handler.Response { return text("plain") })

	rec := serve(t, r, http.MethodGet, "/api/ping")
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, []string{"root", "api"}, calls)

	calls = nil
	serve(t, r, http.MethodGet, "/plain")
	assert.Equal(t, []string{"root"}, calls)
}

func TestMux_WithAndGroupDoNotLeak(t *testing.T) {
	t.Parallel()

	blocked := func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(*router.Context) handler.Response {
			return func(w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusForbidden)
				return nil
			}
		}
	}

	r := router.New[*router.Context]()
	r.With(blocked).Get("/admin", func(*router.Context) handler.Response { return text("secret") })
	r.Group(func(g router.Router[*router.Context]) {
		g.Get("/open", func(*router.Context) handler.Response { return text("open") })
	})

	assert.Equal(t, http.StatusForbidden, serve(t, r, http.MethodGet, "/admin").Code)
	assert.Equal(t, "open", serve(t, r, http.MethodGet, "/open").Body.String())
}

func TestMux_PanicRecovered(t *testing.T) {
	t.Parallel()

	var perr router.PanicError
	r := router.New(router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
		require.ErrorAs(t, err, &perr)
		ctx.ResponseWriter().WriteHeader(http.StatusInternalServerError)
	}))
	r.Get("/panic", func(*router.Context) handler.Response { panic("kaboom") })

	rec := serve(t, r, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, perr)
	assert.Equal(t, "kaboom", perr.Value())
	assert.NotEmpty(t, perr.Stack())
}

func TestMux_SetValueVisibleToResponse(t *testing.T) {
	t.Parallel()

	type key struct{}
	r := router.New[*router.Context]()
	r.Use(func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			ctx.SetValue(key{}, "v1")
			return next(ctx)
		}
	})
	r.Get("/v", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, req *http.Request) error {
			_, err := w.Write([]byte(req.Context().Value(key{}).(string)))
			return err
		}
	})

	assert.Equal(t, "v1", serve(t, r, http.MethodGet, "/v").Body.String())
}

func TestMux_Routes(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Route("/api", func(api router.Router[*router.Context]) {
		api.Post("/briefs", func(*router.Context) handler.Response { return text("") })
	})
	r.Handle("/health/", func(*router.Context) handler.Response { return text("") })

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, router.Route{Method: http.MethodPost, Pattern: "/api/briefs"}, routes[0])
	assert.Equal(t, "/health/", routes[1].Pattern)
	assert.True(t, strings.HasPrefix(routes[1].Pattern, "/"))
}

func TestMux_InvalidPatternPanics(t *testing.T) {
	t.Parallel()
	r := router.New[*router.Context]()
	assert.Panics(t, func() {
		r.Get("no-slash", func(*router.Context) handler.Response { return text("") })
	})
	assert.Panics(t, func() { r.Get("/nil", nil) })
}
