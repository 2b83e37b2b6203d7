package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/onedesigner/onedesigner/core/handler"
)

// CORSConfig configures cross-origin access for the browser frontend.
type CORSConfig struct {
	// AllowOrigins lists allowed origins; "*" allows any. Default "*".
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// CORS handles preflight requests and decorates responses with CORS headers.
// Register it as root middleware so preflights for unknown methods still reach it.
func CORS[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Client-ID", "X-Designer-ID", "X-Admin-Token"}
	}
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	allowedOrigin := func(origin string) (string, bool) {
		switch {
		case origin == "":
			return "", false
		case wildcard && !cfg.AllowCredentials:
			return "*", true
		case wildcard || slices.Contains(cfg.AllowOrigins, origin):
			return origin, true
		}
		return "", false
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			req := ctx.Request()
			origin, ok := allowedOrigin(req.Header.Get("Origin"))
			preflight := req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != ""

			if preflight {
				return func(w http.ResponseWriter, r *http.Request) error {
					w.Header().Add("Vary", "Origin")
					if ok {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Set("Access-Control-Allow-Methods", methods)
						w.Header().Set("Access-Control-Allow-Headers", headers)
						if cfg.AllowCredentials {
							w.Header().Set("Access-Control-Allow-Credentials", "true")
						}
						if cfg.MaxAge > 0 {
							w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
						}
					}
					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			resp := next(ctx)
			if !ok {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", expose)
				}
				return resp(w, r)
			}
		}
	}
}
