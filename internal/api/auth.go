package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/response"
	"github.com/onedesigner/onedesigner/core/router"
)

// Identity headers. Authentication happens in front of this service, which
// trusts the headers set by the gateway.
const (
	HeaderClientID   = "X-Client-ID"
	HeaderDesignerID = "X-Designer-ID"
	HeaderAdminToken = "X-Admin-Token"
)

func headerID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func clientID(ctx *router.Context) (uuid.UUID, error) {
	id, ok := headerID(ctx.Request(), HeaderClientID)
	if !ok {
		return uuid.Nil, errMissingClient
	}
	return id, nil
}

func designerID(ctx *router.Context) (uuid.UUID, error) {
	id, ok := headerID(ctx.Request(), HeaderDesignerID)
	if !ok {
		return uuid.Nil, errMissingDesigner
	}
	return id, nil
}

func pathID(ctx *router.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// adminOnly rejects requests without the configured admin token.
func adminOnly(token string) handler.Middleware[*router.Context] {
	return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			got := ctx.Request().Header.Get(HeaderAdminToken)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return response.Error(errAdminOnly)
			}
			return next(ctx)
		}
	}
}
