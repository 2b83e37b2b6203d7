// Package binder decodes HTTP request data into structs.
//
// A Binder is a plain function, so handlers pick the source they need:
//
//	var req CreateBriefRequest
//	if err := binder.JSON()(ctx.Request(), &req); err != nil {
//		return response.Error(err)
//	}
//
// # JSON
//
// JSON requires an application/json content type, limits the body to
// DefaultMaxJSONSize and rejects unknown fields and trailing data. Control
// characters are stripped from string fields. JSONWithLimit takes a custom
// limit for larger payloads.
//
// # Query
//
// Query fills fields tagged `query:"name"`:
//
//	type ListFilter struct {
//		Status []string `query:"status"` // ?status=a&status=b or ?status=a,b
//		Limit  int      `query:"limit"`
//		Token  string   `query:"-"`
//	}
//
// # Errors
//
// Binding errors carry their HTTP status (400, 413 or 415), so they render
// correctly through response.JSONErrorHandler without extra mapping.
// ErrBodyTooLarge is also used by handlers that read bodies themselves.
package binder
