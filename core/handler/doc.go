// Package handler defines the request-handling contract shared by the router,
// middleware and response packages.
//
// Handlers are generic over the request context and return a Response
// closure instead of writing to the ResponseWriter directly:
//
//	func getBrief(ctx *router.Context) handler.Response {
//		brief, err := svc.Brief(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(brief)
//	}
//
// Middleware wraps a HandlerFunc and may decorate the returned Response, for
// example to set headers after the inner handler ran.
package handler
