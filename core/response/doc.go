// Package response builds handler.Response values and renders errors.
//
// Handlers return closures; nothing is written until the router renders them:
//
//	func getMatches(ctx *router.Context) handler.Response {
//		matches, err := svc.Matches(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(matches)
//	}
//
// Errors reach the router's ErrorHandler. JSONErrorHandler converts them with
// ToHTTPError: HTTPError values pass through, errors implementing
// StatusCode() int map to the predefined error for that status, and anything
// else becomes a 500 without leaking the cause. Errors implementing
// Details() map[string]any (validator.ValidationErrors) add per-field details.
package response
