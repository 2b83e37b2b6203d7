// Package middleware holds the HTTP middleware used by the API router.
//
//	r := router.New(
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.ClientIP[*router.Context](),
//			middleware.Logging[*router.Context](log),
//			middleware.CORS[*router.Context](corsCfg),
//		),
//	)
//
// Panics are recovered by the router itself and reach the error handler as
// router.PanicError.
package middleware
