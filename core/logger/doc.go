// Package logger builds log/slog loggers and provides attribute helpers used
// across the service.
//
// Create a logger per environment:
//
//	log := logger.New(logger.WithProduction("onedesigner"))
//	log := logger.New(logger.WithDevelopment("onedesigner"), logger.WithOutput(os.Stderr))
//
// Request-scoped values are attached automatically with context extractors:
//
//	log := logger.New(
//		logger.WithProduction("onedesigner"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(ctx, "brief submitted") // includes request_id
//
// Attribute helpers return an empty attribute for zero values, so they are
// safe to pass unconditionally:
//
//	log.ErrorContext(ctx, "email delivery failed",
//		logger.Component("email"),
//		logger.Email(params.SendTo),
//		logger.Attempt(attempt),
//		logger.Error(err),
//	)
//
// Email addresses are masked before they are logged.
package logger
