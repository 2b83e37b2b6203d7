// Package health serves liveness and readiness checks.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//		health.Check{Name: "queue", Fn: queueSvc.Healthcheck},
//	))
//
// Readiness runs every check concurrently under a timeout and reports each
// result, answering 503 when any of them fails.
package health
