// Package app assembles the OneDesigner backend from its configuration.
//
// New picks storage from the environment: with DATABASE_URL set the
// marketplace and the task queue live in Postgres (migrations run on start
// unless PG_MIGRATE_ON_START=false), otherwise both are kept in memory.
// REDIS_URL moves rate limit buckets to Redis so several instances share
// them. EMAIL_PROVIDER selects resend, postmark, smtp or dev; only the
// chosen provider's credentials are read.
//
// Run serves the HTTP API and processes background tasks until the
// context is cancelled:
//
//	cfg, err := app.LoadConfig()
//	if err != nil {
//		return err
//	}
//	a, err := app.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//	return a.Run(ctx)
//
// Two periodic tasks are scheduled: expire_project_requests, which closes
// project requests designers did not answer in time, and, on Postgres,
// purge_completed_tasks, which removes finished queue tasks older than
// QUEUE_TASK_RETENTION.
package app
