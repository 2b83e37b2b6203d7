// Package taskstore is the Postgres backend of core/queue.
//
// Tasks live in queue_tasks and dead letters in queue_tasks_dlq. Workers
// claim with SELECT ... FOR UPDATE SKIP LOCKED, so several API instances can
// share one queue, and a task whose worker died becomes claimable again once
// its lock expires.
//
//	if err := taskstore.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//	svc, err := queue.NewServiceFromConfig(cfg, taskstore.New(pool), log)
package taskstore
