package taskstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/integration/database/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsTable keeps the version history of the queue schema.
const MigrationsTable = "queue_migrations"

// Migrate creates or upgrades the queue tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	return pg.Migrate(ctx, pool, sub, MigrationsTable, log)
}

// Store is a Postgres queue.Storage. Expired locks are reclaimed by
// ClaimTask, so no background manager is needed.
type Store struct {
	pool    *pgxpool.Pool
	backoff queue.Backoff
	now     func() time.Time
}

var _ queue.Storage = (*Store)(nil)

type Option func(*Store)

// WithBackoff sets the retry policy applied by FailTask.
func WithBackoff(b queue.Backoff) Option {
	return func(s *Store) {
		if b != nil {
			s.backoff = b
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:    pool,
		backoff: queue.DefaultBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const taskColumns = `id, queue, task_type, task_name, payload, status, priority, retry_count,
	max_retries, scheduled_at, locked_until, locked_by, processed_at, error, created_at`

func scanTask(row pgx.Row) (*queue.Task, error) {
	var t queue.Task
	err := row.Scan(&t.ID, &t.Queue, &t.TaskType, &t.TaskName, &t.Payload, &t.Status, &t.Priority,
		&t.RetryCount, &t.MaxRetries, &t.ScheduledAt, &t.LockedUntil, &t.LockedBy, &t.ProcessedAt,
		&t.Error, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *queue.Task) error {
	if t == nil {
		return queue.ErrPayloadNil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO queue_tasks (`+taskColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.Queue, string(t.TaskType), t.TaskName, t.Payload, string(t.Status), int16(t.Priority),
		int16(t.RetryCount), int16(t.MaxRetries), t.ScheduledAt, t.LockedUntil, t.LockedBy, t.ProcessedAt,
		t.Error, t.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", queue.ErrTaskExists, t.ID)
	}
	return err
}

// ClaimTask locks the highest-priority due task in queues. A processing task
// whose lock expired is claimable again. SKIP LOCKED lets several workers
// poll the same table.
func (s *Store) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*queue.Task, error) {
	now := s.now()
	t, err := scanTask(s.pool.QueryRow(ctx,
		`UPDATE queue_tasks SET status = 'processing', locked_until = $3, locked_by = $2
		 WHERE id = (
			SELECT id FROM queue_tasks
			WHERE queue = ANY($1) AND scheduled_at <= $4
			  AND (status = 'pending' OR (status = 'processing' AND locked_until < $4))
			ORDER BY priority DESC, scheduled_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+taskColumns,
		queues, workerID, now.Add(lockDuration), now,
	))
	if pg.IsNotFoundError(err) {
		return nil, queue.ErrNoTaskToClaim
	}
	return t, err
}

func (s *Store) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE queue_tasks SET status = 'completed', processed_at = $2, locked_until = NULL, locked_by = NULL
		 WHERE id = $1 AND status = 'processing'`,
		taskID, s.now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.notProcessing(ctx, taskID)
	}
	return nil
}

// FailTask records a failure. While the retry budget lasts the task goes
// back to pending, delayed by the backoff policy; afterwards it is marked failed.
func (s *Store) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var retries, maxRetries int16
		err := tx.QueryRow(ctx,
			`SELECT retry_count, max_retries FROM queue_tasks
			 WHERE id = $1 AND status = 'processing' FOR UPDATE`, taskID,
		).Scan(&retries, &maxRetries)
		if pg.IsNotFoundError(err) {
			return s.notProcessing(ctx, taskID)
		}
		if err != nil {
			return err
		}

		retries++
		status := queue.TaskStatusPending
		scheduledAt := s.now().Add(s.backoff(int(retries)))
		if retries >= maxRetries {
			status = queue.TaskStatusFailed
		}
		_, err = tx.Exec(ctx,
			`UPDATE queue_tasks
			 SET retry_count = $2, error = $3, status = $4,
			     scheduled_at = CASE WHEN $4 = 'pending' THEN $5 ELSE scheduled_at END,
			     locked_until = NULL, locked_by = NULL
			 WHERE id = $1`,
			taskID, retries, errorMsg, string(status), scheduledAt,
		)
		return err
	})
}

// MoveToDLQ removes the task and stores a dead letter record.
func (s *Store) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, `DELETE FROM queue_tasks WHERE id = $1 RETURNING `+taskColumns, taskID))
		if pg.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, taskID)
		}
		if err != nil {
			return err
		}

		now := s.now()
		msg := ""
		if t.Error != nil {
			msg = *t.Error
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO queue_tasks_dlq (id, task_id, queue, task_type, task_name, payload, priority, error, retry_count, failed_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.New(), t.ID, t.Queue, string(t.TaskType), t.TaskName, t.Payload, int16(t.Priority), msg,
			int16(t.RetryCount), now, now,
		)
		return err
	})
}

func (s *Store) ExtendLock(ctx context.Context, taskID uuid.UUID, d time.Duration) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE queue_tasks SET locked_until = $2 WHERE id = $1 AND status = 'processing'`,
		taskID, s.now().Add(d),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.notProcessing(ctx, taskID)
	}
	return nil
}

// GetPendingTaskByName returns a pending task named taskName, or nil.
func (s *Store) GetPendingTaskByName(ctx context.Context, taskName string) (*queue.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM queue_tasks WHERE task_name = $1 AND status = 'pending' LIMIT 1`, taskName))
	if pg.IsNotFoundError(err) {
		return nil, nil
	}
	return t, err
}

func (s *Store) GetTask(ctx context.Context, taskID uuid.UUID) (*queue.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM queue_tasks WHERE id = $1`, taskID))
	if pg.IsNotFoundError(err) {
		return nil, fmt.Errorf("%w: %s", queue.ErrTaskNotFound, taskID)
	}
	return t, err
}

// ListDLQ returns dead letters, oldest first.
func (s *Store) ListDLQ(ctx context.Context) ([]queue.TasksDlq, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, queue, task_type, task_name, payload, priority, error, retry_count, failed_at, created_at
		 FROM queue_tasks_dlq ORDER BY failed_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (queue.TasksDlq, error) {
		var d queue.TasksDlq
		err := row.Scan(&d.ID, &d.TaskID, &d.Queue, &d.TaskType, &d.TaskName, &d.Payload, &d.Priority,
			&d.Error, &d.RetryCount, &d.FailedAt, &d.CreatedAt)
		return d, err
	})
}

// DeleteCompleted removes tasks completed before cutoff and returns how many.
func (s *Store) DeleteCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM queue_tasks WHERE status = 'completed' AND processed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Healthcheck pings the pool.
func (s *Store) Healthcheck(ctx context.Context) error {
	return pg.Healthcheck(s.pool)(ctx)
}

// notProcessing picks the error for a task that was not in processing state.
func (s *Store) notProcessing(ctx context.Context, taskID uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM queue_tasks WHERE id = $1)`, taskID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, taskID)
	}
	return fmt.Errorf("%w: %s", queue.ErrTaskNotProcessing, taskID)
}
