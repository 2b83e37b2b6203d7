package queue

// Storage is everything a Service needs from a backend: task creation for
// the Enqueuer, claiming and settlement for the Worker and idempotency
// lookups for the Scheduler. MemoryStorage implements it for development
// and tests; internal/taskstore implements it on Postgres.
type Storage interface {
	EnqueuerRepository
	WorkerRepository
	SchedulerRepository
}
