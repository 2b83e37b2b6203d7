package queue

import "errors"

var (
	ErrRepositoryNil     = errors.New("queue: repository is nil")
	ErrNoTaskToClaim     = errors.New("queue: no task to claim")
	ErrTaskNotFound      = errors.New("queue: task not found")
	ErrTaskExists        = errors.New("queue: task already exists")
	ErrTaskNotProcessing = errors.New("queue: task is not in processing state")
	ErrHandlerNotFound   = errors.New("queue: no handler registered for task")
	ErrNoHandlers        = errors.New("queue: no handlers registered")
	ErrInvalidPriority   = errors.New("queue: priority must be between 0 and 100")
	ErrPayloadNil        = errors.New("queue: payload is nil")

	ErrTaskAlreadyRegistered  = errors.New("queue: periodic task already registered")
	ErrSchedulerNotConfigured = errors.New("queue: scheduler has no periodic tasks")
	ErrSchedulerNotRunning    = errors.New("queue: scheduler is not running")
	ErrNoTasksRegistered      = errors.New("queue: no periodic tasks registered")

	ErrAlreadyStarted    = errors.New("queue: component already started")
	ErrNotStarted        = errors.New("queue: component not started")
	ErrShutdownTimeout   = errors.New("queue: shutdown timeout exceeded")
	ErrHealthcheckFailed = errors.New("queue: healthcheck failed")
	ErrWorkerNotRunning  = errors.New("queue: worker is not running")
	ErrWorkerOverloaded  = errors.New("queue: worker is overloaded")
	ErrStorageNotRunning = errors.New("queue: lock expiration manager is not running")
)
