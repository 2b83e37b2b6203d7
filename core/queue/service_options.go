package queue

import "log/slog"

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}

// WithWorkerOptions rebuilds the worker with opts.
func WithWorkerOptions(opts ...WorkerOption) ServiceOption {
	return func(s *Service) (err error) {
		s.worker, err = NewWorker(s.storage, opts...)
		return err
	}
}

// WithSchedulerOptions rebuilds the scheduler with opts.
func WithSchedulerOptions(opts ...SchedulerOption) ServiceOption {
	return func(s *Service) (err error) {
		s.scheduler, err = NewScheduler(s.storage, opts...)
		return err
	}
}

// WithEnqueuerOptions rebuilds the enqueuer with opts.
func WithEnqueuerOptions(opts ...EnqueuerOption) ServiceOption {
	return func(s *Service) (err error) {
		s.enqueuer, err = NewEnqueuer(s.storage, opts...)
		return err
	}
}

// WithHandlers registers handlers on the worker.
func WithHandlers(hs ...Handler) ServiceOption {
	return func(s *Service) error {
		s.worker.RegisterHandlers(hs...)
		return nil
	}
}
