package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// lifecycle is the start/stop bookkeeping shared by Worker, Scheduler and
// MemoryStorage. Work units are tracked with a WaitGroup so Stop can wait
// for them up to the shutdown timeout.
type lifecycle struct {
	mu              sync.RWMutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// begin derives the run context. It fails when the component is already running.
func (l *lifecycle) begin(ctx context.Context) (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return nil, ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	return runCtx, nil
}

// running reports whether begin was called without a matching stop.
func (l *lifecycle) running() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cancel != nil
}

// track registers a unit of work. It returns false once stop has been
// called; otherwise the caller must call done.
func (l *lifecycle) track() (done func(), ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.cancel == nil {
		return nil, false
	}
	l.wg.Add(1)
	return l.wg.Done, true
}

// stop cancels the run context and waits for tracked work.
func (l *lifecycle) stop(component string) error {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(l.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		l.logger.Info(component + " stopped")
		return nil
	case <-timer.C:
		l.logger.Warn(component+" shutdown timeout exceeded, abandoning in-flight work",
			slog.Duration("timeout", l.shutdownTimeout))
		return fmt.Errorf("%w: %s after %s", ErrShutdownTimeout, component, l.shutdownTimeout)
	}
}

// runFunc adapts a blocking start and a stop into an errgroup function.
// Cancellation of ctx is a clean exit.
func runFunc(ctx context.Context, start func(context.Context) error, stop func() error) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- start(ctx) }()

		select {
		case <-ctx.Done():
			_ = stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
