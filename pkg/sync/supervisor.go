package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
)

const defaultTaskTimeout = 2 * time.Minute

// Supervisor tracks background persistence tasks so their completion and
// failures stay observable after the HTTP response has been sent, and so
// shutdown can drain them.
type Supervisor struct {
	wg          sync.WaitGroup
	logger      *zap.Logger
	taskTimeout time.Duration
}

// NewSupervisor creates a supervisor for background tasks.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{
		logger:      logger,
		taskTimeout: defaultTaskTimeout,
	}
}

// Go runs fn in the background with its own timeout-bounded context,
// detached from the request that spawned it. Failures are logged and
// counted, never surfaced to the caller.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			metrics.BackgroundTasks.WithLabelValues("failure").Inc()
			s.logger.Error("background task failed",
				zap.String("task", name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		metrics.BackgroundTasks.WithLabelValues("success").Inc()
		s.logger.Debug("background task completed",
			zap.String("task", name),
			zap.Duration("duration", time.Since(start)),
		)
	}()
}

// Wait blocks until all in-flight tasks finish. Called during shutdown.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
