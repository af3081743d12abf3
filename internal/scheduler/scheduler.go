package scheduler

import (
	"context"
	"sync"
	"time"

	"polyglot/internal/logger"
)

// Sweeper closes sessions that have been idle too long.
type Sweeper interface {
	SweepIdle(ctx context.Context) (int, error)
}

// Scheduler runs the idle-session sweep on a fixed interval.
type Scheduler struct {
	sweeper    Sweeper
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current sweep
	mu         sync.Mutex         // protects cancelFunc
}

func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "sweep", "resource", "session", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

// Stop cancels a running sweep and waits for the loop to exit. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		logger.Info("scheduler stopped", "module", "scheduler", "action", "sweep", "resource", "session", "result", "ok")
	})
}

// Run blocks until ctx is done, then stops the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	s.Stop()
	return nil
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	closed, err := s.sweeper.SweepIdle(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("session sweep cancelled", "module", "scheduler", "action", "sweep", "resource", "session", "result", "cancelled", "closed", closed)
			return
		}
		logger.Error("session sweep failed", "module", "scheduler", "action", "sweep", "resource", "session", "result", "failed", "error", err)
		return
	}
	logger.Debug("session sweep completed", "module", "scheduler", "action", "sweep", "resource", "session", "result", "ok", "closed", closed)
}
