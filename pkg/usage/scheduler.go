package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler flushes the tracker to its backend on a cron schedule, so
// usage totals are durable without a write on every request.
type Scheduler struct {
	tracker  *Tracker
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a flush scheduler. schedule uses standard cron
// syntax (e.g. "*/5 * * * *" for every five minutes). An empty schedule
// disables the scheduler.
func NewScheduler(tracker *Tracker, schedule string) *Scheduler {
	return &Scheduler{
		tracker:  tracker,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "usage.scheduler"),
	}
}

// Start begins scheduled flushing. The scheduler stops itself when the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("usage flush schedule not configured, skipping scheduler")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.tracker.Flush(ctx); err != nil {
			s.logger.Error("scheduled usage flush failed", "error", err)
			return
		}
		s.logger.Debug("usage totals flushed")
	})
	if err != nil {
		return fmt.Errorf("invalid usage flush schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("usage flush scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled flushing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("usage flush scheduler stopped")
}
