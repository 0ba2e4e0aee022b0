// Package scheduler runs cleaning passes on a cron schedule and serializes
// them with passes requested over the webhook.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
)

// Scheduler runs the trigger at scheduled times using cron syntax.
type Scheduler struct {
	trigger *Trigger
	cfg     config.ScheduleConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// New creates a scheduler for cfg.
func New(trigger *Trigger, cfg config.ScheduleConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		trigger: trigger,
		cfg:     cfg,
		cron:    cron.New(),
		logger:  logger.With("component", "scheduler"),
	}
}

// Start registers the cron entry and starts the scheduler.
//
// Common expressions:
//   - "@daily"       - Midnight every day
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//
// A disabled schedule is not an error; the scheduler just does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		s.logger.Info("schedule not enabled, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Cron); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Cron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Cron, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule cleaning: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "cron", s.cfg.Cron, "run_on_start", s.cfg.RunOnStart)

	if s.cfg.RunOnStart {
		if _, err := s.trigger.Start(ctx, "startup"); err != nil {
			s.logger.Warn("startup run skipped", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	// Failures are logged by the trigger.
	if _, err := s.trigger.Run(ctx, "schedule"); errors.Is(err, ErrBusy) {
		s.logger.Warn("scheduled run skipped, previous run still in progress")
	}
}

// Stop stops the scheduler and waits for a running pass to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or nil if nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
