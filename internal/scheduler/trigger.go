package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a clean run is already in progress")

// Status describes the most recent finished run.
type Status struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Deleted    int       `json:"deleted"`
	Error      string    `json:"error,omitempty"`
}

// Trigger serializes runs coming from the schedule and the webhook. At most
// one pass is in flight; overlapping requests get ErrBusy.
type Trigger struct {
	runner  Runner
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	last    *Status
	wg      sync.WaitGroup
}

// NewTrigger creates a Trigger. A positive timeout bounds every run.
func NewTrigger(runner Runner, timeout time.Duration, logger *slog.Logger) *Trigger {
	return &Trigger{
		runner:  runner,
		timeout: timeout,
		logger:  logger.With("component", "trigger"),
	}
}

// Run executes one pass synchronously.
func (t *Trigger) Run(ctx context.Context, source string) (*cleaner.Report, error) {
	if !t.acquire() {
		return nil, ErrBusy
	}
	return t.run(ctx, uuid.NewString(), source)
}

// Start begins a pass in the background and returns its run id.
func (t *Trigger) Start(ctx context.Context, source string) (string, error) {
	if !t.acquire() {
		return "", ErrBusy
	}
	runID := uuid.NewString()
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_, _ = t.run(ctx, runID, source)
	}()
	return runID, nil
}

// Wait blocks until every background run has returned.
func (t *Trigger) Wait() {
	t.wg.Wait()
}

// Busy reports whether a run is in flight.
func (t *Trigger) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Last returns the status of the most recent finished run.
func (t *Trigger) Last() (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Status{}, false
	}
	return *t.last, true
}

func (t *Trigger) acquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.running = true
	return true
}

func (t *Trigger) run(ctx context.Context, runID, source string) (*cleaner.Report, error) {
	status := &Status{RunID: runID, Source: source, StartedAt: time.Now().UTC()}
	defer func() {
		status.FinishedAt = time.Now().UTC()
		t.mu.Lock()
		t.running = false
		t.last = status
		t.mu.Unlock()
	}()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	ctx = cleaner.WithRunID(ctx, runID)

	t.logger.Info("run triggered", "run_id", runID, "source", source)
	report, err := t.runner.Clean(ctx)
	if report != nil {
		status.Deleted = report.DeletedCount()
	}
	if err != nil {
		status.Error = err.Error()
		t.logger.Error("run failed", "run_id", runID, "source", source, "error", err)
		return report, err
	}
	return report, nil
}
