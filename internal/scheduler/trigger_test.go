package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
	"github.com/mattjoyce/s3-maven-cleaner/internal/scheduler/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// blockingRunner holds each Clean until release is closed.
type blockingRunner struct {
	started chan string
	release chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan string, 4), release: make(chan struct{})}
}

func (b *blockingRunner) Clean(ctx context.Context) (*cleaner.Report, error) {
	b.started <- cleaner.RunIDFromContext(ctx)
	<-b.release
	return &cleaner.Report{RunID: cleaner.RunIDFromContext(ctx)}, nil
}

func TestTriggerRunPassesRunID(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)

	var seen string
	runner.EXPECT().Clean(gomock.Any()).DoAndReturn(func(ctx context.Context) (*cleaner.Report, error) {
		seen = cleaner.RunIDFromContext(ctx)
		return &cleaner.Report{RunID: seen, Artifacts: []cleaner.ArtifactResult{{Deleted: []string{"a", "b"}}}}, nil
	})

	tr := NewTrigger(runner, 0, testLogger())
	report, err := tr.Run(context.Background(), "cli")
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, report.RunID)

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, seen, last.RunID)
	assert.Equal(t, "cli", last.Source)
	assert.Equal(t, 2, last.Deleted)
	assert.Empty(t, last.Error)
	assert.False(t, tr.Busy())
}

func TestTriggerRecordsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	boom := errors.New("boom")
	runner.EXPECT().Clean(gomock.Any()).Return(&cleaner.Report{}, boom)

	tr := NewTrigger(runner, 0, testLogger())
	_, err := tr.Run(context.Background(), "schedule")
	assert.ErrorIs(t, err, boom)

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "boom", last.Error)
}

func TestTriggerAppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Clean(gomock.Any()).DoAndReturn(func(ctx context.Context) (*cleaner.Report, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "expected a deadline")
		return &cleaner.Report{}, nil
	})

	_, err := NewTrigger(runner, time.Minute, testLogger()).Run(context.Background(), "cli")
	require.NoError(t, err)
}

func TestTriggerRejectsOverlappingRuns(t *testing.T) {
	runner := newBlockingRunner()
	tr := NewTrigger(runner, 0, testLogger())

	runID, err := tr.Start(context.Background(), "webhook")
	require.NoError(t, err)
	assert.Equal(t, runID, <-runner.started)
	assert.True(t, tr.Busy())

	_, err = tr.Start(context.Background(), "webhook")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = tr.Run(context.Background(), "schedule")
	assert.ErrorIs(t, err, ErrBusy)

	close(runner.release)
	tr.Wait()
	assert.False(t, tr.Busy())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, runID, last.RunID)

	_, err = tr.Run(context.Background(), "schedule")
	assert.NoError(t, err)
}

func TestTriggerLastEmpty(t *testing.T) {
	_, ok := NewTrigger(newBlockingRunner(), 0, testLogger()).Last()
	assert.False(t, ok)
}
