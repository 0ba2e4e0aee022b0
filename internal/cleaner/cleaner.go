// Package cleaner prunes Maven snapshot repositories: it keeps the files of
// each artifact's most recently deployed snapshot version and deletes the rest.
//
// A pass runs in three steps:
//
//  1. Collector lists the bucket and groups every maven-metadata.xml by
//     groupId:artifactId.
//  2. Evaluate picks the latest snapshot version per artifact and derives a
//     Decision (key prefixes to keep, version directories to evict).
//  3. Executor re-lists each artifact directory and deletes, one batch per
//     page, every object the Decision does not keep.
//
// Artifacts are handled one at a time in coordinate order. A failure on one
// artifact is recorded and the pass moves on, unless FailFast is set.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/s3-maven-cleaner/internal/maven"
	"github.com/mattjoyce/s3-maven-cleaner/internal/metrics"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

const (
	DefaultPrefix   = "snapshot"
	DefaultPageSize = 500
)

// Options tune a pass.
type Options struct {
	// Prefix limits the metadata scan.
	Prefix   string
	PageSize int
	DryRun   bool
	// FailFast stops the pass at the first failing artifact.
	FailFast bool
}

// Artifact outcomes reported in ArtifactResult.Outcome and metrics.
const (
	OutcomePruned     = "pruned"
	OutcomeIncomplete = "incomplete"
	OutcomeFailed     = "failed"
)

// ArtifactResult is the outcome for one artifact.
type ArtifactResult struct {
	Coordinate    maven.Coordinate `json:"coordinate"`
	Directory     string           `json:"directory"`
	Outcome       string           `json:"outcome"`
	LatestVersion string           `json:"latest_version,omitempty"`
	Fingerprint   string           `json:"fingerprint,omitempty"`
	Evicted       []string         `json:"evicted_versions,omitempty"`
	Listed        int              `json:"listed"`
	Kept          int              `json:"kept"`
	Deleted       []string         `json:"deleted,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// Report describes a whole pass.
type Report struct {
	RunID      string           `json:"run_id"`
	DryRun     bool             `json:"dry_run"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Scanned    int              `json:"scanned"`
	Artifacts  []ArtifactResult `json:"artifacts"`
}

// DeletedCount totals deleted (or would-be deleted) keys.
func (r *Report) DeletedCount() int {
	n := 0
	for _, a := range r.Artifacts {
		n += len(a.Deleted)
	}
	return n
}

// Cleaner runs passes against one store.
type Cleaner struct {
	store   objectstore.Store
	opts    Options
	metrics metrics.Recorder
	logger  *slog.Logger
}

// New creates a Cleaner. Zero option fields take defaults.
func New(store objectstore.Store, opts Options, rec metrics.Recorder, logger *slog.Logger) *Cleaner {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Cleaner{store: store, opts: opts, metrics: rec, logger: logger}
}

type runIDKey struct{}

// WithRunID returns a context that makes Clean use id as its run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id set by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Clean runs one pass. The returned report is non-nil even on error and
// lists every artifact processed before the pass stopped.
func (c *Cleaner) Clean(ctx context.Context) (*Report, error) {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	report := &Report{
		RunID:     runID,
		DryRun:    c.opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	logger := c.logger.With("run_id", report.RunID)
	logger.Info("clean started", "prefix", c.opts.Prefix, "dry_run", c.opts.DryRun)

	err := c.run(ctx, logger, report)

	report.FinishedAt = time.Now().UTC()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	c.metrics.ObserveRun(status, report.FinishedAt.Sub(report.StartedAt).Seconds())

	logger.Info("clean finished",
		"status", status,
		"artifacts", len(report.Artifacts),
		"scanned", report.Scanned,
		"deleted", report.DeletedCount(),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, err
}

func (c *Cleaner) run(ctx context.Context, logger *slog.Logger, report *Report) error {
	collection, err := NewCollector(c.store, c.opts.Prefix, c.opts.PageSize, logger).Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect metadata: %w", err)
	}
	report.Scanned = collection.Scanned
	c.metrics.AddObjectsScanned(collection.Scanned)

	executor := NewExecutor(c.store, c.opts.PageSize, c.opts.DryRun, c.metrics, logger)
	catalog := collection.Catalog

	var errs []error
	for _, coord := range catalog.Coordinates() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := c.cleanArtifact(ctx, logger, executor, catalog, catalog[coord])
		report.Artifacts = append(report.Artifacts, res)
		c.metrics.IncArtifacts(res.Outcome)
		if err == nil {
			continue
		}

		logger.Error("artifact failed", "artifact", coord, "error", err)
		errs = append(errs, &ArtifactError{Coordinate: coord, Err: err})
		if c.opts.FailFast {
			break
		}
	}
	return errors.Join(errs...)
}

func (c *Cleaner) cleanArtifact(ctx context.Context, logger *slog.Logger, executor *Executor, catalog Catalog, set *ArtifactSet) (ArtifactResult, error) {
	res := ArtifactResult{Coordinate: set.Coordinate, Directory: set.Directory}

	decision, err := Evaluate(set)
	if err != nil {
		res.Outcome = OutcomeIncomplete
		res.Error = err.Error()
		return res, err
	}
	decision.ProtectedPrefixes = catalog.nestedDirectories(set.Coordinate, set.Directory)

	res.LatestVersion = decision.LatestVersion
	res.Fingerprint = decision.Fingerprint
	res.Evicted = decision.BlacklistedSuffixes

	logger.Debug("retention decision",
		"artifact", decision.Coordinate,
		"latest", decision.LatestVersion,
		"whitelist", decision.WhitelistedPrefixes,
		"blacklist", decision.BlacklistedSuffixes,
		"protected", decision.ProtectedPrefixes,
		"fingerprint", decision.Fingerprint,
	)

	pruned, err := executor.Prune(ctx, decision)
	if pruned != nil {
		res.Listed = pruned.Listed
		res.Kept = pruned.Kept
		res.Deleted = pruned.Deleted
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res, err
	}
	res.Outcome = OutcomePruned
	return res, nil
}
