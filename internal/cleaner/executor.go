package cleaner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattjoyce/s3-maven-cleaner/internal/metrics"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

// PruneResult summarizes what the executor did for one artifact.
type PruneResult struct {
	Listed  int
	Kept    int
	Deleted []string
	DryRun  bool
}

// Executor deletes every object of an artifact a Decision does not keep.
type Executor struct {
	store    objectstore.Store
	pageSize int
	dryRun   bool
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewExecutor creates an Executor. In dry-run mode nothing is deleted.
func NewExecutor(store objectstore.Store, pageSize int, dryRun bool, rec metrics.Recorder, logger *slog.Logger) *Executor {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Executor{
		store:    store,
		pageSize: pageSize,
		dryRun:   dryRun,
		metrics:  rec,
		logger:   logger.With("component", "executor"),
	}
}

// Keep reports whether key survives d.
//
// Directory markers (keys ending in "/") are kept unless they end with a
// blacklisted suffix. Regular files are kept only if a whitelisted prefix
// matches them.
func Keep(d *Decision, key string) bool {
	for _, p := range d.ProtectedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	if strings.HasSuffix(key, "/") {
		for _, s := range d.BlacklistedSuffixes {
			if strings.HasSuffix(key, s) {
				return false
			}
		}
		return true
	}
	for _, p := range d.WhitelistedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Prune lists the artifact directory page by page and deletes what Keep
// rejects, with one batched call per page.
func (e *Executor) Prune(ctx context.Context, d *Decision) (*PruneResult, error) {
	logger := e.logger.With("artifact", d.Coordinate, "directory", d.Directory)
	res := &PruneResult{DryRun: e.dryRun}
	var failed []error

	err := objectstore.Walk(ctx, e.store, childPrefix(d.Directory), e.pageSize, func(page *objectstore.ListPage) error {
		var doomed []string
		for _, obj := range page.Objects {
			res.Listed++
			if Keep(d, obj.Key) {
				res.Kept++
				continue
			}
			doomed = append(doomed, obj.Key)
		}
		if len(doomed) == 0 {
			return nil
		}

		if e.dryRun {
			for _, k := range doomed {
				logger.Info("would delete", "key", k)
			}
			res.Deleted = append(res.Deleted, doomed...)
			e.metrics.AddObjectsDeleted(len(doomed), true)
			return nil
		}

		for start := 0; start < len(doomed); start += objectstore.MaxDeleteBatch {
			end := min(start+objectstore.MaxDeleteBatch, len(doomed))
			out, err := e.store.DeleteObjects(ctx, doomed[start:end])
			if err != nil {
				return err
			}
			for _, k := range out.Deleted {
				logger.Info("deleted", "key", k)
			}
			for _, f := range out.Failed {
				logger.Error("delete refused", "key", f.Key, "code", f.Code, "message", f.Message)
				failed = append(failed, fmt.Errorf("delete %s", f))
			}
			res.Deleted = append(res.Deleted, out.Deleted...)
			e.metrics.AddObjectsDeleted(len(out.Deleted), false)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if len(failed) > 0 {
		return res, &objectstore.TransportError{Op: "delete", Key: d.Directory, Err: errors.Join(failed...)}
	}
	return res, nil
}
