// Command s3-maven-cleaner-lambda runs one cleaning pass per invocation. The
// bucket and region come from the maven_snapshots_s3_bucket and
// maven_snapshots_s3_region environment variables.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mattjoyce/s3-maven-cleaner/internal/app"
	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
	"github.com/mattjoyce/s3-maven-cleaner/internal/log"
)

var openStore app.StoreOpener = app.OpenStore

func main() {
	lambda.Start(handler)
}

// handler never fails the invocation; errors are logged so a scheduled
// trigger is not retried into a partially cleaned bucket.
func handler(ctx context.Context) error {
	_, _ = clean(ctx)
	return nil
}

func clean(ctx context.Context) (*cleaner.Report, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Setup("info", "json")
		log.Error("invalid environment", "error", err)
		return nil, err
	}
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("lambda")

	a, err := app.Build(ctx, cfg, openStore, nil, log.WithComponent("cleaner"))
	if err != nil {
		logger.Error("failed to open store", "bucket", cfg.Store.Bucket, "error", err)
		return nil, err
	}
	defer a.Close()

	report, err := a.Cleaner.Clean(ctx)
	if err != nil {
		logger.Error("clean failed", "run_id", report.RunID, "bucket", cfg.Store.Bucket, "error", err)
		return report, err
	}
	logger.Info("clean complete",
		"run_id", report.RunID,
		"bucket", cfg.Store.Bucket,
		"artifacts", len(report.Artifacts),
		"deleted", report.DeletedCount(),
	)
	return report, nil
}
