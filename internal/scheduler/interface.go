package scheduler

import (
	"context"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
)

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks github.com/mattjoyce/s3-maven-cleaner/internal/scheduler Runner

// Runner executes one cleaning pass. *cleaner.Cleaner satisfies it.
type Runner interface {
	Clean(ctx context.Context) (*cleaner.Report, error)
}
