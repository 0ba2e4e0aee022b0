package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/s3-maven-cleaner/internal/app"
	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
	"github.com/mattjoyce/s3-maven-cleaner/internal/lock"
	"github.com/mattjoyce/s3-maven-cleaner/internal/log"
	"github.com/mattjoyce/s3-maven-cleaner/internal/report"
)

// passFlags are shared by run and plan.
type passFlags struct {
	configPath string
	bucket     string
	region     string
	prefix     string
	logLevel   string
	jsonOut    bool
}

func (p *passFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&p.bucket, "bucket", "", "Override store.bucket")
	fs.StringVar(&p.region, "region", "", "Override store.region")
	fs.StringVar(&p.prefix, "prefix", "", "Override cleaner.prefix")
	fs.StringVar(&p.logLevel, "log-level", "", "Override service.log_level")
	fs.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON")
}

// load reads the config and applies flag overrides.
func (p *passFlags) load() (*config.Config, error) {
	cfg, err := loadConfig(p.configPath)
	if err != nil {
		return nil, err
	}
	if p.bucket != "" {
		cfg.Store.Bucket = p.bucket
	}
	if p.region != "" {
		cfg.Store.Region = p.region
	}
	if p.prefix != "" {
		cfg.Cleaner.Prefix = p.prefix
	}
	if p.logLevel != "" {
		cfg.Service.LogLevel = p.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runClean(args []string) int {
	var pf passFlags
	var dryRun, failFast bool

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	pf.register(fs)
	fs.BoolVar(&dryRun, "dry-run", false, "Report deletions without deleting")
	fs.BoolVar(&failFast, "fail-fast", false, "Stop at the first failing artifact")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := pf.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if dryRun {
		cfg.Cleaner.DryRun = true
	}
	if failFast {
		cfg.Cleaner.FailFast = true
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")

	pidLock, err := lock.Acquire(cfg.Lock.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire lock: %v\n", err)
		return 1
	}
	defer pidLock.Release()
	logger.Debug("acquired PID lock", "path", pidLock.Path())

	return executePass(cfg, report.Options{}, pf.jsonOut)
}

func runPlan(args []string) int {
	var pf passFlags
	var keys bool

	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	pf.register(fs)
	fs.BoolVar(&keys, "keys", false, "List every key that would be deleted")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := pf.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg.Cleaner.DryRun = true

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	return executePass(cfg, report.Options{Keys: keys}, pf.jsonOut)
}

// executePass runs one pass and prints its report. The report is printed
// even when the pass fails so partial progress is visible.
func executePass(cfg *config.Config, opts report.Options, jsonOut bool) int {
	ctx := context.Background()
	if cfg.Cleaner.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Cleaner.Timeout)
		defer cancel()
	}

	a, err := app.Build(ctx, cfg, nil, nil, log.WithComponent("cleaner"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		return 1
	}
	defer a.Close()

	rep, runErr := a.Cleaner.Clean(ctx)

	if jsonOut {
		out, err := report.RenderJSON(rep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(report.Render(rep, opts))
	}

	if runErr != nil {
		log.Error("clean failed", "run_id", rep.RunID, "error", runErr)
		fmt.Fprintf(os.Stderr, "Clean failed: %v\n", runErr)
		return 1
	}
	return 0
}
