package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/s3-maven-cleaner/internal/app"
	"github.com/mattjoyce/s3-maven-cleaner/internal/lock"
	"github.com/mattjoyce/s3-maven-cleaner/internal/log"
	"github.com/mattjoyce/s3-maven-cleaner/internal/metrics"
	"github.com/mattjoyce/s3-maven-cleaner/internal/scheduler"
	"github.com/mattjoyce/s3-maven-cleaner/internal/webhook"
)

// serveContext is replaced in tests to stop serve without a signal.
var serveContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if !cfg.Schedule.Enabled && !cfg.Webhook.Enabled {
		fmt.Fprintln(os.Stderr, "Nothing to serve: enable schedule or webhook in the config")
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("s3-maven-cleaner starting", "version", version, "config", cfg.Path, "digest", cfg.Digest)

	pidLock, err := lock.Acquire(cfg.Lock.Path)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", cfg.Lock.Path, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLock.Path())

	ctx, cancel := serveContext()
	defer cancel()

	var rec metrics.Recorder
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom := metrics.NewProm(cfg.Metrics.Namespace)
		rec = prom
		metricsHandler = prom.Handler()
	}

	a, err := app.Build(ctx, cfg, nil, rec, log.WithComponent("cleaner"))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return 1
	}
	defer a.Close()

	trigger := scheduler.NewTrigger(a.Cleaner, cfg.Cleaner.Timeout, log.Get())
	// In-flight passes finish before the store is closed.
	defer trigger.Wait()

	sched := scheduler.New(trigger, cfg.Schedule, log.Get())
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return 1
	}
	defer sched.Stop()
	if next := sched.NextRun(); next != nil {
		logger.Info("scheduler enabled", "cron", cfg.Schedule.Cron, "next_run", next.UTC())
	}

	errCh := make(chan error, 1)
	if cfg.Webhook.Enabled || cfg.Metrics.Enabled {
		webhookConfig, err := webhook.FromGlobalConfig(cfg.Webhook)
		if err != nil {
			logger.Error("failed to configure webhook", "error", err)
			return 1
		}
		srv := webhook.New(webhookConfig, trigger, metricsHandler, log.Get())
		go func() {
			if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("webhook: %w", err)
			}
		}()
	}

	logger.Info("s3-maven-cleaner running (press Ctrl+C to stop)")

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("s3-maven-cleaner stopped")
	return 0
}
