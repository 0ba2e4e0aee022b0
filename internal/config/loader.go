package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvBucket = "maven_snapshots_s3_bucket"
	EnvRegion = "maven_snapshots_s3_region"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. Keys missing from the
// file keep their Defaults value.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", absPath, err)
	}
	cfg.Path = absPath
	cfg.Digest = Digest(data)

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config from Defaults and the bucket and region
// environment variables used by the event handler. Both variables are
// required; there is no fallback target.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	bucket, err := requiredEnv("store.bucket", EnvBucket)
	if err != nil {
		return nil, err
	}
	region, err := requiredEnv("store.region", EnvRegion)
	if err != nil {
		return nil, err
	}
	cfg.Store.Backend = BackendS3
	cfg.Store.Bucket = bucket
	cfg.Store.Region = region

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Service.LogLevel = v
	}
	if v, ok := os.LookupEnv("DRY_RUN"); ok {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DRY_RUN: %w", err)
		}
		cfg.Cleaner.DryRun = dry
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// requiredEnv returns the trimmed value of name, or an error naming field
// when it is unset or blank.
func requiredEnv(field, name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", fmt.Errorf("invalid configuration: %s: environment variable %s is not set", field, name)
	}
	return v, nil
}

// applyDefaults normalizes the log settings and fills fields a file
// explicitly blanked.
func applyDefaults(cfg *Config) {
	def := Defaults()
	cfg.Service.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Service.LogLevel))
	cfg.Service.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Service.LogFormat))
	if cfg.Service.Name == "" {
		cfg.Service.Name = def.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = def.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = def.Service.LogFormat
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = def.Store.Backend
	}
	if cfg.Cleaner.PageSize == 0 {
		cfg.Cleaner.PageSize = def.Cleaner.PageSize
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = def.Schedule.Cron
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = def.Webhook.Path
	}
	if cfg.Webhook.SignatureHeader == "" {
		cfg.Webhook.SignatureHeader = def.Webhook.SignatureHeader
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = def.Metrics.Namespace
	}
	if cfg.Lock.Path == "" {
		cfg.Lock.Path = def.Lock.Path
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Left in place so validate can name the missing variable.
		return match
	})
}

// unresolved reports the first ${VAR} left in s.
func unresolved(field, s string) error {
	if m := envVarPattern.FindStringSubmatch(s); len(m) > 1 {
		return fmt.Errorf("%s: environment variable ${%s} is not set", field, m[1])
	}
	return nil
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if cfg.Service.LogFormat != "json" && cfg.Service.LogFormat != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	switch cfg.Store.Backend {
	case BackendS3:
		if cfg.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the s3 backend")
		}
		if err := unresolved("store.bucket", cfg.Store.Bucket); err != nil {
			return err
		}
		if cfg.Store.Region == "" {
			return fmt.Errorf("store.region is required for the s3 backend")
		}
		if err := unresolved("store.region", cfg.Store.Region); err != nil {
			return err
		}
	case BackendSQLite:
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be s3 or sqlite (got %q)", cfg.Store.Backend)
	}

	if cfg.Cleaner.PageSize < 1 || cfg.Cleaner.PageSize > 1000 {
		return fmt.Errorf("cleaner.page_size must be between 1 and 1000 (got %d)", cfg.Cleaner.PageSize)
	}
	if cfg.Cleaner.Timeout < 0 {
		return fmt.Errorf("cleaner.timeout must not be negative")
	}

	if cfg.Schedule.Enabled {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron %q: %w", cfg.Schedule.Cron, err)
		}
	}

	if cfg.Webhook.Enabled {
		if cfg.Webhook.Secret == "" {
			return fmt.Errorf("webhook.secret is required when the webhook is enabled")
		}
		if err := unresolved("webhook.secret", cfg.Webhook.Secret); err != nil {
			return err
		}
		if !strings.HasPrefix(cfg.Webhook.Path, "/") {
			return fmt.Errorf("webhook.path must start with / (got %q)", cfg.Webhook.Path)
		}
		if cfg.Webhook.Path == "/metrics" || cfg.Webhook.Path == "/status" {
			return fmt.Errorf("webhook.path must not be /metrics or /status")
		}
	}
	if (cfg.Webhook.Enabled || cfg.Metrics.Enabled) && cfg.Webhook.Listen == "" {
		return fmt.Errorf("webhook.listen is required when the webhook or metrics are enabled")
	}

	return nil
}

// Validate re-applies defaults and validates cfg after callers changed it,
// e.g. from command-line overrides.
func (c *Config) Validate() error {
	applyDefaults(c)
	if err := validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
