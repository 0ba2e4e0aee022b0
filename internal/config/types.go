package config

import "time"

// Config represents the complete s3-maven-cleaner configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Store    StoreConfig    `yaml:"store"`
	Cleaner  CleanerConfig  `yaml:"cleaner"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Webhook  WebhookConfig  `yaml:"webhook,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Lock     LockConfig     `yaml:"lock,omitempty"`

	// Path and Digest describe the file the config was loaded from. Both are
	// empty for configs built from Defaults or FromEnv.
	Path   string `yaml:"-"`
	Digest string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Store backends.
const (
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
)

// StoreConfig selects and configures the object store.
type StoreConfig struct {
	Backend string `yaml:"backend"`

	// S3 settings.
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`

	// SQLite settings.
	Path string `yaml:"path,omitempty"`
}

// CleanerConfig tunes a cleaning pass.
type CleanerConfig struct {
	Prefix   string        `yaml:"prefix"`
	PageSize int           `yaml:"page_size"`
	DryRun   bool          `yaml:"dry_run"`
	FailFast bool          `yaml:"fail_fast"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ScheduleConfig defines when serve mode runs a pass.
type ScheduleConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Cron       string `yaml:"cron"` // e.g. "@daily", "0 3 * * *"
	RunOnStart bool   `yaml:"run_on_start"`
}

// WebhookConfig defines the HTTP trigger. The listener also serves /metrics
// when metrics are enabled.
type WebhookConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Listen          string `yaml:"listen"`
	Path            string `yaml:"path"`
	Secret          string `yaml:"secret"`
	SignatureHeader string `yaml:"signature_header"`
	MaxBodySize     string `yaml:"max_body_size,omitempty"`
}

// MetricsConfig defines Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LockConfig defines the single-instance PID lock.
type LockConfig struct {
	Path string `yaml:"path"`
}

// Defaults returns a Config targeting the stock repository bucket.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "s3-maven-cleaner",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Store: StoreConfig{
			Backend: BackendS3,
			Bucket:  "some-maven-repository",
			Region:  "us-east-1",
		},
		Cleaner: CleanerConfig{
			Prefix:   "snapshot",
			PageSize: 500,
			Timeout:  30 * time.Minute,
		},
		Schedule: ScheduleConfig{
			Cron: "@daily",
		},
		Webhook: WebhookConfig{
			Listen:          "127.0.0.1:8081",
			Path:            "/webhook/clean",
			SignatureHeader: "X-Hub-Signature-256",
		},
		Metrics: MetricsConfig{
			Namespace: "s3_maven_cleaner",
		},
		Lock: LockConfig{
			Path: "./data/s3-maven-cleaner.pid",
		},
	}
}
