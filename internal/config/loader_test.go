package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty file keeps defaults",
			yaml: "",
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Store.Bucket != "some-maven-repository" {
					t.Errorf("store.bucket = %q, want default", cfg.Store.Bucket)
				}
				if cfg.Store.Region != "us-east-1" {
					t.Errorf("store.region = %q, want default", cfg.Store.Region)
				}
				if cfg.Cleaner.Prefix != "snapshot" {
					t.Errorf("cleaner.prefix = %q, want snapshot", cfg.Cleaner.Prefix)
				}
				if cfg.Cleaner.PageSize != 500 {
					t.Errorf("cleaner.page_size = %d, want 500", cfg.Cleaner.PageSize)
				}
			},
		},
		{
			name: "full config",
			yaml: `
service:
  name: cleaner-prod
  log_level: debug
  log_format: text
store:
  backend: s3
  bucket: artifacts
  region: eu-west-1
  endpoint: http://minio:9000
  path_style: true
cleaner:
  prefix: snapshots/com
  page_size: 100
  dry_run: true
  fail_fast: true
  timeout: 10m
schedule:
  enabled: true
  cron: "0 3 * * *"
  run_on_start: true
webhook:
  enabled: true
  listen: 0.0.0.0:9000
  path: /hooks/clean
  secret: s3cr3t
  max_body_size: 64KB
metrics:
  enabled: true
  namespace: mvn
lock:
  path: /var/run/cleaner.pid
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.Name != "cleaner-prod" || cfg.Service.LogFormat != "text" {
					t.Errorf("service not parsed: %+v", cfg.Service)
				}
				if cfg.Store.Endpoint != "http://minio:9000" || !cfg.Store.PathStyle {
					t.Errorf("store not parsed: %+v", cfg.Store)
				}
				if cfg.Cleaner.Timeout != 10*time.Minute || !cfg.Cleaner.FailFast || !cfg.Cleaner.DryRun {
					t.Errorf("cleaner not parsed: %+v", cfg.Cleaner)
				}
				if cfg.Schedule.Cron != "0 3 * * *" || !cfg.Schedule.RunOnStart {
					t.Errorf("schedule not parsed: %+v", cfg.Schedule)
				}
				if cfg.Webhook.SignatureHeader != "X-Hub-Signature-256" {
					t.Errorf("webhook.signature_header = %q, want default", cfg.Webhook.SignatureHeader)
				}
				if cfg.Metrics.Namespace != "mvn" {
					t.Errorf("metrics.namespace = %q", cfg.Metrics.Namespace)
				}
				if cfg.Lock.Path != "/var/run/cleaner.pid" {
					t.Errorf("lock.path = %q", cfg.Lock.Path)
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
store:
  bucket: ${TEST_BUCKET}
webhook:
  enabled: true
  secret: ${TEST_WEBHOOK_SECRET}
`,
			env: map[string]string{
				"TEST_BUCKET":         "from-env",
				"TEST_WEBHOOK_SECRET": "hush",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Store.Bucket != "from-env" {
					t.Errorf("store.bucket = %q, want from-env", cfg.Store.Bucket)
				}
				if cfg.Webhook.Secret != "hush" {
					t.Errorf("webhook.secret = %q, want hush", cfg.Webhook.Secret)
				}
			},
		},
		{
			name: "sqlite backend",
			yaml: `
store:
  backend: sqlite
  path: ./data/bucket.db
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "./data/bucket.db" {
					t.Errorf("store not parsed: %+v", cfg.Store)
				}
			},
		},
		{
			name: "blank fields fall back to defaults",
			yaml: `
service:
  log_level: ""
cleaner:
  page_size: 0
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.LogLevel != "info" {
					t.Errorf("service.log_level = %q, want info", cfg.Service.LogLevel)
				}
				if cfg.Cleaner.PageSize != 500 {
					t.Errorf("cleaner.page_size = %d, want 500", cfg.Cleaner.PageSize)
				}
			},
		},
		{
			name: "log settings ignore case",
			yaml: "service:\n  log_level: INFO\n  log_format: Text\n",
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.LogLevel != "info" || cfg.Service.LogFormat != "text" {
					t.Errorf("service = %+v, want info/text", cfg.Service)
				}
			},
		},
		{
			name:    "unset webhook secret variable",
			yaml:    "webhook:\n  enabled: true\n  secret: ${TEST_MISSING_SECRET}\n",
			wantErr: "${TEST_MISSING_SECRET} is not set",
		},
		{
			name:    "missing webhook secret",
			yaml:    "webhook:\n  enabled: true\n",
			wantErr: "webhook.secret is required",
		},
		{
			name:    "bad log level",
			yaml:    "service:\n  log_level: loud\n",
			wantErr: "service.log_level",
		},
		{
			name:    "unknown backend",
			yaml:    "store:\n  backend: gcs\n",
			wantErr: "store.backend",
		},
		{
			name:    "sqlite without path",
			yaml:    "store:\n  backend: sqlite\n",
			wantErr: "store.path is required",
		},
		{
			name:    "page size above the s3 limit",
			yaml:    "cleaner:\n  page_size: 5000\n",
			wantErr: "cleaner.page_size",
		},
		{
			name:    "bad cron expression",
			yaml:    "schedule:\n  enabled: true\n  cron: every tuesday\n",
			wantErr: "schedule.cron",
		},
		{
			name:    "webhook path clashes with metrics",
			yaml:    "webhook:\n  enabled: true\n  secret: x\n  path: /metrics\n",
			wantErr: "must not be /metrics",
		},
		{
			name:    "malformed yaml",
			yaml:    "store: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o600); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() succeeded, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.Path != path {
				t.Errorf("cfg.Path = %q, want %q", cfg.Path, path)
			}
			if cfg.Digest == "" {
				t.Error("cfg.Digest is empty")
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v, want config file not found", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvBucket, " team-snapshots ")
	t.Setenv(EnvRegion, "ap-southeast-2")
	t.Setenv("DRY_RUN", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}
	if cfg.Store.Bucket != "team-snapshots" {
		t.Errorf("bucket = %q, want team-snapshots", cfg.Store.Bucket)
	}
	if cfg.Store.Region != "ap-southeast-2" {
		t.Errorf("region = %q, want ap-southeast-2", cfg.Store.Region)
	}
	if !cfg.Cleaner.DryRun {
		t.Error("DRY_RUN not applied")
	}
	if cfg.Path != "" || cfg.Digest != "" {
		t.Error("env config should not carry a source file")
	}
}

// unsetEnv removes name for the rest of the test and restores it afterwards.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	if err := os.Unsetenv(name); err != nil {
		t.Fatal(err)
	}
}

func TestFromEnvRequiresTarget(t *testing.T) {
	tests := []struct {
		name    string
		bucket  *string
		region  *string
		wantErr string
	}{
		{name: "bucket unset", region: ptr("eu-west-1"), wantErr: "store.bucket: environment variable " + EnvBucket + " is not set"},
		{name: "bucket blank", bucket: ptr("  "), region: ptr("eu-west-1"), wantErr: "store.bucket"},
		{name: "region unset", bucket: ptr("artifacts"), wantErr: "store.region: environment variable " + EnvRegion + " is not set"},
		{name: "region blank", bucket: ptr("artifacts"), region: ptr(""), wantErr: "store.region"},
		{name: "both unset", wantErr: "store.bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for name, v := range map[string]*string{EnvBucket: tt.bucket, EnvRegion: tt.region} {
				if v == nil {
					unsetEnv(t, name)
				} else {
					t.Setenv(name, *v)
				}
			}

			cfg, err := FromEnv()
			if err == nil {
				t.Fatalf("FromEnv() = %+v, want error", cfg.Store)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("FromEnv() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestFromEnvRejectsBadDryRun(t *testing.T) {
	t.Setenv(EnvBucket, "artifacts")
	t.Setenv(EnvRegion, "eu-west-1")
	t.Setenv("DRY_RUN", "sometimes")
	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "DRY_RUN") {
		t.Fatalf("FromEnv() error = %v, want DRY_RUN error", err)
	}
}

func TestFromEnvLogLevelIgnoresCase(t *testing.T) {
	t.Setenv(EnvBucket, "artifacts")
	t.Setenv(EnvRegion, "eu-west-1")
	t.Setenv("LOG_LEVEL", " WARN ")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}
	if cfg.Service.LogLevel != "warn" {
		t.Fatalf("log_level = %q, want warn", cfg.Service.LogLevel)
	}
}

func TestInterpolateEnvLeavesUnknownPlaceholders(t *testing.T) {
	t.Setenv("KNOWN_VAR", "v")
	got := interpolateEnv("${KNOWN_VAR}-${UNKNOWN_VAR_XYZ}")
	if got != "v-${UNKNOWN_VAR_XYZ}" {
		t.Fatalf("interpolateEnv() = %q", got)
	}
}

func TestValidateAfterOverrides(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Backend = BackendSQLite
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sqlite backend without path")
	}

	cfg.Store.Path = "./bucket.db"
	cfg.Cleaner.PageSize = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.Cleaner.PageSize != 500 {
		t.Fatalf("page_size = %d, want default 500", cfg.Cleaner.PageSize)
	}
}
