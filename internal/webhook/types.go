package webhook

import (
	"context"

	"github.com/mattjoyce/s3-maven-cleaner/internal/scheduler"
)

// RunStarter starts a pass in the background. *scheduler.Trigger satisfies it.
type RunStarter interface {
	Start(ctx context.Context, source string) (string, error)
	Last() (scheduler.Status, bool)
	Busy() bool
}

// Config holds webhook server configuration.
type Config struct {
	Listen string

	// Enabled registers the trigger route. The listener still serves
	// status and metrics without it.
	Enabled bool

	// Path is the URL path of the trigger (e.g. "/webhook/clean").
	Path string

	// Secret is the HMAC secret shared with callers.
	Secret string

	// SignatureHeader carries the HMAC signature, e.g. "X-Hub-Signature-256".
	SignatureHeader string

	// MaxBodySize is the maximum accepted body in bytes.
	MaxBodySize int64
}

// TriggerResponse is the JSON response for an accepted trigger.
type TriggerResponse struct {
	RunID string `json:"run_id"`
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Busy bool              `json:"busy"`
	Last *scheduler.Status `json:"last,omitempty"`
}

// ErrorResponse is the JSON response for webhook errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Default values
const (
	DefaultMaxBodySize     = 1048576 // 1 MB
	DefaultPath            = "/webhook/clean"
	DefaultSignatureHeader = "X-Hub-Signature-256"
)
