package webhook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
)

// FromGlobalConfig converts config.WebhookConfig to webhook.Config.
func FromGlobalConfig(wc config.WebhookConfig) (Config, error) {
	if wc.Enabled && wc.Secret == "" {
		return Config{}, fmt.Errorf("webhook %q: no secret configured", wc.Path)
	}

	maxBodySize, err := parseMaxBodySize(wc.MaxBodySize)
	if err != nil {
		return Config{}, fmt.Errorf("webhook %q: invalid max_body_size %q: %w", wc.Path, wc.MaxBodySize, err)
	}

	return Config{
		Listen:          wc.Listen,
		Enabled:         wc.Enabled,
		Path:            wc.Path,
		Secret:          wc.Secret,
		SignatureHeader: wc.SignatureHeader,
		MaxBodySize:     maxBodySize,
	}, nil
}

// parseMaxBodySize parses size strings like "64KB", "1MB" or "2048576".
// Returns DefaultMaxBodySize if empty.
func parseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		factor int64
	}{
		{"KB", 1 << 10},
		{"MB", 1 << 20},
		{"GB", 1 << 30},
	} {
		if strings.HasSuffix(upper, unit.suffix) {
			multiplier = unit.factor
			upper = strings.TrimSuffix(upper, unit.suffix)
			break
		}
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result/multiplier != value {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
