package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// Digest returns the hex BLAKE3 hash of a config file's raw bytes.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestFile computes the BLAKE3 hash of a file.
func DigestFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Digest(data), nil
}

// VerifyDigest checks cfg against an expected BLAKE3 hash, so deployments
// can pin the exact file a scheduled service runs with.
func VerifyDigest(cfg *Config, expected string) error {
	if cfg.Path == "" {
		return fmt.Errorf("configuration was not loaded from a file")
	}
	expected = strings.ToLower(strings.TrimSpace(expected))
	if cfg.Digest != expected {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(cfg.Path), expected, cfg.Digest)
	}
	return nil
}
