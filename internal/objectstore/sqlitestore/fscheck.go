package sqlitestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var remoteFilesystems = map[string]struct{}{
	"afpfs":  {},
	"cifs":   {},
	"nfs":    {},
	"smbfs":  {},
	"smb2":   {},
	"webdav": {},
}

// checkLocalFilesystem rejects bucket databases on network mounts, where
// SQLite file locking is unreliable.
func checkLocalFilesystem(path string) error {
	return checkLocalFilesystemWith(path, filesystemType)
}

func checkLocalFilesystemWith(path string, detect func(string) (string, error)) error {
	dir, err := existingAncestor(path)
	if err != nil {
		return fmt.Errorf("resolve bucket path %q: %w", path, err)
	}

	fsType, err := detect(dir)
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", dir, err)
	}
	if isRemoteFilesystem(fsType) {
		return fmt.Errorf("bucket database %q is on network filesystem %q; point store.path at a local disk", path, fsType)
	}
	return nil
}

// existingAncestor returns path or its closest parent that exists.
func existingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for candidate := abs; ; {
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", fmt.Errorf("no existing parent for %q", abs)
		}
		candidate = parent
	}
}

func isRemoteFilesystem(fsType string) bool {
	_, ok := remoteFilesystems[strings.ToLower(strings.TrimSpace(fsType))]
	return ok
}
