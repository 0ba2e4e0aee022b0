//go:build linux

package sqlitestore

import (
	"fmt"
	"syscall"
)

// statfs f_type magic numbers for network filesystems.
const (
	magicNFS  = 0x6969
	magicCIFS = 0xFF534D42
	magicSMB  = 0x517B
	magicSMB2 = 0xFE534D42
)

func filesystemType(path string) (string, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return "", fmt.Errorf("statfs: %w", err)
	}
	switch uint64(st.Type) {
	case magicNFS:
		return "nfs", nil
	case magicCIFS:
		return "cifs", nil
	case magicSMB:
		return "smbfs", nil
	case magicSMB2:
		return "smb2", nil
	}
	return fmt.Sprintf("0x%x", uint64(st.Type)), nil
}
