// Package file stores sessions and State as JSON files on the local filesystem.
// Writes go to a temp file in the same directory, are fsynced, then renamed
// over the destination.
package file

import (
	"fmt"
	"os"
	"path/filepath"
)

func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		// Windows refuses to rename over an existing file.
		if _, statErr := os.Stat(dest); statErr == nil {
			if err := os.Remove(dest); err != nil {
				return fmt.Errorf("remove %s for overwrite: %w", dest, err)
			}
			if err := os.Rename(tmpPath, dest); err == nil {
				return nil
			}
		}
		return fmt.Errorf("rename temp file to %s: %w", dest, err)
	}
	return nil
}
