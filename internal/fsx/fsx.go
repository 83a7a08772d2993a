// Package fsx provides the small filesystem helpers shared by the download
// and build paths: write-path preparation, atomic moves, and executable-bit
// handling.
package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PrepareWrite ensures that path can be created as a regular file: its
// parent directories exist and the path itself is not an existing directory.
func PrepareWrite(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("path is an existing directory: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	return nil
}

// MoveFile renames src to dst, replacing dst if it exists. When rename
// fails because src and dst live on different filesystems, the file is
// copied and the source removed.
func MoveFile(src, dst string) error {
	if src == dst {
		return nil
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Cross-device fallback: copy preserving the mode, then remove.
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename destination: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}

	return nil
}

// SetExecutable marks a file executable (0755).
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
