package download

import (
	"context"
	"fmt"
	"os"
)

// DefaultSourceURLTemplate locates the compiler source tarball for a
// version. %s is the version.
const DefaultSourceURLTemplate = "https://github.com/purescript/purescript/archive/refs/tags/v%s.tar.gz"

// SourceOptions configures a compiler source tree fetch.
type SourceOptions struct {
	// Version selects the source tag (default DefaultVersion).
	Version string
	// URL overrides the source tarball location.
	URL string
	// Filter is called once per regular-file entry during extraction.
	// Returning false skips the entry.
	Filter func(path string, entry Entry) bool
}

// FetchSource downloads and unpacks the compiler source tree into destDir,
// stripping the archive's top-level directory.
func (c *Client) FetchSource(ctx context.Context, destDir string, opts SourceOptions) error {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	url := opts.URL
	if url == "" {
		url = fmt.Sprintf(DefaultSourceURLTemplate, opts.Version)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}

	tmp, err := os.CreateTemp(destDir, ".getpurs-source-*")
	if err != nil {
		return fmt.Errorf("create source temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.fetchToFile(ctx, url, tmpPath); err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	if err := extractTree(tmpPath, destDir, opts.Filter); err != nil {
		return fmt.Errorf("extract source: %w", err)
	}

	return nil
}
