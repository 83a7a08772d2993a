// Package download retrieves prebuilt compiler binaries from GitHub
// releases. It constructs the platform-specific archive URL, downloads with
// retry and exponential backoff, optionally verifies the archive against a
// SHA256 checksum or a detached GPG signature, and streams the archive
// entries through a caller-supplied filter while extracting the binary into
// the destination directory with an atomic tmp-file rename.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultBaseURL is the release download root for the compiler.
	DefaultBaseURL = "https://github.com/purescript/purescript/releases/download"
	// DefaultVersion is the compiler version acquired when none is requested.
	DefaultVersion = "0.15.15"
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the number of download retries after the first attempt.
	DefaultRetries = 3
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "getpurs/1.0"
)

// ErrUnsupportedPlatform classifies a download failure caused by the release
// not shipping a prebuilt binary for the requested platform. The coordinator
// downgrades it to a fallback trigger on the native platform and treats it
// as fatal for explicit cross-platform requests.
var ErrUnsupportedPlatform = errors.New("no prebuilt binary for platform")

// Entry describes one archive entry offered to the filter.
type Entry struct {
	Path string // entry path inside the archive
	Size int64  // uncompressed size in bytes
	Mode int64  // file mode bits from the tar header
}

// Options configures a prebuilt binary fetch.
type Options struct {
	// Platform is the canonical target OS ("linux", "darwin", "windows").
	Platform string
	// Arch is the normalized target architecture ("amd64", "arm64").
	Arch string
	// Version is the compiler version (default DefaultVersion).
	Version string
	// BaseURL overrides the release download root.
	BaseURL string
	// TargetName is the file name the extracted binary is written to inside
	// the destination directory. Defaults to the archive's own binary name.
	TargetName string
	// Filter is called once per regular-file archive entry, in archive
	// order, before anything is written. Returning false skips the entry.
	// The first call marks the point at which the fetch attempt is
	// observably under way.
	Filter func(path string, entry Entry) bool
	// Keyring is an optional GPG keyring path. When set, a detached
	// signature (<archive URL>.sig) is fetched and verified before
	// extraction.
	Keyring string
	// ChecksumURL optionally points at a SHA256 checksum file covering the
	// archive. When set, the checksum is verified before extraction.
	ChecksumURL string
}

// Client downloads release archives with retry logic.
type Client struct {
	client    *http.Client
	userAgent string
	retries   int
}

// NewClient creates a download client with default limits.
func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
}

// FetchBinary downloads the prebuilt compiler archive for the requested
// platform and extracts the compiler binary into destDir. It returns the
// final binary path.
func (c *Client) FetchBinary(ctx context.Context, destDir string, opts Options) (string, error) {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	archive, err := archiveName(opts.Platform, opts.Arch)
	if err != nil {
		return "", err
	}
	archiveURL := fmt.Sprintf("%s/v%s/%s", opts.BaseURL, opts.Version, archive)

	binaryName := binaryNameFor(opts.Platform)
	targetName := opts.TargetName
	if targetName == "" {
		targetName = binaryName
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	// Download the archive to a temp file first; extraction and
	// verification both want a seekable local copy.
	tmp, err := os.CreateTemp(destDir, ".getpurs-archive-*")
	if err != nil {
		return "", fmt.Errorf("create archive temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.fetchToFile(ctx, archiveURL, tmpPath); err != nil {
		return "", err
	}

	if opts.ChecksumURL != "" {
		if err := c.verifyChecksum(ctx, tmpPath, archive, opts.ChecksumURL); err != nil {
			return "", fmt.Errorf("checksum verification: %w", err)
		}
	}
	if opts.Keyring != "" {
		if err := c.verifySignature(ctx, tmpPath, archiveURL+".sig", opts.Keyring); err != nil {
			return "", fmt.Errorf("signature verification: %w", err)
		}
	}

	finalPath := filepath.Join(destDir, targetName)
	if err := extractBinary(tmpPath, finalPath, binaryName, opts.Filter); err != nil {
		return "", err
	}

	return finalPath, nil
}

// fetchToFile downloads a URL to destPath with retries and an atomic final
// rename. A 404 is classified as ErrUnsupportedPlatform: the release exists
// but ships no asset for this platform.
func (c *Client) fetchToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.fetchOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnsupportedPlatform) {
			// Retrying will not make the asset appear.
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", c.retries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmpPath := destPath + ".part"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// archiveName maps a canonical platform/arch pair to the release asset name.
func archiveName(platform, arch string) (string, error) {
	switch platform {
	case "windows":
		if arch == "amd64" {
			return "win64.tar.gz", nil
		}
	case "darwin":
		switch arch {
		case "amd64":
			return "macos.tar.gz", nil
		case "arm64":
			return "macos-arm64.tar.gz", nil
		}
	case "linux":
		switch arch {
		case "amd64":
			return "linux64.tar.gz", nil
		case "arm64":
			return "linux-arm64.tar.gz", nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, platform, arch)
}

// binaryNameFor returns the compiler binary name inside a release archive.
func binaryNameFor(platform string) string {
	if platform == "windows" {
		return "purs.exe"
	}
	return "purs"
}
