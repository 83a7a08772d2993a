// Package build compiles the PureScript compiler from source using the
// Haskell stack toolchain. It fetches the source tree when the caller did
// not supply one, runs stack setup followed by the build, and streams
// subprocess output as progress events. The produced binary lands at the
// platform default name inside the destination directory; the acquisition
// coordinator owns the final rename.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MercerHollowell/getpurs/internal/download"
	"github.com/MercerHollowell/getpurs/internal/platform"
	"github.com/MercerHollowell/getpurs/internal/progress"
)

// sourceSubdir is where a downloaded source tree is unpacked, relative to
// the destination directory.
const sourceSubdir = ".getpurs-build"

// Error is a phase-tagged build failure. Phase is the builder's own
// identifier (download, setup, or build); the coordinator rewrites
// download-related phases before surfacing them.
type Error struct {
	Phase progress.Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures a source build.
type Options struct {
	// Stack is the resolved toolchain binary path (required).
	Stack string
	// Platform is the canonical OS the build runs on; it decides the
	// produced binary's default name. Builds only ever run natively.
	Platform string
	// Version selects the compiler source tag (default download.DefaultVersion).
	Version string
	// SourceDir points at an existing source tree. When empty the source
	// tarball is downloaded and unpacked under the destination directory.
	SourceDir string
	// SourceURL overrides the source tarball location.
	SourceURL string
	// Args are extra arguments appended to the stack build invocation.
	Args []string
	// Timeout bounds each toolchain subprocess. Zero means no bound;
	// compiler builds routinely run for a long time.
	Timeout time.Duration
}

// Builder runs source builds.
type Builder struct {
	client *download.Client
}

// New creates a builder that fetches source trees with client.
func New(client *download.Client) *Builder {
	return &Builder{client: client}
}

// Build compiles the compiler into destDir and returns the produced binary
// path (the platform default name). Progress is delivered through emit,
// which reports whether the consumer still wants events; Build stops early
// when it returns false. The terminal build:complete event is emitted
// through the same callback before Build returns.
func (b *Builder) Build(ctx context.Context, destDir string, opts Options, emit func(progress.Event) bool) (string, error) {
	if opts.Stack == "" {
		return "", &Error{Phase: progress.PhaseSetup, Err: fmt.Errorf("no toolchain path")}
	}
	if opts.Platform == "" {
		opts.Platform = platform.Native()
	}

	srcDir := opts.SourceDir
	if srcDir == "" {
		srcDir = filepath.Join(destDir, sourceSubdir)
		if err := b.fetchSource(ctx, srcDir, opts, emit); err != nil {
			return "", err
		}
	}

	if !emit(progress.Event{Phase: progress.PhaseSetup}) {
		return "", cancelled(ctx)
	}
	if err := b.runStack(ctx, srcDir, opts, progress.PhaseSetup, emit, "setup"); err != nil {
		return "", &Error{Phase: progress.PhaseSetup, Err: err}
	}
	if !emit(progress.Event{Phase: progress.PhaseSetupComplete}) {
		return "", cancelled(ctx)
	}

	buildArgs := append([]string{"install", "--local-bin-path", destDir}, opts.Args...)
	if err := b.runStack(ctx, srcDir, opts, progress.PhaseBuild, emit, buildArgs...); err != nil {
		return "", &Error{Phase: progress.PhaseBuild, Err: err}
	}

	produced := filepath.Join(destDir, platform.BinaryName(opts.Platform))
	if _, err := os.Stat(produced); err != nil {
		return "", &Error{Phase: progress.PhaseBuild, Err: fmt.Errorf("build produced no binary at %s: %w", produced, err)}
	}

	if !emit(progress.Event{Phase: progress.PhaseBuildComplete}) {
		return "", cancelled(ctx)
	}
	return produced, nil
}

// fetchSource downloads and unpacks the compiler source tree, forwarding
// per-entry progress under the builder-internal download phase.
func (b *Builder) fetchSource(ctx context.Context, srcDir string, opts Options, emit func(progress.Event) bool) error {
	wanted := true
	err := b.client.FetchSource(ctx, srcDir, download.SourceOptions{
		Version: opts.Version,
		URL:     opts.SourceURL,
		Filter: func(path string, e download.Entry) bool {
			if wanted {
				wanted = emit(progress.Event{
					Phase: progress.PhaseDownload,
					Entry: &progress.Entry{Path: path, Size: e.Size},
				})
			}
			return true
		},
	})
	if err != nil {
		return &Error{Phase: progress.PhaseDownload, Err: err}
	}
	if !emit(progress.Event{Phase: progress.PhaseDownloadComplete}) {
		return cancelled(ctx)
	}
	return nil
}
