// Package toolchain locates the Haskell stack toolchain and resolves its
// version with a bounded-output subprocess call. The probe runs concurrently
// with the binary download; its failure only matters if a source build is
// actually attempted.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultCommand is the toolchain binary looked up on PATH.
	DefaultCommand = "stack"
	// DefaultTimeout bounds the version probe subprocess.
	DefaultTimeout = 50 * time.Second
	// DefaultMaxOutput caps the captured probe output.
	DefaultMaxOutput = 1 << 20
)

// Info describes a resolved toolchain.
type Info struct {
	Path    string // absolute path to the toolchain binary
	Version string // e.g. "2.15.5"
}

// Options configures a version probe.
type Options struct {
	// Command overrides the toolchain binary name or path (default "stack").
	Command string
	// Timeout bounds the probe subprocess (default DefaultTimeout).
	Timeout time.Duration
	// MaxOutput caps captured output in bytes (default DefaultMaxOutput).
	MaxOutput int64
}

// Probe locates the toolchain on PATH and resolves its version string.
func Probe(ctx context.Context, opts Options) (*Info, error) {
	command := opts.Command
	if command == "" {
		command = DefaultCommand
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxOutput := opts.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", command, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := newCappedBuffer(maxOutput)
	cmd := exec.CommandContext(ctx, path, "--numeric-version")
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s version probe timed out after %s", command, timeout)
		}
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return nil, fmt.Errorf("%s version probe: %w: %s", command, err, msg)
		}
		return nil, fmt.Errorf("%s version probe: %w", command, err)
	}

	version := firstLine(out.String())
	if version == "" {
		return nil, fmt.Errorf("%s version probe: empty output", command)
	}

	return &Info{Path: path, Version: version}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// cappedBuffer accumulates writes up to a fixed cap and silently discards
// the rest, so a chatty subprocess cannot grow memory unboundedly.
type cappedBuffer struct {
	max int64
	buf []byte
}

func newCappedBuffer(max int64) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - int64(len(b.buf))
	if remaining > 0 {
		if int64(len(p)) > remaining {
			b.buf = append(b.buf, p[:remaining]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return string(b.buf)
}
