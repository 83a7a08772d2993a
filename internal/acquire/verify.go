package acquire

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// VerifyBinary checks that a downloaded compiler binary actually runs on
// this host by executing it with --version. Stderr is captured, bounded by
// limits.MaxOutput, and folded into the returned error so fast-exit
// diagnostics like missing shared libraries surface to the caller.
func VerifyBinary(ctx context.Context, path string, limits Limits) error {
	timeout := limits.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	maxOutput := limits.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stderr := &cappedWriter{max: maxOutput}
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		name := filepath.Base(path)
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("run %s --version: timed out after %s", name, timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s --version: %w: %s", name, err, msg)
		}
		return fmt.Errorf("run %s --version: %w", name, err)
	}
	return nil
}

// cappedWriter keeps the first max bytes written and discards the rest.
type cappedWriter struct {
	max int64
	buf []byte
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	remaining := w.max - int64(len(w.buf))
	if remaining > 0 {
		if int64(len(p)) > remaining {
			w.buf = append(w.buf, p[:remaining]...)
		} else {
			w.buf = append(w.buf, p...)
		}
	}
	return len(p), nil
}

func (w *cappedWriter) String() string {
	return string(w.buf)
}
