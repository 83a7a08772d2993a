package build

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/MercerHollowell/getpurs/internal/progress"
)

// tailLines is how many trailing output lines are kept for error messages.
const tailLines = 20

// maxLineBytes bounds a single scanned output line.
const maxLineBytes = 1 << 20

// runStack executes the toolchain in the source directory, streaming every
// output line as a progress event under phase. The last lines of output are
// attached to the returned error for diagnostics.
func (b *Builder) runStack(ctx context.Context, srcDir string, opts Options, phase progress.Phase, emit func(progress.Event) bool, args ...string) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, opts.Stack, args...)
	cmd.Dir = srcDir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	tail := newTail(tailLines)
	scanDone := make(chan struct{})

	go func() {
		defer close(scanDone)
		forwarding := true
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := scanner.Text()
			tail.add(line)
			if forwarding {
				forwarding = emit(progress.Event{Phase: phase, Line: line})
			}
		}
	}()

	runErr := cmd.Run()
	pw.Close()
	<-scanDone

	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("stack %s timed out after %s", args[0], opts.Timeout)
		}
		if out := tail.String(); out != "" {
			return fmt.Errorf("stack %s: %w: %s", args[0], runErr, out)
		}
		return fmt.Errorf("stack %s: %w", args[0], runErr)
	}
	return nil
}

// cancelled returns the context error, defaulting to Canceled when the
// consumer stopped listening without cancelling the context first.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

// tail keeps the last n lines written to it.
type tail struct {
	n     int
	lines []string
}

func newTail(n int) *tail {
	return &tail{n: n}
}

func (t *tail) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *tail) String() string {
	return strings.TrimSpace(strings.Join(t.lines, "\n"))
}
