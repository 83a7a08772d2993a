package build

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/MercerHollowell/getpurs/internal/download"
	"github.com/MercerHollowell/getpurs/internal/progress"
)

// stubStack writes a fake stack binary that answers setup and install.
func stubStack(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are not portable to windows")
	}

	path := filepath.Join(t.TempDir(), "stack")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// workingStack behaves like a successful toolchain: setup prints progress,
// install drops a purs binary into the --local-bin-path directory.
const workingStack = `
case "$1" in
  setup)
    echo "Preparing to install GHC"
    echo "GHC installed"
    ;;
  install)
    shift
    dir=""
    while [ $# -gt 0 ]; do
      if [ "$1" = "--local-bin-path" ]; then
        dir="$2"
        shift 2
        continue
      fi
      shift
    done
    echo "Building purescript"
    printf 'built-binary' > "$dir/purs"
    ;;
esac
`

func collectEmit(events *[]progress.Event) func(progress.Event) bool {
	return func(ev progress.Event) bool {
		*events = append(*events, ev)
		return true
	}
}

func TestBuildWithExistingSource(t *testing.T) {
	stack := stubStack(t, workingStack)
	destDir := t.TempDir()
	srcDir := t.TempDir()

	var events []progress.Event
	builder := New(download.NewClient())

	produced, err := builder.Build(context.Background(), destDir, Options{
		Stack:     stack,
		Platform:  "linux",
		SourceDir: srcDir,
	}, collectEmit(&events))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if want := filepath.Join(destDir, "purs"); produced != want {
		t.Errorf("produced = %q, want %q", produced, want)
	}
	data, err := os.ReadFile(produced)
	if err != nil {
		t.Fatalf("read produced binary: %v", err)
	}
	if string(data) != "built-binary" {
		t.Errorf("binary content = %q", data)
	}

	// Phase ordering: setup precedes setup:complete precedes build output
	// precedes build:complete. No download events with a caller-supplied
	// source tree.
	var phases []progress.Phase
	for _, ev := range events {
		if ev.Line == "" || ev.Phase == progress.PhaseBuild {
			phases = append(phases, ev.Phase)
		}
		if ev.Phase == progress.PhaseDownload {
			t.Error("unexpected source download event")
		}
	}
	assertOrder(t, phases, progress.PhaseSetup, progress.PhaseSetupComplete, progress.PhaseBuild, progress.PhaseBuildComplete)
}

func TestBuildDownloadsSource(t *testing.T) {
	archive := makeSourceArchive(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	stack := stubStack(t, workingStack)
	destDir := t.TempDir()

	var events []progress.Event
	builder := New(download.NewClient())

	if _, err := builder.Build(context.Background(), destDir, Options{
		Stack:     stack,
		Platform:  "linux",
		SourceURL: server.URL + "/v0.15.15.tar.gz",
	}, collectEmit(&events)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	sawEntry := false
	sawComplete := false
	for _, ev := range events {
		switch ev.Phase {
		case progress.PhaseDownload:
			if ev.Entry == nil {
				t.Error("download event without entry payload")
			}
			sawEntry = true
		case progress.PhaseDownloadComplete:
			sawComplete = true
		}
	}
	if !sawEntry || !sawComplete {
		t.Errorf("missing source download events: entry=%v complete=%v", sawEntry, sawComplete)
	}

	// The source tree was unpacked under the destination.
	if _, err := os.Stat(filepath.Join(destDir, sourceSubdir, "stack.yaml")); err != nil {
		t.Errorf("source tree not unpacked: %v", err)
	}
}

func TestBuildSetupFailure(t *testing.T) {
	stack := stubStack(t, `
if [ "$1" = "setup" ]; then
  echo "no GHC for this platform"
  exit 1
fi
`)

	var events []progress.Event
	builder := New(download.NewClient())

	_, err := builder.Build(context.Background(), t.TempDir(), Options{
		Stack:     stack,
		Platform:  "linux",
		SourceDir: t.TempDir(),
	}, collectEmit(&events))

	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Phase != progress.PhaseSetup {
		t.Errorf("error phase = %q, want setup", buildErr.Phase)
	}
}

func TestBuildFailureKeepsOutputTail(t *testing.T) {
	stack := stubStack(t, `
if [ "$1" = "setup" ]; then exit 0; fi
echo "error: could not satisfy constraints"
exit 1
`)

	var events []progress.Event
	builder := New(download.NewClient())

	_, err := builder.Build(context.Background(), t.TempDir(), Options{
		Stack:     stack,
		Platform:  "linux",
		SourceDir: t.TempDir(),
	}, collectEmit(&events))

	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Phase != progress.PhaseBuild {
		t.Errorf("error phase = %q, want build", buildErr.Phase)
	}
	if msg := err.Error(); !strings.Contains(msg, "could not satisfy constraints") {
		t.Errorf("error %q does not carry the output tail", msg)
	}
}

func TestBuildMissingBinary(t *testing.T) {
	// install succeeds but never produces a binary.
	stack := stubStack(t, "exit 0")

	var events []progress.Event
	builder := New(download.NewClient())

	_, err := builder.Build(context.Background(), t.TempDir(), Options{
		Stack:     stack,
		Platform:  "linux",
		SourceDir: t.TempDir(),
	}, collectEmit(&events))

	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Phase != progress.PhaseBuild {
		t.Errorf("error phase = %q, want build", buildErr.Phase)
	}
}

func TestBuildStopsWhenConsumerGone(t *testing.T) {
	stack := stubStack(t, workingStack)

	calls := 0
	emit := func(progress.Event) bool {
		calls++
		return false
	}

	builder := New(download.NewClient())
	_, err := builder.Build(context.Background(), t.TempDir(), Options{
		Stack:     stack,
		Platform:  "linux",
		SourceDir: t.TempDir(),
	}, emit)

	if err == nil {
		t.Error("expected error when consumer stopped listening")
	}
	if calls != 1 {
		t.Errorf("emit called %d times after consumer left, want 1", calls)
	}
}

func TestTail(t *testing.T) {
	tl := newTail(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		tl.add(line)
	}
	if got := tl.String(); got != "c\nd\ne" {
		t.Errorf("tail = %q, want c\\nd\\ne", got)
	}
}

func assertOrder(t *testing.T, got []progress.Phase, want ...progress.Phase) {
	t.Helper()
	i := 0
	for _, p := range got {
		if i < len(want) && p == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Errorf("phase order %v does not contain subsequence %v", got, want)
	}
}

func makeSourceArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	files := map[string]string{
		"purescript-0.15.15/stack.yaml":  "resolver: lts",
		"purescript-0.15.15/src/Main.hs": "main = return ()",
	}
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
