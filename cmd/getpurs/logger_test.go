package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatLogLine(t *testing.T) {
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	line := formatLogLine(ts, "WARN", "download failed", []interface{}{
		"attempt", 2,
		"error", "unexpected EOF",
	})

	for _, want := range []string{"2026-08-23T10:00:00Z", "WARN", "download failed", "attempt=2", `error="unexpected EOF"`} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestFormatLogLineOddPairs(t *testing.T) {
	line := formatLogLine(time.Now(), "INFO", "msg", []interface{}{"orphan"})
	if !strings.Contains(line, "orphan=(missing)") {
		t.Errorf("line %q does not mark the orphan key", line)
	}
}

func TestCLILoggerMirrorsWarnings(t *testing.T) {
	var file, mirror bytes.Buffer
	logger := &cliLogger{file: &file, mirror: &mirror}

	logger.Debug("quiet")
	logger.Warn("loud", "k", "v")

	if !strings.Contains(file.String(), "quiet") || !strings.Contains(file.String(), "loud") {
		t.Errorf("file log missing entries: %q", file.String())
	}
	if strings.Contains(mirror.String(), "quiet") {
		t.Error("debug mirrored without verbose")
	}
	if !strings.Contains(mirror.String(), "loud") {
		t.Error("warning not mirrored")
	}
}

func TestCLILoggerVerboseMirrorsEverything(t *testing.T) {
	var file, mirror bytes.Buffer
	logger := &cliLogger{file: &file, mirror: &mirror, verbose: true}

	logger.Debug("chatty")
	if !strings.Contains(mirror.String(), "chatty") {
		t.Error("verbose debug not mirrored")
	}
}
