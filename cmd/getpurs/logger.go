package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// cliLogger writes leveled key-value logs to a rotating file and mirrors
// warnings and errors to stderr. With verbose enabled, everything is
// mirrored. It satisfies the Logger interfaces of the acquire and config
// packages.
type cliLogger struct {
	mu      sync.Mutex
	file    io.Writer
	mirror  io.Writer
	verbose bool
}

func newCLILogger(verbose bool, logPath string) *cliLogger {
	var file io.Writer = io.Discard
	if logPath != "" {
		file = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    5, // megabytes
			MaxBackups: 2,
			MaxAge:     28, // days
		}
	}
	return &cliLogger{file: file, mirror: os.Stderr, verbose: verbose}
}

func (l *cliLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.write("DEBUG", msg, keysAndValues, l.verbose)
}

func (l *cliLogger) Info(msg string, keysAndValues ...interface{}) {
	l.write("INFO", msg, keysAndValues, l.verbose)
}

func (l *cliLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.write("WARN", msg, keysAndValues, true)
}

func (l *cliLogger) Error(msg string, keysAndValues ...interface{}) {
	l.write("ERROR", msg, keysAndValues, true)
}

func (l *cliLogger) write(level, msg string, kv []interface{}, mirror bool) {
	line := formatLogLine(time.Now().UTC(), level, msg, kv)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.file, line)
	if mirror && l.mirror != nil {
		fmt.Fprintln(l.mirror, line)
	}
}

// formatLogLine renders one log line: timestamp, level, message, then
// key=value pairs. An odd trailing key is paired with "(missing)".
func formatLogLine(t time.Time, level, msg string, kv []interface{}) string {
	var sb strings.Builder
	sb.WriteString(t.Format(time.RFC3339))
	sb.WriteString(" ")
	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(msg)

	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		value := "(missing)"
		if i+1 < len(kv) {
			value = fmt.Sprintf("%v", kv[i+1])
		}
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		if strings.ContainsAny(value, " \t") {
			sb.WriteString(fmt.Sprintf("%q", value))
		} else {
			sb.WriteString(value)
		}
	}
	return sb.String()
}
