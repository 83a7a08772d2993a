package config

import (
	"context"
	"os"
)

// InstallStatus represents the state of a configured installation.
type InstallStatus int

const (
	// StatusInstalled indicates the binary exists and runs.
	StatusInstalled InstallStatus = iota

	// StatusMissing indicates the binary does not exist at the configured path.
	StatusMissing

	// StatusBroken indicates the binary exists but fails to run. Typical on
	// linux when a prebuilt binary misses a shared library.
	StatusBroken
)

// String returns the string representation of an InstallStatus.
func (s InstallStatus) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusMissing:
		return "missing"
	case StatusBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Symbol returns the visual symbol for an InstallStatus.
func (s InstallStatus) Symbol() string {
	switch s {
	case StatusInstalled:
		return "✓"
	case StatusMissing:
		return "✗"
	case StatusBroken:
		return "!"
	default:
		return "?"
	}
}

// Prober checks that an installed binary actually runs.
type Prober interface {
	Check(ctx context.Context, path string) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) error

func (f ProberFunc) Check(ctx context.Context, path string) error {
	return f(ctx, path)
}

// StatusDetector determines the state of an installation.
type StatusDetector struct {
	prober Prober
}

// NewStatusDetector creates a StatusDetector. A nil prober reduces detection
// to an existence check.
func NewStatusDetector(prober Prober) *StatusDetector {
	return &StatusDetector{prober: prober}
}

// DetectStatus inspects the binary at path.
func (d *StatusDetector) DetectStatus(ctx context.Context, path string) (InstallStatus, error) {
	if err := ctx.Err(); err != nil {
		return StatusMissing, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusMissing, err
	}

	if d.prober == nil {
		return StatusInstalled, nil
	}
	if err := d.prober.Check(ctx, path); err != nil {
		return StatusBroken, nil
	}
	return StatusInstalled, nil
}
