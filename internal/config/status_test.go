package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectStatus(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "purs")
	if err := os.WriteFile(binary, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("missing", func(t *testing.T) {
		d := NewStatusDetector(nil)
		status, err := d.DetectStatus(context.Background(), filepath.Join(dir, "nope"))
		if err != nil {
			t.Fatalf("DetectStatus: %v", err)
		}
		if status != StatusMissing {
			t.Errorf("status = %v, want missing", status)
		}
	})

	t.Run("installed without prober", func(t *testing.T) {
		d := NewStatusDetector(nil)
		status, err := d.DetectStatus(context.Background(), binary)
		if err != nil {
			t.Fatalf("DetectStatus: %v", err)
		}
		if status != StatusInstalled {
			t.Errorf("status = %v, want installed", status)
		}
	})

	t.Run("installed with passing prober", func(t *testing.T) {
		d := NewStatusDetector(ProberFunc(func(ctx context.Context, path string) error {
			return nil
		}))
		status, err := d.DetectStatus(context.Background(), binary)
		if err != nil {
			t.Fatalf("DetectStatus: %v", err)
		}
		if status != StatusInstalled {
			t.Errorf("status = %v, want installed", status)
		}
	})

	t.Run("broken", func(t *testing.T) {
		d := NewStatusDetector(ProberFunc(func(ctx context.Context, path string) error {
			return errors.New("missing shared library")
		}))
		status, err := d.DetectStatus(context.Background(), binary)
		if err != nil {
			t.Fatalf("DetectStatus: %v", err)
		}
		if status != StatusBroken {
			t.Errorf("status = %v, want broken", status)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := NewStatusDetector(nil)
		if _, err := d.DetectStatus(ctx, binary); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestInstallStatusStrings(t *testing.T) {
	tests := []struct {
		status InstallStatus
		str    string
	}{
		{StatusInstalled, "installed"},
		{StatusMissing, "missing"},
		{StatusBroken, "broken"},
		{InstallStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if tt.status.Symbol() == "" {
			t.Errorf("Symbol() empty for %v", tt.status)
		}
	}
}
