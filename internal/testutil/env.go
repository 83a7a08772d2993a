// Package testutil provides utilities for testing getpurs in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEnv describes the isolated directories a test runs against.
type TestEnv struct {
	ConfigDir string
	StateDir  string
	CacheDir  string
	StackRoot string
}

// SetupTestEnv points the getpurs directory overrides at per-test temp
// directories so tests never touch the user's real configuration, install
// state, or Haskell stack root. Cleanup rides on t.TempDir.
func SetupTestEnv(t *testing.T) TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := TestEnv{
		ConfigDir: filepath.Join(tmpDir, "config"),
		StateDir:  filepath.Join(tmpDir, "state"),
		CacheDir:  filepath.Join(tmpDir, "cache"),
		StackRoot: filepath.Join(tmpDir, "stack"),
	}

	t.Setenv("GETPURS_CONFIG_DIR", env.ConfigDir)
	t.Setenv("GETPURS_STATE_DIR", env.StateDir)
	t.Setenv("GETPURS_CACHE_DIR", env.CacheDir)
	t.Setenv("STACK_ROOT", env.StackRoot)
	t.Setenv("GETPURS_TEST_MODE", "1")

	for _, dir := range []string{env.ConfigDir, env.StateDir, env.CacheDir, env.StackRoot} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
