package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MercerHollowell/getpurs/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	dirs := map[string]string{
		"GETPURS_CONFIG_DIR": env.ConfigDir,
		"GETPURS_STATE_DIR":  env.StateDir,
		"GETPURS_CACHE_DIR":  env.CacheDir,
		"STACK_ROOT":         env.StackRoot,
	}

	for name, dir := range dirs {
		if got := os.Getenv(name); got != dir {
			t.Errorf("%s = %q, want %q", name, got, dir)
		}
		if !filepath.IsAbs(dir) {
			t.Errorf("%s = %q is not absolute", name, dir)
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", dir)
		}
	}

	if testMode := os.Getenv("GETPURS_TEST_MODE"); testMode != "1" {
		t.Errorf("GETPURS_TEST_MODE = %q, want \"1\"", testMode)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	// Test that multiple test runs get different directories
	env1 := testutil.SetupTestEnv(t)

	// Run again in a subtest
	t.Run("subtest", func(t *testing.T) {
		env2 := testutil.SetupTestEnv(t)

		if env1.ConfigDir == env2.ConfigDir {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
