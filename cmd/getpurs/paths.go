package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// configDir returns the getpurs configuration directory. GETPURS_CONFIG_DIR
// overrides the platform default, mainly for tests.
func configDir() (string, error) {
	if dir := os.Getenv("GETPURS_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(base, "getpurs"), nil
}

// stateDir returns the directory for the install lock and journals.
func stateDir() (string, error) {
	if dir := os.Getenv("GETPURS_STATE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("determine state directory: %w", err)
	}
	return filepath.Join(base, "getpurs", "state"), nil
}

// cacheDir returns the directory for logs.
func cacheDir() (string, error) {
	if dir := os.Getenv("GETPURS_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("determine cache directory: %w", err)
	}
	return filepath.Join(base, "getpurs"), nil
}

// defaultConfigPath returns the config file location.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "getpurs.lua"), nil
}

// defaultLogPath returns the rotating log file location.
func defaultLogPath() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "getpurs.log"), nil
}
