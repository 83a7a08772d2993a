// Package config loads the optional Lua configuration file that
// preconfigures acquisitions. Configs run in a sandboxed gopher-lua VM with
// a read-only platform table injected, so a single config can make
// platform-conditional decisions declaratively.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"

	lua "github.com/yuin/gopher-lua"
)

// Config is the parsed acquisition configuration. All fields are optional;
// empty values defer to built-in defaults or command-line flags.
type Config struct {
	// Dest is the installation directory (supports ~).
	Dest string

	// Platform selects the target OS; alias names are accepted.
	Platform string

	// Version is the compiler release to acquire.
	Version string

	// BaseURL overrides the release download root.
	BaseURL string

	// ChecksumURL points at a SHA256 checksum file covering the archive.
	ChecksumURL string

	// Keyring is a GPG keyring path for signature verification (supports ~).
	Keyring string

	// SourceDir points fallback builds at an existing source tree.
	SourceDir string

	// SourceURL overrides the source tarball location.
	SourceURL string

	// BuildArgs are extra arguments for the toolchain build command.
	BuildArgs []string

	// Options are CLI behavior settings.
	Options Options

	// The rename function lives inside the Lua VM, which must stay open for
	// as long as the closure returned by Rename may be called.
	mu     sync.Mutex
	vm     *lua.LState
	rename *lua.LFunction
}

// Options contains CLI behavior settings.
type Options struct {
	// Verbose enables debug-level logging.
	Verbose bool

	// LogFile overrides the rotating log file location (supports ~).
	LogFile string
}

// Rename returns the config's rename function as a Go closure, or nil when
// the config does not declare one. The closure returns an empty string if
// the Lua function errors or returns a non-string; downstream name
// validation rejects that.
func (c *Config) Rename() func(string) string {
	if c.rename == nil {
		return nil
	}
	return func(name string) string {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.vm == nil {
			return ""
		}
		err := c.vm.CallByParam(lua.P{
			Fn:      c.rename,
			NRet:    1,
			Protect: true,
		}, lua.LString(name))
		if err != nil {
			return ""
		}
		ret := c.vm.Get(-1)
		c.vm.Pop(1)
		if ret.Type() != lua.LTString {
			return ""
		}
		return ret.String()
	}
}

// Close releases the underlying Lua VM. The closure returned by Rename must
// not be called afterwards.
func (c *Config) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vm != nil {
		c.vm.Close()
		c.vm = nil
	}
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.Version != "" {
		if err := validateVersion(c.Version); err != nil {
			return &ValidationError{Field: "version", Message: err.Error()}
		}
	}

	for field, value := range map[string]string{
		"base_url":     c.BaseURL,
		"checksum_url": c.ChecksumURL,
		"source_url":   c.SourceURL,
	} {
		if value == "" {
			continue
		}
		if err := validateURL(value); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	for field, value := range map[string]string{
		"dest":       c.Dest,
		"source_dir": c.SourceDir,
		"keyring":    c.Keyring,
	} {
		if value == "" {
			continue
		}
		if err := validatePath(value); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	if len(c.BuildArgs) > MaxBuildArgs {
		return &ValidationError{
			Field:   "build_args",
			Message: fmt.Sprintf("too many arguments (%d), maximum is %d", len(c.BuildArgs), MaxBuildArgs),
		}
	}
	for i, arg := range c.BuildArgs {
		if err := validateBuildArg(arg); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("build_args[%d]", i),
				Message: err.Error(),
			}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// versionPattern matches release version strings like 0.15.15 or
// 0.15.15-alpha.1.
var versionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+([.-][0-9A-Za-z.-]+)?$`)

func validateVersion(version string) error {
	if len(version) > MaxVersionLength {
		return fmt.Errorf("version string too long (%d chars, max %d)", len(version), MaxVersionLength)
	}
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("invalid version format: %q (expected: major.minor.patch)", version)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}

// validatePath rejects paths with traversal components. Absolute paths and
// tilde-prefixed paths are both allowed; acquisitions legitimately install
// outside the home directory.
func validatePath(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	cleaned := filepath.Clean(expanded)
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", path)
		}
	}
	return nil
}

func validateBuildArg(arg string) error {
	if arg == "" {
		return fmt.Errorf("argument cannot be empty")
	}
	if len(arg) > MaxBuildArgLength {
		return fmt.Errorf("argument too long (%d chars, max %d)", len(arg), MaxBuildArgLength)
	}
	for _, r := range arg {
		if unicode.IsControl(r) {
			return fmt.Errorf("argument contains control characters: %q", arg)
		}
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
