// Package platform provides target-platform detection and normalization for
// getpurs. It resolves the OS the acquisition targets, maps user-supplied
// platform names (including node-style aliases like "win32") onto canonical
// GOOS values, and knows the platform-appropriate default name of the
// compiler binary. On Linux it also detects distribution details via
// gopsutil, which are exposed to Lua config files as a read-only table.
package platform

import "context"

// Canonical OS names. These match GOOS values.
const (
	OSLinux   = "linux"
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// Linux distribution family constants used in the Lua platform table.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains detected platform information for the running host.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // "amd64", "arm64" (normalized)
	ArchRaw string // original GOARCH value
	Distro  string // distro ID (Linux only, e.g. "ubuntu")
	Family  string // canonical family (Linux only, e.g. "debian")
	Release string // distro version (Linux only, e.g. "22.04")
}

// IsLinux reports whether the platform is Linux.
func (i *Info) IsLinux() bool { return i.OS == OSLinux }

// IsMacOS reports whether the platform is macOS.
func (i *Info) IsMacOS() bool { return i.OS == OSDarwin }

// IsWindows reports whether the platform is Windows.
func (i *Info) IsWindows() bool { return i.OS == OSWindows }

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
