package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// osAliases maps user-supplied platform names onto canonical GOOS values.
// Node-style names are accepted because release tooling in other ecosystems
// commonly passes them through.
var osAliases = map[string]string{
	"linux":   OSLinux,
	"darwin":  OSDarwin,
	"macos":   OSDarwin,
	"osx":     OSDarwin,
	"windows": OSWindows,
	"win32":   OSWindows,
	"win64":   OSWindows,
}

// familyMap maps distribution names reported by gopsutil to canonical
// family names.
var familyMap = map[string]string{
	"debian": FamilyDebian,
	"ubuntu": FamilyDebian,
	"rhel":   FamilyRHEL,
	"centos": FamilyRHEL,
	"rocky":  FamilyRHEL,
	"fedora": FamilyRHEL,
	"arch":   FamilyArch,
	"alpine": FamilyAlpine,
}

// Native returns the canonical OS name of the running host.
func Native() string {
	return runtime.GOOS
}

// NativeArch returns the normalized architecture of the running host.
func NativeArch() (string, error) {
	return normalizeArch(runtime.GOARCH)
}

// Normalize maps a user-supplied platform name to a canonical OS name.
// An empty name means the native platform. Unrecognized names are returned
// lowercased and untouched; whether they are acquirable is decided by the
// download URL mapping, not here.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Native()
	}
	if canonical, ok := osAliases[n]; ok {
		return canonical
	}
	return n
}

// BinaryName returns the default compiler binary name for an OS.
func BinaryName(osName string) string {
	if osName == OSWindows {
		return "purs.exe"
	}
	return "purs"
}

// normalizeArch converts GOARCH-style values to normalized architecture
// names. Only amd64 and arm64 hosts are supported.
func normalizeArch(arch string) (string, error) {
	switch arch {
	case "amd64", "x86_64":
		return "amd64", nil
	case "arm64", "aarch64":
		return "arm64", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}

// mapFamily maps a distribution family string to a canonical family name.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
