package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual host inspection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns platform information for the running host. OS and
// architecture come from the runtime; on Linux, distribution details come
// from gopsutil. Distro detection failures are non-fatal: the acquisition
// only needs OS/arch, distro details are informational.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		ArchRaw: runtime.GOARCH,
	}

	arch, err := normalizeArch(runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}
	info.Arch = arch

	if runtime.GOOS == OSLinux {
		distro, family, release, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			// Distro details are best-effort.
			return info, nil
		}

		distro = strings.ToLower(strings.TrimSpace(distro))
		if distro != "" {
			info.Distro = distro
			info.Family = mapFamily(family)
			info.Release = strings.TrimSpace(release)
		}
	}

	return info, nil
}
