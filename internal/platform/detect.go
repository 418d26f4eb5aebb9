package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect reports the host platform. It uses runtime.GOOS and runtime.GOARCH
// for OS and architecture, and gopsutil for Linux distribution details.
//
// A host without a Node.js distribution is reported with empty NodePlatform
// or NodeArch rather than an error, so callers can still override them.
// On Linux, a failed distro detection leaves the distro fields empty.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	info.NodePlatform, _ = NodePlatform(info.OS)
	info.NodeArch, _ = NodeArch(info.Arch)

	if runtime.GOOS != "linux" {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		// Check if context was cancelled - this is a hard failure
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if distro = normalizeDistro(distro); distro != "" {
		info.Distro = distro
		info.Family = mapFamily(family)
		info.Version = normalizeDistro(version)
		// gopsutil reports alpine with an empty family.
		if distro == "alpine" {
			info.Family = FamilyAlpine
		}
	}

	return info, nil
}
