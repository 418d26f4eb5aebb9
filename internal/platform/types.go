// Package platform detects the host platform and maps it to the names used
// by Node.js distributions.
//
// It detects OS, architecture, and Linux distribution details, then injects
// this information as a read-only table into Lua configurations. The package
// uses gopsutil for Linux distribution detection and provides graceful
// fallback behavior when detection fails.
package platform

import "context"

// Linux distribution family constants.
// These represent canonical family names for grouping related distributions.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS           string // GOOS: "linux", "darwin", "windows"
	Arch         string // GOARCH: "amd64", "arm64", "arm"
	NodePlatform string // distribution platform: "linux", "darwin", "win"
	NodeArch     string // distribution arch: "x64", "arm64", "armv7l"
	Distro       string // distro ID (Linux only, e.g., "ubuntu", "alpine")
	Family       string // canonical family (e.g., "debian", "alpine")
	Version      string // distro version (Linux only, e.g., "22.04")
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Distro == "" {
		return nil
	}
	return &Distro{
		ID:      i.Distro,
		Family:  i.Family,
		Version: i.Version,
	}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsAppleSilicon returns true if running on Apple Silicon (macOS + arm64).
func (i *Info) IsAppleSilicon() bool {
	return i.OS == "darwin" && i.Arch == "arm64"
}

// IsMusl reports whether the host uses musl libc. Official Node.js Linux
// builds link against glibc and do not run there.
func (i *Info) IsMusl() bool {
	return i.OS == "linux" && i.Family == FamilyAlpine
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
