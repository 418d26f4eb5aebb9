package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported indicates no Node.js distribution exists for a platform or
// architecture.
var ErrUnsupported = errors.New("no Node.js distribution")

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// archAliases maps Go, uname and Node.js architecture names to the names
// used in distribution file names.
var archAliases = map[string]string{
	"x64":     "x64",
	"amd64":   "x64",
	"x86_64":  "x64",
	"x86":     "x86",
	"386":     "x86",
	"ia32":    "x86",
	"i386":    "x86",
	"i686":    "x86",
	"arm64":   "arm64",
	"aarch64": "arm64",
	"arm":     "armv7l",
	"armv7l":  "armv7l",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
}

// platformAliases does the same for operating systems.
var platformAliases = map[string]string{
	"linux":   "linux",
	"darwin":  "darwin",
	"macos":   "darwin",
	"win":     "win",
	"win32":   "win",
	"windows": "win",
	"aix":     "aix",
}

// NodeArch returns the distribution name of an architecture, accepting Go
// (amd64, 386, arm) and Node.js (x64, ia32, armv7l) spellings.
func NodeArch(arch string) (string, error) {
	if name, ok := archAliases[strings.ToLower(strings.TrimSpace(arch))]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w for architecture %q", ErrUnsupported, arch)
}

// NodePlatform returns the distribution name of an operating system,
// accepting Go (windows) and Node.js (win32) spellings.
func NodePlatform(name string) (string, error) {
	if platform, ok := platformAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return platform, nil
	}
	return "", fmt.Errorf("%w for platform %q", ErrUnsupported, name)
}

// normalizeDistro converts distro IDs to lowercase for consistency.
func normalizeDistro(distro string) string {
	return strings.ToLower(strings.TrimSpace(distro))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
