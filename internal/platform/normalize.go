package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
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

// archAliases maps the spellings found in release names and `uname -m`
// to GOARCH values.
var archAliases = map[string]string{
	"x86_64":  "amd64",
	"x86-64":  "amd64",
	"x64":     "amd64",
	"aarch64": "arm64",
	"i386":    "386",
	"i586":    "386",
	"i686":    "386",
	"x86":     "386",
	"armv7":   "arm",
	"armv6":   "arm",
}

// osAliases maps common operating system spellings to GOOS values.
var osAliases = map[string]string{
	"macos": "darwin",
	"osx":   "darwin",
	"win":   "windows",
}

// normalizeArch converts architecture spellings to GOARCH values.
// Unknown values pass through lowercased.
func normalizeArch(arch string) string {
	a := strings.ToLower(strings.TrimSpace(arch))
	if canonical, ok := archAliases[a]; ok {
		return canonical
	}
	return a
}

// normalizeOS converts operating system spellings to GOOS values.
func normalizeOS(goos string) string {
	o := strings.ToLower(strings.TrimSpace(goos))
	if canonical, ok := osAliases[o]; ok {
		return canonical
	}
	return o
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
