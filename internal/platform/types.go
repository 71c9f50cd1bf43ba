// Package platform detects the host that release assets are matched against.
//
// It reports the operating system, CPU architecture and C library ABI of the
// running machine, plus Linux distribution details gathered through gopsutil.
// The ABI matters for asset selection: Alpine hosts need musl builds while
// other Linux distributions run gnu builds. Detection never fails on an
// unknown distribution; distro fields are simply left empty.
//
// The detected info is also injected into Lua configuration as a read-only
// "platform" table.
package platform

import "context"

// Linux distribution family constants.
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

// C library ABIs reported in Info.ABI.
const (
	ABIGnu  = "gnu"
	ABIMusl = "musl"
	ABIMSVC = "msvc"
)

// Environment variables that override detection.
const (
	EnvOS   = "GITREL_OS"
	EnvArch = "GITREL_ARCH"
	EnvABI  = "GITREL_ABI"
)

// Info contains platform detection information.
type Info struct {
	OS       string // GOOS value: "linux", "darwin", "windows", ...
	Arch     string // normalized GOARCH: "amd64", "arm64", "386", ...
	ArchRaw  string // value before normalization (e.g. "x86_64", "aarch64")
	ABI      string // "gnu", "musl", "msvc" or empty
	Platform string // distro ID (Linux only, e.g. "ubuntu", "alpine")
	Family   string // canonical family (e.g. "debian", "alpine")
	Version  string // distro version (Linux only, e.g. "22.04")
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information on Linux, nil elsewhere or when
// distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
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

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// IsAlpine returns true if the Linux distribution is Alpine.
func (i *Info) IsAlpine() bool {
	return i.OS == "linux" && i.Family == FamilyAlpine
}

// IsMusl returns true if binaries must be linked against musl.
func (i *Info) IsMusl() bool {
	return i.ABI == ABIMusl
}

// Triple renders the info as an arch-os-abi string for log output.
func (i *Info) Triple() string {
	s := i.Arch + "-" + i.OS
	if i.ABI != "" {
		s += "-" + i.ABI
	}
	return s
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the caller already
// knows the target, for example in tests.
type StaticDetector struct {
	Info *Info
}

// Detect returns a copy of the configured info.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := *d.Info
	return &info, nil
}
