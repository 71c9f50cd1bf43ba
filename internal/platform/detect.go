package platform

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using runtime values, gopsutil and the
// GITREL_OS / GITREL_ARCH / GITREL_ABI overrides.
type RealDetector struct {
	getenv func(string) string
	goos   string
	goarch string
}

// NewDetector creates a new platform detector for the running process.
func NewDetector() Detector {
	return &RealDetector{
		getenv: os.Getenv,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
}

// Detect performs platform detection and returns platform information.
//
// On Linux, if gopsutil fails to detect the distribution, the distro fields
// stay empty and the ABI falls back to gnu.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}

	goos := d.goos
	if v := d.getenv(EnvOS); v != "" {
		goos = normalizeOS(v)
	}
	goarch := d.goarch
	if v := d.getenv(EnvArch); v != "" {
		goarch = v
	}

	info := &Info{
		OS:      goos,
		ArchRaw: goarch,
		Arch:    normalizeArch(goarch),
	}

	// Distro details only make sense for the machine we are running on
	if goos == "linux" && d.goos == "linux" {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
		} else if platform = normalizePlatform(platform); platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
			// gopsutil reports alpine with an empty family
			if info.Family == FamilyUnknown {
				info.Family = mapFamily(platform)
			}
		}
	}

	info.ABI = defaultABI(info)
	if v := d.getenv(EnvABI); v != "" {
		info.ABI = normalizePlatform(v)
	}

	return info, nil
}

// defaultABI picks the C library ABI that binaries for info must target.
func defaultABI(info *Info) string {
	switch info.OS {
	case "linux":
		if info.Family == FamilyAlpine {
			return ABIMusl
		}
		return ABIGnu
	case "windows":
		return ABIMSVC
	default:
		return ""
	}
}
