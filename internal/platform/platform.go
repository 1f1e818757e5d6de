// Package platform detects the running (os, arch) pair and exposes the
// canonical platform tag used throughout vx as a store subdirectory name
// and provider URL key (spec component C1).
package platform

import (
	"fmt"
	"runtime"
	"sync"
)

// OS is one of the operating systems vx knows how to install for.
type OS string

const (
	OSWindows OS = "windows"
	OSDarwin  OS = "darwin"
	OSLinux   OS = "linux"
	OSFreeBSD OS = "freebsd"
)

// Arch is one of the canonical architecture names vx uses for store paths
// and provider lookups. Aliases observed in upstream URLs and triples
// (amd64, x86_64, aarch64, ...) are normalized to these via CanonicalizeArch.
type Arch string

const (
	ArchX64   Arch = "x64"
	ArchARM64 Arch = "arm64"
	ArchX86   Arch = "x86"
	ArchARMv7 Arch = "armv7"
)

// archAliases maps known alternate spellings to the canonical Arch.
var archAliases = map[string]Arch{
	"amd64":   ArchX64,
	"x86_64":  ArchX64,
	"x64":     ArchX64,
	"aarch64": ArchARM64,
	"arm64":   ArchARM64,
	"386":     ArchX86,
	"x86":     ArchX86,
	"i686":    ArchX86,
	"armv7":   ArchARMv7,
	"arm":     ArchARMv7,
}

// CanonicalizeArch normalizes any known alias (amd64, x86_64, aarch64, ...)
// to vx's canonical Arch name. Unknown values are returned unchanged as an
// Arch so callers can still surface them in error messages.
func CanonicalizeArch(s string) Arch {
	if a, ok := archAliases[s]; ok {
		return a
	}
	return Arch(s)
}

// Platform identifies the (os, arch) pair the current process runs on.
// Immutable once determined; the value is fixed at process start.
type Platform struct {
	OS   OS
	Arch Arch
}

var (
	currentOnce sync.Once
	currentVal  Platform
)

// Current returns the Platform of the running process, detected once and
// cached for the lifetime of the process.
func Current() Platform {
	currentOnce.Do(func() {
		currentVal = Platform{
			OS:   OS(runtime.GOOS),
			Arch: CanonicalizeArch(runtime.GOARCH),
		}
	})
	return currentVal
}

// AsTag returns the canonical platform tag used as a store subdirectory
// name and provider download_urls key, e.g. "linux-x64", "darwin-arm64".
func (p Platform) AsTag() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// String implements fmt.Stringer as AsTag.
func (p Platform) String() string {
	return p.AsTag()
}

// ExecutableExt returns the platform's executable file extension:
// ".exe" on Windows, "" everywhere else.
func (p Platform) ExecutableExt() string {
	if p.OS == OSWindows {
		return ".exe"
	}
	return ""
}

// IsWindows reports whether this platform is Windows, which governs both
// executable extension and long-path handling.
func (p Platform) IsWindows() bool {
	return p.OS == OSWindows
}

// Triple renders a platform as the target-triple form used by some
// upstream download URL templates (e.g. "x86_64-pc-windows-msvc",
// "aarch64-apple-darwin"). vendor selects the libc/ABI suffix most
// providers expect; "" selects "gnu" on Linux and "msvc" on Windows, and
// vendor is ignored for other operating systems.
func (p Platform) Triple(vendor string) string {
	var archPart string
	switch p.Arch {
	case ArchX64:
		archPart = "x86_64"
	case ArchARM64:
		archPart = "aarch64"
	case ArchX86:
		archPart = "i686"
	case ArchARMv7:
		archPart = "armv7"
	default:
		archPart = string(p.Arch)
	}

	var osPart string
	switch p.OS {
	case OSDarwin:
		osPart = "apple-darwin"
	case OSLinux:
		osPart = "unknown-linux-" + defaultLibc(vendor)
	case OSWindows:
		osPart = "pc-windows-" + defaultVendor(vendor, "msvc")
	case OSFreeBSD:
		osPart = "unknown-freebsd"
	default:
		osPart = string(p.OS)
	}

	return archPart + "-" + osPart
}

func defaultLibc(v string) string {
	if v == "" {
		return "gnu"
	}
	return v
}

func defaultVendor(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
