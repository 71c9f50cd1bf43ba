// Package target decides whether a file name plausibly targets the host.
//
// Release assets and archive entries carry their platform in free-form
// names such as "tool-v1.2.0-x86_64-unknown-linux-musl.tar.gz". A name is
// compatible with the host when none of its tokens names a foreign OS, CPU
// architecture or C library ABI. Names without any platform token are
// accepted, so universal scripts still match.
package target

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/platform"
)

// tokenPattern keeps "x86_64", "x86-64" and "32-bit" atomic before the
// generic alphanumeric split.
var tokenPattern = regexp.MustCompile(`(x86_64|x86\-64|32\-bit|[a-zA-Z0-9]+)`)

// extraTokens are never the host's and mark non-binary assets.
var extraTokens = []string{"source", "src", "vsix", "win64", "txt"}

var osTokens = []string{
	"aix", "android", "apple", "darwin", "dragonfly", "freebsd", "fuchsia",
	"hurd", "illumos", "ios", "js", "linux", "macos", "nacl", "netbsd",
	"openbsd", "osx", "plan9", "redox", "solaris", "sun", "windows", "zos",
}

var archTokens = []string{
	"32-bit", "386", "aarch64", "amd64", "amd64p32", "arm", "arm64",
	"arm64be", "armbe", "armebv7r", "armv5te", "armv6", "armv7", "armv7a",
	"armv7r", "asmjs", "i586", "i686", "loong64", "mips", "mips64",
	"mips64el", "mips64le", "mips64p32", "mips64p32le", "mipsel", "mipsle",
	"nvptx64", "powerpc", "powerpc64", "powerpc64le", "ppc", "ppc64",
	"ppc64le", "riscv", "riscv32i", "riscv32imac", "riscv32imc", "riscv64",
	"riscv64gc", "riscv64imac", "s390", "s390x", "sparc", "sparc64",
	"sparcv9", "thumbv6m", "thumbv7em", "thumbv7m", "thumbv7neon",
	"thumbv8m", "wasm", "wasm32", "x86", "x86_64",
}

var abiTokens = []string{
	"androideabi", "eabi", "eabihf", "gnu", "gnuabi64", "gnuabihf",
	"gnueabi64", "gnueabihf", "gnux32", "msvc", "musl", "muslabi64",
	"musleabi", "musleabihf", "sgx", "uclibc",
}

// osAliases lists the tokens that describe a GOOS value.
var osAliases = map[string][]string{
	"darwin":  {"macos", "apple", "darwin", "osx"},
	"windows": {"windows", "win64"},
}

// archAliases lists the tokens that describe a GOARCH value.
var archAliases = map[string][]string{
	"amd64":    {"x86_64", "amd64"},
	"386":      {"x86", "386", "i586", "i686", "32-bit"},
	"arm64":    {"aarch64", "arm64"},
	"arm":      {"arm", "armv6", "armv7", "armv7a"},
	"ppc64":    {"ppc64", "powerpc64"},
	"ppc64le":  {"ppc64le", "powerpc64le"},
	"riscv64":  {"riscv64", "riscv64gc"},
	"mipsle":   {"mipsle", "mipsel"},
	"mips64le": {"mips64le", "mips64el"},
	"wasm":     {"wasm", "wasm32"},
}

// Set holds the tokens that are inapplicable to one host. It is read-only
// after New and safe for concurrent use.
type Set struct {
	excluded map[string]struct{}
}

// New builds the exclusion set for info: the full token universe minus
// every alias of the host's OS, architecture and ABI.
func New(info *platform.Info) *Set {
	excluded := make(map[string]struct{}, len(extraTokens)+len(osTokens)+len(archTokens)+len(abiTokens))
	for _, group := range [][]string{extraTokens, osTokens, archTokens, abiTokens} {
		for _, tok := range group {
			excluded[tok] = struct{}{}
		}
	}

	for _, tok := range HostTokens(info) {
		delete(excluded, tok)
	}
	return &Set{excluded: excluded}
}

// HostTokens returns the tokens that legitimately describe info.
func HostTokens(info *platform.Info) []string {
	var tokens []string

	if aliases, ok := osAliases[info.OS]; ok {
		tokens = append(tokens, aliases...)
	} else if info.OS != "" {
		tokens = append(tokens, info.OS)
	}

	if aliases, ok := archAliases[info.Arch]; ok {
		tokens = append(tokens, aliases...)
	} else if info.Arch != "" {
		tokens = append(tokens, info.Arch)
	}

	if info.ABI != "" {
		tokens = append(tokens, info.ABI)
	}
	return tokens
}

// Tokenize splits name into lowercase platform tokens. "x86-64" is
// reported as "x86_64".
func Tokenize(name string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(name), -1)
	for i, m := range matches {
		if m == "x86-64" {
			matches[i] = "x86_64"
		}
	}
	return matches
}

// Compatible reports whether name contains no token foreign to the host.
func (s *Set) Compatible(name string) bool {
	for _, tok := range Tokenize(name) {
		if s.Excludes(tok) {
			return false
		}
	}
	return true
}

// Excludes reports whether tok names a foreign platform.
func (s *Set) Excludes(tok string) bool {
	_, ok := s.excluded[tok]
	return ok
}

// Tokens returns the excluded tokens, sorted.
func (s *Set) Tokens() []string {
	out := make([]string, 0, len(s.excluded))
	for tok := range s.excluded {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
