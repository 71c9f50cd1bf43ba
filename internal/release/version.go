package release

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind is the match strategy applied to a requested version string.
type Kind int

const (
	// KindLatest asks for the newest stable release.
	KindLatest Kind = iota
	// KindExact asks for the release whose tag equals the string verbatim.
	KindExact
	// KindSemVer scans releases for a tag satisfying a constraint.
	KindSemVer
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindExact:
		return "exact"
	case KindSemVer:
		return "semver"
	default:
		return "unknown"
	}
}

// LatestMarker is the requested string for KindLatest.
const LatestMarker = "*"

// semverPattern is the SemVer 2.0 grammar without anchors so it matches
// anywhere inside a tag.
var semverPattern = regexp.MustCompile(`(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?`)

// vPrefixed finds a version written with a leading v. Such strings are
// tag names, not constraints.
var vPrefixed = regexp.MustCompile(`(?:^|[\s,|<>=~^])[vV]\d`)

// bareVersion is a version with no operator, read as a caret request the
// way Cargo reads "13.0.0".
var bareVersion = regexp.MustCompile(`^\d+(?:\.\d+){0,2}(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)

// boundPattern finds the version numbers a constraint names.
var boundPattern = regexp.MustCompile(`(?:^|[^0-9A-Za-z.+-])(\d+(?:\.\d+){0,2})`)

// VersionRequest is a requested version with its derived kind.
type VersionRequest struct {
	Kind       Kind
	Raw        string
	constraint *semver.Constraints
	// bounds are the release versions named in the constraint.
	bounds []*semver.Version
}

// ParseVersionRequest derives the request kind from the string's syntax.
// "*" or empty is latest; a valid semver constraint is semver; anything
// else is an exact tag. A bare version such as "13.0.0" means "^13.0.0",
// and a v-prefixed string such as "v1.2.3" is an exact tag. It never fails.
func ParseVersionRequest(s string) VersionRequest {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == LatestMarker {
		return VersionRequest{Kind: KindLatest, Raw: LatestMarker}
	}
	if vPrefixed.MatchString(raw) {
		return VersionRequest{Kind: KindExact, Raw: raw}
	}

	expr := raw
	if bareVersion.MatchString(raw) {
		expr = "^" + raw
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return VersionRequest{Kind: KindExact, Raw: raw}
	}
	return VersionRequest{Kind: KindSemVer, Raw: raw, constraint: c, bounds: constraintBounds(expr)}
}

func constraintBounds(expr string) []*semver.Version {
	var out []*semver.Version
	for _, m := range boundPattern.FindAllStringSubmatch(expr, -1) {
		if v, err := semver.NewVersion(m[1]); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Latest returns the request for the newest release.
func Latest() VersionRequest {
	return VersionRequest{Kind: KindLatest, Raw: LatestMarker}
}

// String returns the requested string as the user typed it.
func (v VersionRequest) String() string {
	return v.Raw
}

// MatchesTag reports whether tag satisfies the request.
func (v VersionRequest) MatchesTag(tag string) bool {
	switch v.Kind {
	case KindLatest:
		return true
	case KindExact:
		return tag == v.Raw
	case KindSemVer:
		ver, ok := ExtractVersion(tag)
		return ok && v.satisfies(ver)
	default:
		return false
	}
}

// ExtractVersion finds the first semantic version inside tag,
// e.g. "release-v2.3.4-beta.1+build5" yields 2.3.4-beta.1+build5.
func ExtractVersion(tag string) (*semver.Version, bool) {
	match := semverPattern.FindString(tag)
	if match == "" {
		return nil, false
	}
	ver, err := semver.NewVersion(match)
	if err != nil {
		return nil, false
	}
	return ver, true
}

// satisfies checks ver against the constraint. A pre-release the
// constraint rejects is admitted when its release core is accepted and is
// not a version the constraint names: ^2.0.0 admits 2.3.4-beta.1 but not
// 2.0.0-rc.1, which sorts below 2.0.0.
func (v VersionRequest) satisfies(ver *semver.Version) bool {
	if v.constraint.Check(ver) {
		return true
	}
	if ver.Prerelease() == "" {
		return false
	}
	core := semver.New(ver.Major(), ver.Minor(), ver.Patch(), "", "")
	if !v.constraint.Check(core) {
		return false
	}
	for _, b := range v.bounds {
		if b.Equal(core) {
			return false
		}
	}
	return true
}
