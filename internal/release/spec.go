package release

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSpec is returned for repository specs that cannot be parsed.
var ErrInvalidSpec = errors.New("invalid repository spec")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// String renders the ref as owner/name.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// Spec is a parsed `[https://github.com/][owner/]repo[@version]` argument.
type Spec struct {
	Repo    RepoRef
	Version VersionRequest
}

// ParseSpec parses a user supplied repository spec. A missing owner
// defaults to the repository name and a missing version means latest.
func ParseSpec(s string) (Spec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Spec{}, fmt.Errorf("%w: empty", ErrInvalidSpec)
	}

	repoPart, version, _ := strings.Cut(raw, "@")
	repo, err := ParseRepo(repoPart)
	if err != nil {
		return Spec{}, err
	}

	return Spec{Repo: repo, Version: ParseVersionRequest(version)}, nil
}

// ParseRepo parses `[https://github.com/][owner/]repo[/]`.
func ParseRepo(s string) (RepoRef, error) {
	path := strings.TrimSpace(s)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		path = strings.TrimPrefix(path, prefix)
	}
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	var ref RepoRef
	switch len(parts) {
	case 1:
		ref = RepoRef{Owner: parts[0], Name: parts[0]}
	case 2:
		ref = RepoRef{Owner: parts[0], Name: parts[1]}
	default:
		return RepoRef{}, fmt.Errorf("%w: %q has too many path segments", ErrInvalidSpec, s)
	}

	if !namePattern.MatchString(ref.Owner) || !namePattern.MatchString(ref.Name) {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidSpec, s)
	}
	return ref, nil
}
