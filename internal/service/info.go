package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
)

// InfoRequest names a `[owner/]repo[@version]` spec to describe.
type InfoRequest struct {
	Spec   string
	Filter asset.Filter
}

// InfoResult describes a release and which asset would be installed.
type InfoResult struct {
	Repo    release.RepoRef `json:"repo" yaml:"repo"`
	Request string          `json:"requested" yaml:"requested"`
	Kind    string          `json:"match_kind" yaml:"match_kind"`
	Release *github.Release `json:"release" yaml:"release"`
	// Selected is the asset install would pick, nil when selection fails.
	Selected *github.Asset `json:"selected,omitempty" yaml:"selected,omitempty"`
	// SelectError explains why no single asset was selected.
	SelectError string `json:"select_error,omitempty" yaml:"select_error,omitempty"`
}

// InfoService looks up a release without installing anything.
type InfoService struct {
	finder   Finder
	selector *asset.Selector
}

// NewInfoService creates a new info service.
func NewInfoService(finder Finder, selector *asset.Selector) *InfoService {
	return &InfoService{finder: finder, selector: selector}
}

// Execute resolves req.Spec and reports the release's assets.
func (s *InfoService) Execute(ctx context.Context, req InfoRequest) (*InfoResult, error) {
	spec, err := release.ParseSpec(req.Spec)
	if err != nil {
		return nil, err
	}

	rel, err := s.finder.Find(ctx, spec.Repo, spec.Version)
	if err != nil {
		if errors.Is(err, github.ErrReleaseNotFound) {
			return nil, fmt.Errorf("%s@%s: %w", spec.Repo, spec.Version, err)
		}
		return nil, err
	}

	result := &InfoResult{
		Repo:    spec.Repo,
		Request: spec.Version.Raw,
		Kind:    spec.Version.Kind.String(),
		Release: rel,
	}
	if s.selector != nil {
		selected, err := s.selector.Select(rel.Assets, req.Filter, spec.Repo.Name)
		if err != nil {
			result.SelectError = err.Error()
		} else {
			result.Selected = &selected
		}
	}
	return result, nil
}
