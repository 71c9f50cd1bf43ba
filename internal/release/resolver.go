// Package release finds the GitHub release that satisfies a requested version.
//
// Latest and exact-tag requests are single lookups. Semantic version
// constraints scan the paginated release listing newest first, up to a page
// bound, and stop at the first release whose extracted version satisfies the
// constraint and whose assets select unambiguously. Releases beyond the page
// bound are never seen.
package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
)

const (
	// DefaultPerPage is the page size of the release listing scan.
	DefaultPerPage = 25
	// DefaultMaxPages bounds the release listing scan.
	DefaultMaxPages = 5
)

// ErrAlreadyUpToDate signals that the matching release is the one installed.
// It is a no-op outcome, not a failure.
var ErrAlreadyUpToDate = errors.New("already up to date")

// Source is the remote release listing.
type Source interface {
	LatestRelease(ctx context.Context, owner, repo string) (*github.Release, error)
	ReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.Release, error)
	ListReleases(ctx context.Context, owner, repo string, page, perPage int) ([]github.Release, error)
}

// Config bounds the semver scan.
type Config struct {
	PerPage  int
	MaxPages int
}

// Current is the remote state recorded for an installed package.
type Current struct {
	Tag         string
	PublishedAt time.Time
}

// Same reports whether rel is the release c was recorded from. The tag alone
// is not enough because floating tags like "nightly" get republished.
func (c *Current) Same(rel *github.Release) bool {
	return c.Tag == rel.TagName && c.PublishedAt.Equal(rel.PublishedAt)
}

// Request describes one resolution.
type Request struct {
	Repo    RepoRef
	Version VersionRequest
	Filter  asset.Filter
	// Current, when set and Force is false, turns an unchanged match into
	// ErrAlreadyUpToDate.
	Current *Current
	Force   bool
}

// Resolution is the matched release and its selected asset.
type Resolution struct {
	// Release has its asset list narrowed to Asset.
	Release *github.Release
	Asset   github.Asset
	// Siblings is the release's full asset list, used to find checksums
	// and signatures.
	Siblings []github.Asset
}

// Resolver resolves version requests against a Source.
type Resolver struct {
	source   Source
	selector *asset.Selector
	perPage  int
	maxPages int
	log      *zap.SugaredLogger
}

// NewResolver creates a resolver. Non-positive Config values take defaults.
func NewResolver(source Source, selector *asset.Selector, cfg Config, logger *zap.SugaredLogger) *Resolver {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{
		source:   source,
		selector: selector,
		perPage:  cfg.PerPage,
		maxPages: cfg.MaxPages,
		log:      logger,
	}
}

// Resolve returns the release satisfying req together with its single asset.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	var (
		res *Resolution
		err error
	)

	switch req.Version.Kind {
	case KindLatest:
		res, err = r.single(ctx, req, func() (*github.Release, error) {
			return r.source.LatestRelease(ctx, req.Repo.Owner, req.Repo.Name)
		})
	case KindExact:
		res, err = r.single(ctx, req, func() (*github.Release, error) {
			return r.source.ReleaseByTag(ctx, req.Repo.Owner, req.Repo.Name, req.Version.Raw)
		})
	case KindSemVer:
		res, err = r.scan(ctx, req)
	default:
		return nil, fmt.Errorf("unknown version request kind %d", req.Version.Kind)
	}
	if err != nil {
		return nil, err
	}

	if req.Current != nil && !req.Force && req.Current.Same(res.Release) {
		return nil, ErrAlreadyUpToDate
	}

	r.log.Debugw("release resolved",
		"repo", req.Repo.String(),
		"tag", res.Release.TagName,
		"asset", res.Asset.Name,
	)
	return res, nil
}

// single resolves a one-release lookup. Selector errors are returned as is.
func (r *Resolver) single(ctx context.Context, req Request, fetch func() (*github.Release, error)) (*Resolution, error) {
	rel, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.choose(rel, req)
}

// scan walks the release listing until a release matches unambiguously.
func (r *Resolver) scan(ctx context.Context, req Request) (*Resolution, error) {
	for page := 1; page <= r.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		releases, err := r.source.ListReleases(ctx, req.Repo.Owner, req.Repo.Name, page, r.perPage)
		if err != nil {
			if errors.Is(err, github.ErrReleaseNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("fetch releases page %d: %w", page, err)
		}
		r.log.Debugw("scanning releases", "repo", req.Repo.String(), "page", page, "count", len(releases))

		for i := range releases {
			rel := &releases[i]
			if rel.Draft || !req.Version.MatchesTag(rel.TagName) {
				continue
			}

			res, err := r.choose(rel, req)
			if err != nil {
				if isSelectionError(err) {
					r.log.Debugw("skipping release", "tag", rel.TagName, "reason", err.Error())
					continue
				}
				return nil, err
			}
			return res, nil
		}

		if len(releases) < r.perPage {
			break
		}
	}

	return nil, fmt.Errorf("no release of %s matches %q: %w", req.Repo, req.Version.Raw, github.ErrReleaseNotFound)
}

func (r *Resolver) choose(rel *github.Release, req Request) (*Resolution, error) {
	selected, err := r.selector.Select(rel.Assets, req.Filter, req.Repo.Name)
	if err != nil {
		return nil, err
	}

	siblings := rel.Assets
	narrowed := *rel
	narrowed.Assets = []github.Asset{selected}

	return &Resolution{Release: &narrowed, Asset: selected, Siblings: siblings}, nil
}

func isSelectionError(err error) bool {
	var multi *asset.MultipleMatchError
	return errors.Is(err, asset.ErrNoMatch) || errors.As(err, &multi)
}

// Find returns the release a version request points at with its full asset
// list. Semver requests return the first matching tag without checking its
// assets.
func (r *Resolver) Find(ctx context.Context, repo RepoRef, version VersionRequest) (*github.Release, error) {
	switch version.Kind {
	case KindLatest:
		return r.source.LatestRelease(ctx, repo.Owner, repo.Name)
	case KindExact:
		return r.source.ReleaseByTag(ctx, repo.Owner, repo.Name, version.Raw)
	}

	for page := 1; page <= r.maxPages; page++ {
		releases, err := r.source.ListReleases(ctx, repo.Owner, repo.Name, page, r.perPage)
		if err != nil {
			if errors.Is(err, github.ErrReleaseNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("fetch releases page %d: %w", page, err)
		}
		for i := range releases {
			if !releases[i].Draft && version.MatchesTag(releases[i].TagName) {
				return &releases[i], nil
			}
		}
		if len(releases) < r.perPage {
			break
		}
	}
	return nil, fmt.Errorf("no release of %s matches %q: %w", repo, version.Raw, github.ErrReleaseNotFound)
}
