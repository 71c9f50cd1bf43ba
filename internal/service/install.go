package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
)

// ErrBinNameTaken is returned when a binary name is already installed from
// another repository.
var ErrBinNameTaken = errors.New("binary name already installed from another repository")

// InstallOptions apply to every spec of an install batch.
type InstallOptions struct {
	// Rename installs the binary under another name. Single spec only.
	Rename string
	Strip  bool
	Force  bool
	// Path overrides the install directory.
	Path        string
	AssetFilter asset.Filter
	EntryFilter asset.Filter
}

// InstallRequest lists `[owner/]repo[@version]` specs to install.
type InstallRequest struct {
	Specs   []string
	Options InstallOptions
}

// InstallService installs packages and records them.
type InstallService struct {
	pipeline
}

// NewInstallService creates a new install service with dependency injection.
func NewInstallService(deps Deps) *InstallService {
	return &InstallService{pipeline: newPipeline(deps)}
}

// Execute installs every spec in order. The returned error is reserved for
// problems that stop the whole batch; per-package failures are in the
// summary.
func (s *InstallService) Execute(ctx context.Context, req InstallRequest) (*Summary, error) {
	opts := req.Options
	if opts.Rename != "" && len(req.Specs) > 1 {
		return nil, fmt.Errorf("--rename can only be used with a single package")
	}
	if err := opts.AssetFilter.Validate(true); err != nil {
		return nil, fmt.Errorf("asset filter: %w", err)
	}
	if err := opts.EntryFilter.Validate(false); err != nil {
		return nil, fmt.Errorf("entry filter: %w", err)
	}

	summary := &Summary{}
	changed := false

	err := s.withTempDir(func(tmp string) error {
		for _, raw := range req.Specs {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := s.installOne(ctx, raw, opts, tmp)
			if result.Status == StatusInstalled {
				changed = true
			}
			summary.add(result)
		}
		return nil
	})
	if err != nil {
		// Packages finished before the batch stopped stay recorded.
		return summary, errors.Join(err, s.save(changed))
	}

	if err := s.save(changed); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *InstallService) installOne(ctx context.Context, raw string, opts InstallOptions, tmp string) PackageResult {
	spec, err := release.ParseSpec(raw)
	if err != nil {
		result := PackageResult{Name: raw, Status: StatusFailed, Err: err}
		s.Reporter.End(result)
		return result
	}

	binName := opts.Rename
	if binName == "" {
		binName = strings.ToLower(spec.Repo.Name)
	}
	result := PackageResult{Name: binName, Repo: spec.Repo.String()}
	s.Reporter.Begin("installing", binName)

	j := job{
		repo:      spec.Repo,
		version:   spec.Version,
		binName:   binName,
		entryName: strings.ToLower(spec.Repo.Name),
		binDir:    s.BinDir,
		strip:     opts.Strip,
		force:     opts.Force,
		assets:    opts.AssetFilter,
		entries:   opts.EntryFilter,
	}
	if opts.Path != "" {
		j.binDir = opts.Path
	}

	if existing, ok := s.Registry.Get(binName); ok {
		if existing.Owner != spec.Repo.Owner || existing.Repo != spec.Repo.Name {
			if !opts.Force {
				result.Err = fmt.Errorf("%s is installed from %s: %w (use --rename or --force)",
					binName, existing.FullName(), ErrBinNameTaken)
				s.Reporter.End(result)
				return result
			}
		} else {
			j.current = &existing
		}
	}

	rec, installed, err := s.run(ctx, j, tmp)
	switch {
	case errors.Is(err, release.ErrAlreadyUpToDate):
		result.Status = StatusUpToDate
		result.Tag = j.current.Tag
		result.Path = j.current.Path
	case err != nil:
		result.Err = fmt.Errorf("%s: %w", binName, err)
	default:
		s.Registry.Put(rec)
		result.Status = StatusInstalled
		result.Tag = rec.Tag
		result.Asset = rec.Asset
		result.Path = installed.Path
		result.Size = installed.Size
		result.Verified = installed.Verified
	}

	s.Logger.Debugw("install finished", "bin", binName, "status", result.Status.String())
	s.Reporter.End(result)
	return result
}
