package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
)

// UpdateRequest names the binaries to update. No names means all.
type UpdateRequest struct {
	Names []string
	Force bool
}

// UpdateService brings installed packages to the newest release matching
// their recorded version request.
type UpdateService struct {
	pipeline
}

// NewUpdateService creates a new update service with dependency injection.
func NewUpdateService(deps Deps) *UpdateService {
	return &UpdateService{pipeline: newPipeline(deps)}
}

// Execute updates packages in registry order. Requested names that are not
// installed are reported as failures after the installed ones.
func (s *UpdateService) Execute(ctx context.Context, req UpdateRequest) (*Summary, error) {
	wanted := make(map[string]bool, len(req.Names))
	for _, n := range req.Names {
		wanted[n] = true
	}

	summary := &Summary{}
	changed := false

	err := s.withTempDir(func(tmp string) error {
		for _, pkg := range s.Registry.Packages() {
			if len(wanted) > 0 && !wanted[pkg.BinName] {
				continue
			}
			delete(wanted, pkg.BinName)
			if err := ctx.Err(); err != nil {
				return err
			}

			result := s.updateOne(ctx, pkg, req.Force, tmp)
			if result.Status == StatusUpdated {
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

	for _, name := range req.Names {
		if wanted[name] {
			delete(wanted, name)
			result := PackageResult{Name: name, Err: fmt.Errorf("%s: %w", name, registry.ErrNotInstalled)}
			s.Reporter.End(result)
			summary.add(result)
		}
	}

	if err := s.save(changed); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *UpdateService) updateOne(ctx context.Context, pkg registry.Package, force bool, tmp string) PackageResult {
	result := PackageResult{Name: pkg.BinName, Repo: pkg.FullName()}
	s.Reporter.Begin("updating", pkg.BinName)

	current := pkg
	j := job{
		repo:      release.RepoRef{Owner: pkg.Owner, Name: pkg.Repo},
		version:   release.ParseVersionRequest(pkg.Requested),
		binName:   pkg.BinName,
		entryName: pkg.Repo,
		binDir:    filepath.Dir(pkg.Path),
		strip:     pkg.Strip,
		force:     force,
		assets:    assetFilter(pkg),
		entries:   entryFilter(pkg),
		current:   &current,
	}
	if pkg.Path == "" {
		j.binDir = s.BinDir
	}

	rec, installed, err := s.run(ctx, j, tmp)
	switch {
	case errors.Is(err, release.ErrAlreadyUpToDate):
		result.Status = StatusUpToDate
		result.Tag = pkg.Tag
		result.Path = pkg.Path
	case err != nil:
		result.Err = fmt.Errorf("%s: %w", pkg.BinName, err)
	default:
		s.Registry.Put(rec)
		result.Status = StatusUpdated
		result.Tag = rec.Tag
		result.Asset = rec.Asset
		result.Path = installed.Path
		result.Size = installed.Size
		result.Verified = installed.Verified
	}

	s.Logger.Debugw("update finished", "bin", pkg.BinName, "status", result.Status.String())
	s.Reporter.End(result)
	return result
}
