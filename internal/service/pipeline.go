package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
)

// Deps are the collaborators shared by the install and update services.
type Deps struct {
	Resolver  Resolver
	Installer Installer
	Registry  *registry.Registry
	// BinDir is the default install directory.
	BinDir string
	// TempRoot is where the per-batch download directory is created.
	// Empty means the system temp directory.
	TempRoot string
	Clock    Clock
	Reporter Reporter
	Logger   *zap.SugaredLogger
}

// pipeline runs resolve, install and record for one package at a time.
type pipeline struct {
	Deps
}

func newPipeline(d Deps) pipeline {
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	d.Reporter = reporterOrNop(d.Reporter)
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	return pipeline{Deps: d}
}

// job is one package to bring to a requested release.
type job struct {
	repo      release.RepoRef
	version   release.VersionRequest
	binName   string
	entryName string
	binDir    string
	strip     bool
	force     bool
	assets    asset.Filter
	entries   asset.Filter
	// current is the existing record, nil for a fresh install.
	current *registry.Package
}

// withTempDir creates the batch download directory and removes it when fn
// returns, whatever the outcome.
func (p pipeline) withTempDir(fn func(tmp string) error) error {
	tmp, err := os.MkdirTemp(p.TempRoot, TmpDirPattern)
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)
	return fn(tmp)
}

// run resolves and installs j and returns the record to store. It returns
// release.ErrAlreadyUpToDate when j.current already matches.
func (p pipeline) run(ctx context.Context, j job, tmp string) (registry.Package, *binary.InstallResult, error) {
	req := release.Request{
		Repo:    j.repo,
		Version: j.version,
		Filter:  j.assets,
		Force:   j.force,
	}
	if j.current != nil {
		req.Current = &release.Current{Tag: j.current.Tag, PublishedAt: j.current.PublishedAt}
	}

	res, err := p.Resolver.Resolve(ctx, req)
	if err != nil {
		return registry.Package{}, nil, err
	}
	p.Logger.Infow("release resolved", "bin", j.binName, "tag", res.Release.TagName, "asset", res.Asset.Name)

	// Each package gets its own subdirectory so equal asset names of
	// different packages never collide.
	pkgTmp := filepath.Join(tmp, j.binName)
	if err := os.MkdirAll(pkgTmp, 0700); err != nil {
		return registry.Package{}, nil, fmt.Errorf("create temp dir: %w", err)
	}

	installed, err := p.Installer.Install(ctx, binary.InstallRequest{
		Owner:     j.repo.Owner,
		Repo:      j.repo.Name,
		Asset:     res.Asset,
		Siblings:  res.Siblings,
		EntryName: j.entryName,
		BinName:   j.binName,
		BinDir:    j.binDir,
		Filter:    j.entries,
		Strip:     j.strip,
		TempDir:   pkgTmp,
	})
	if err != nil {
		return registry.Package{}, nil, err
	}

	rec := registry.Package{
		Owner:         j.repo.Owner,
		Repo:          j.repo.Name,
		BinName:       j.binName,
		Tag:           res.Release.TagName,
		Requested:     j.version.Raw,
		Path:          installed.Path,
		Strip:         j.strip,
		PublishedAt:   res.Release.PublishedAt,
		InstalledAt:   p.Clock.Now(),
		Asset:         res.Asset.Name,
		AssetGlob:     j.assets.Glob,
		AssetRegex:    j.assets.Regex,
		AssetContains: j.assets.Contains,
		EntryGlob:     j.entries.Glob,
		EntryRegex:    j.entries.Regex,
		EntryContains: j.entries.Contains,
	}
	return rec, installed, nil
}

// save writes the registry once at the end of a batch when it changed.
func (p pipeline) save(changed bool) error {
	if !changed {
		return nil
	}
	if err := p.Registry.Save(); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

func assetFilter(p registry.Package) asset.Filter {
	return asset.Filter{Glob: p.AssetGlob, Regex: p.AssetRegex, Contains: p.AssetContains}
}

func entryFilter(p registry.Package) asset.Filter {
	return asset.Filter{Glob: p.EntryGlob, Regex: p.EntryRegex, Contains: p.EntryContains}
}
