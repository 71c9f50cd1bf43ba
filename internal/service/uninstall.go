package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
)

// UninstallRequest names the binaries to remove.
type UninstallRequest struct {
	Names []string
}

// UninstallService removes installed binaries and their records.
type UninstallService struct {
	registry *registry.Registry
	reporter Reporter
	log      *zap.SugaredLogger
}

// NewUninstallService creates a new uninstall service.
func NewUninstallService(reg *registry.Registry, reporter Reporter, logger *zap.SugaredLogger) *UninstallService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UninstallService{registry: reg, reporter: reporterOrNop(reporter), log: logger}
}

// Execute removes each named binary. A name that is not installed fails on
// its own without stopping the others.
func (s *UninstallService) Execute(ctx context.Context, req UninstallRequest) (*Summary, error) {
	summary := &Summary{}
	changed := false

	for _, name := range req.Names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		s.reporter.Begin("uninstalling", name)

		result := PackageResult{Name: name}
		pkg, ok := s.registry.Get(name)
		if !ok {
			result.Err = fmt.Errorf("%s: %w", name, registry.ErrNotInstalled)
			s.reporter.End(result)
			summary.add(result)
			continue
		}

		result.Repo = pkg.FullName()
		result.Tag = pkg.Tag
		result.Path = pkg.Path
		if err := binary.Remove(pkg.Path); err != nil {
			result.Err = fmt.Errorf("%s: %w", name, err)
		} else if err := s.registry.Remove(name); err != nil {
			result.Err = err
		} else {
			result.Status = StatusUninstalled
			changed = true
			s.log.Debugw("binary removed", "bin", name, "path", pkg.Path)
		}

		s.reporter.End(result)
		summary.add(result)
	}

	if changed {
		if err := s.registry.Save(); err != nil {
			return summary, fmt.Errorf("save registry: %w", err)
		}
	}
	return summary, nil
}
