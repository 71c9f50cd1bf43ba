package service

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
)

// ListedPackage is a registry record plus whether its file is present.
type ListedPackage struct {
	registry.Package
	// Missing is set when the recorded binary is no longer on disk.
	Missing bool
}

// ListService reports installed packages.
type ListService struct {
	registry *registry.Registry
}

// NewListService creates a new list service.
func NewListService(reg *registry.Registry) *ListService {
	return &ListService{registry: reg}
}

// Execute returns the installed packages in binary name order.
func (s *ListService) Execute(ctx context.Context) ([]ListedPackage, error) {
	pkgs := s.registry.Packages()
	out := make([]ListedPackage, 0, len(pkgs))
	for _, p := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := binary.IsInstalled(p.Path)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", p.BinName, err)
		}
		out = append(out, ListedPackage{Package: p, Missing: !ok})
	}
	return out, nil
}
