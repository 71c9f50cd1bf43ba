// Package registry persists the set of installed packages in packages.toml.
//
// The file is read once before a batch and written once after it. Records
// are kept sorted by binary name so the file and list output are stable.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the registry file inside the config directory.
const FileName = "packages.toml"

// Version is the current registry format version
const Version = 1

// ErrNotInstalled is returned for a binary name with no record.
var ErrNotInstalled = errors.New("package not installed")

// Package is one installed binary.
type Package struct {
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
	BinName string `toml:"bin_name"`
	Tag     string `toml:"tag"`
	// Requested is the version request as typed, "*" for latest.
	Requested string `toml:"requested"`
	// Path is the installed file, which also records any --path override.
	Path        string    `toml:"path"`
	Strip       bool      `toml:"strip,omitempty"`
	PublishedAt time.Time `toml:"published_at"`
	InstalledAt time.Time `toml:"installed_at"`
	Asset       string    `toml:"asset,omitempty"`

	AssetGlob     string `toml:"asset_glob,omitempty"`
	AssetRegex    string `toml:"asset_regex,omitempty"`
	AssetContains string `toml:"asset_contains,omitempty"`
	EntryGlob     string `toml:"entry_glob,omitempty"`
	EntryRegex    string `toml:"entry_regex,omitempty"`
	EntryContains string `toml:"entry_contains,omitempty"`
}

// FullName returns "owner/repo".
func (p Package) FullName() string {
	return p.Owner + "/" + p.Repo
}

// SameRemote reports whether both records describe the same release.
// Tags alone are not enough because floating tags get re-published.
func (p Package) SameRemote(o Package) bool {
	return p.Tag == o.Tag && p.PublishedAt.Equal(o.PublishedAt)
}

type file struct {
	Version  int       `toml:"version"`
	Packages []Package `toml:"package"`
}

// Registry is the in-memory view of packages.toml.
type Registry struct {
	path     string
	packages []Package
}

// New returns an empty registry that saves to path.
func New(path string) *Registry {
	return &Registry{path: path}
}

// Load reads the registry at path. A missing file is an empty registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("parse %s: unsupported version %d", filepath.Base(path), f.Version)
	}

	r := &Registry{path: path, packages: f.Packages}
	r.sort()
	return r, nil
}

// Path returns the file the registry saves to.
func (r *Registry) Path() string {
	return r.path
}

// Save writes every record, sorted by binary name, replacing the file
// atomically.
func (r *Registry) Save() error {
	r.sort()

	data, err := toml.Marshal(file{Version: Version, Packages: r.packages})
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Get returns the record for binName.
func (r *Registry) Get(binName string) (Package, bool) {
	for _, p := range r.packages {
		if p.BinName == binName {
			return p, true
		}
	}
	return Package{}, false
}

// FindRepo returns the records installed from owner/repo.
func (r *Registry) FindRepo(owner, repo string) []Package {
	var out []Package
	for _, p := range r.packages {
		if p.Owner == owner && p.Repo == repo {
			out = append(out, p)
		}
	}
	return out
}

// Put inserts p or replaces the record with the same binary name.
func (r *Registry) Put(p Package) {
	for i := range r.packages {
		if r.packages[i].BinName == p.BinName {
			r.packages[i] = p
			return
		}
	}
	r.packages = append(r.packages, p)
	r.sort()
}

// Remove deletes the record for binName.
func (r *Registry) Remove(binName string) error {
	for i, p := range r.packages {
		if p.BinName == binName {
			r.packages = append(r.packages[:i], r.packages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", binName, ErrNotInstalled)
}

// Packages returns a copy of every record in binary name order.
func (r *Registry) Packages() []Package {
	out := make([]Package, len(r.packages))
	copy(out, r.packages)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.packages)
}

func (r *Registry) sort() {
	sort.SliceStable(r.packages, func(i, j int) bool {
		return r.packages[i].BinName < r.packages[j].BinName
	})
}
