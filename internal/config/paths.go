package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
)

// Paths locates the files gitrel keeps in its config directory.
type Paths struct {
	Dir string
}

// ResolveDir picks the config directory: flag, then GITREL_CONFIG_DIR,
// then <user config dir>/gitrel.
func ResolveDir(flagDir string) (Paths, error) {
	dir := flagDir
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, AppDirName)
	}

	dir, err := ExpandHome(dir)
	if err != nil {
		return Paths{}, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve config dir: %w", err)
	}
	return Paths{Dir: abs}, nil
}

// ConfigFile returns the path of config.lua.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.Dir, ConfigFileName)
}

// RegistryFile returns the path of packages.toml.
func (p Paths) RegistryFile() string {
	return filepath.Join(p.Dir, registry.FileName)
}

// TokenFile returns the path of the plain-text token file.
func (p Paths) TokenFile() string {
	return filepath.Join(p.Dir, TokenFileName)
}

// ResolveBinDir returns the install directory. A configured directory is
// created when missing. Otherwise ~/.local/bin or ~/bin is used when it
// exists, and ~/.local/bin is created as a last resort.
func ResolveBinDir(configured string) (string, error) {
	if configured != "" {
		dir, err := ExpandHome(configured)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create bin dir: %w", err)
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	candidates := []string{
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, "bin"),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	if err := os.MkdirAll(candidates[0], 0755); err != nil {
		return "", fmt.Errorf("create bin dir: %w", err)
	}
	return candidates[0], nil
}
