// Package testutil provides utilities for testing gitrel in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Home      string
	ConfigDir string
	BinDir    string
}

// SetupTestEnv points HOME and GITREL_CONFIG_DIR at fresh temp directories
// and clears every variable that would leak a real token or override the
// detected platform. This ensures tests never touch:
// - the user's installed packages and config.lua
// - ~/.local/bin
// - a GitHub token from the developer's shell
//
// The directories live under t.TempDir(), so no cleanup is needed.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Home:      filepath.Join(tmpDir, "home"),
		ConfigDir: filepath.Join(tmpDir, "config"),
		BinDir:    filepath.Join(tmpDir, "home", ".local", "bin"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("USERPROFILE", env.Home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("GITREL_CONFIG_DIR", env.ConfigDir)

	for _, name := range []string{"GITREL_TOKEN", "GITHUB_TOKEN", "GITREL_OS", "GITREL_ARCH", "GITREL_ABI"} {
		t.Setenv(name, "")
	}

	for _, dir := range []string{env.ConfigDir, env.BinDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	return env
}
