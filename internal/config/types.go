package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Config is the user configuration read from config.lua.
type Config struct {
	GitHub  GitHubConfig  `json:"github" yaml:"github"`
	Install InstallConfig `json:"install" yaml:"install"`
	Verify  VerifyConfig  `json:"verify" yaml:"verify"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// GitHubConfig controls API access.
type GitHubConfig struct {
	// Token is used when no flag or environment token is given.
	Token    string `json:"-" yaml:"-"`
	APIURL   string `json:"api_url" yaml:"api_url"`
	PerPage  int    `json:"per_page" yaml:"per_page"`
	MaxPages int    `json:"max_pages" yaml:"max_pages"`
}

// InstallConfig sets install defaults.
type InstallConfig struct {
	// BinDir overrides the detected install directory. Supports ~.
	BinDir string `json:"bin_dir,omitempty" yaml:"bin_dir,omitempty"`
	Strip  bool   `json:"strip" yaml:"strip"`
}

// VerifyConfig controls release asset verification.
type VerifyConfig struct {
	RequireChecksum bool   `json:"require_checksum" yaml:"require_checksum"`
	Keyring         string `json:"keyring,omitempty" yaml:"keyring,omitempty"`
	MinisignKey     string `json:"minisign_key,omitempty" yaml:"minisign_key,omitempty"`
}

// LogConfig holds the log level.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used when config.lua is absent.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:   DefaultAPIURL,
			PerPage:  DefaultPerPage,
			MaxPages: DefaultMaxPages,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks value ranges and expands ~ in paths.
func (c *Config) Validate() error {
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > MaxPerPage {
		return &ValidationError{
			Field:   "github.per_page",
			Message: fmt.Sprintf("must be between 1 and %d (got %d)", MaxPerPage, c.GitHub.PerPage),
		}
	}
	if c.GitHub.MaxPages < 1 {
		return &ValidationError{
			Field:   "github.max_pages",
			Message: fmt.Sprintf("must be at least 1 (got %d)", c.GitHub.MaxPages),
		}
	}
	if err := validateAPIURL(c.GitHub.APIURL); err != nil {
		return &ValidationError{Field: "github.api_url", Message: err.Error()}
	}

	if !validLogLevels[c.Log.Level] {
		return &ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn or error)", c.Log.Level),
		}
	}

	paths := []struct {
		field string
		value *string
	}{
		{"install.bin_dir", &c.Install.BinDir},
		{"verify.keyring", &c.Verify.Keyring},
		{"verify.minisign_key", &c.Verify.MinisignKey},
	}
	for _, p := range paths {
		expanded, err := ExpandHome(*p.value)
		if err != nil {
			return &ValidationError{Field: p.field, Message: err.Error()}
		}
		*p.value = expanded
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
