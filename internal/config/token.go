package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenSource says where a GitHub token came from.
type TokenSource string

const (
	TokenFromNone   TokenSource = "none"
	TokenFromFlag   TokenSource = "flag"
	TokenFromEnv    TokenSource = EnvToken
	TokenFromGitHub TokenSource = EnvGitHubToken
	TokenFromConfig TokenSource = "config"
	TokenFromFile   TokenSource = "file"
)

// ResolveToken returns the first token set in: the flag, GITREL_TOKEN,
// GITHUB_TOKEN, config.lua, the token file. No token is not an error.
func ResolveToken(flagToken string, cfg *Config, paths Paths) (string, TokenSource, error) {
	if tok := strings.TrimSpace(flagToken); tok != "" {
		return tok, TokenFromFlag, nil
	}
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, TokenFromEnv, nil
	}
	if tok := strings.TrimSpace(os.Getenv(EnvGitHubToken)); tok != "" {
		return tok, TokenFromGitHub, nil
	}
	if cfg != nil {
		if tok := strings.TrimSpace(cfg.GitHub.Token); tok != "" {
			return tok, TokenFromConfig, nil
		}
	}

	tok, err := readTokenFile(paths.TokenFile())
	if err != nil {
		return "", TokenFromNone, err
	}
	if tok != "" {
		return tok, TokenFromFile, nil
	}
	return "", TokenFromNone, nil
}

// readTokenFile returns the first non-empty line of path.
func readTokenFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return "", nil
}

// SaveToken writes token to the token file with mode 0600 and makes sure
// the config directory's .gitignore lists it.
func SaveToken(paths Paths, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := os.MkdirAll(paths.Dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(paths.TokenFile(), []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(paths.TokenFile(), 0600); err != nil {
		return fmt.Errorf("chmod token file: %w", err)
	}
	return EnsureGitignore(paths.Dir, TokenFileName)
}

// EnsureGitignore appends entry to dir/.gitignore unless it is already
// listed.
func EnsureGitignore(dir, entry string) error {
	path := filepath.Join(dir, GitignoreFileName)

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}
