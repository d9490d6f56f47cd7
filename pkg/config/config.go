// Package config resolves the vault file and key material paths once per
// command invocation. The resolved paths are not secrets and may be logged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables honored during resolution.
const (
	EnvVaultFile  = "LLM_SECRETS_FILE"
	EnvAgeKeyFile = "SOPS_AGE_KEY_FILE"
	EnvXDGConfig  = "XDG_CONFIG_HOME"
)

const (
	appDirName    = "llm-secrets"
	vaultFileName = "secrets.yaml"
)

// Config carries the paths every component of a single invocation works
// against. It is built once and threaded into constructors; core logic never
// reads ambient environment state.
type Config struct {
	// VaultFile is the sops-encrypted vault file.
	VaultFile string
	// AgeKeyFile is the age private key file handed to the encryption
	// backend. The core never reads it directly.
	AgeKeyFile string
}

// Resolve builds a Config. An explicit vault file override wins over the
// LLM_SECRETS_FILE environment variable, which wins over the default
// location under the XDG config directory.
func Resolve(vaultOverride string) (Config, error) {
	vaultFile, err := resolveVaultFile(vaultOverride)
	if err != nil {
		return Config{}, err
	}
	keyFile, err := resolveAgeKeyFile()
	if err != nil {
		return Config{}, err
	}
	return Config{VaultFile: vaultFile, AgeKeyFile: keyFile}, nil
}

// ConfigDir returns the directory holding the default vault file.
func ConfigDir() (string, error) {
	if xdg := os.Getenv(EnvXDGConfig); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

func resolveVaultFile(override string) (string, error) {
	if override != "" {
		return expand(override)
	}
	if env := os.Getenv(EnvVaultFile); env != "" {
		return expand(env)
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	defaultFile := filepath.Join(dir, vaultFileName)
	if fileExists(defaultFile) {
		return defaultFile, nil
	}

	// Legacy location kept readable for vaults created by earlier setups.
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to determine home directory: %w", err)
	}
	legacy := filepath.Join(home, ".claude", vaultFileName)
	if fileExists(legacy) {
		return legacy, nil
	}

	return defaultFile, nil
}

func resolveAgeKeyFile() (string, error) {
	if env := os.Getenv(EnvAgeKeyFile); env != "" {
		return expand(env)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to determine home directory: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".config", "sops", "age", "keys.txt"),
		filepath.Join(home, ".sops", "age", "keys.txt"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return candidates[0], nil
}

// expand replaces a leading "~" with the user's home directory.
func expand(path string) (string, error) {
	if path == "~" || len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: failed to expand %q: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
