// Package sops drives the external encryption backend. All cryptography is
// delegated to the sops and age binaries; this package only invokes them,
// classifies their failures, and reports whether they are installed.
package sops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// External binaries. The vault file format on disk belongs entirely to sops;
// this package treats encrypted content as opaque.
const (
	sopsBinary   = "sops"
	ageBinary    = "age"
	keygenBinary = "age-keygen"
)

var (
	ErrNotInstalled  = errors.New("sops: encryption backend not installed")
	ErrDecryptFailed = errors.New("sops: failed to decrypt vault file")
	ErrEncryptFailed = errors.New("sops: failed to encrypt vault file")
	ErrNoRecipient   = errors.New("sops: no age recipient available")
)

// Backend is the encryption collaborator the secret store depends on.
// Implementations decrypt a vault file into its plaintext document, encrypt
// a plaintext document file in place, and report tool availability.
type Backend interface {
	// DecryptFile returns the plaintext structured document for the vault
	// file at path.
	DecryptFile(ctx context.Context, path string) ([]byte, error)

	// EncryptFileInPlace replaces the plaintext file at path with its
	// encrypted form. workDir is the directory searched for the backend's
	// own configuration (.sops.yaml creation rules).
	EncryptFileInPlace(ctx context.Context, path, workDir string) error

	// Recipient derives the public recipient from the configured key
	// material, for writing creation rules at vault initialization.
	Recipient(ctx context.Context) (string, error)

	// Status reports tool availability. Read-only, no side effects.
	Status(ctx context.Context) ToolStatus
}

// ToolStatus reports whether the backend binaries are reachable.
type ToolStatus struct {
	SopsInstalled bool
	AgeInstalled  bool
}

// Ready reports whether encryption and key generation are both usable.
func (s ToolStatus) Ready() bool {
	return s.SopsInstalled && s.AgeInstalled
}

// CLI invokes the sops and age-keygen binaries as subprocesses.
type CLI struct {
	ageKeyFile string
}

var _ Backend = (*CLI)(nil)

// NewCLI returns a backend that hands ageKeyFile to the binaries via the
// environment. The key file itself is never read by this process.
func NewCLI(ageKeyFile string) *CLI {
	return &CLI{ageKeyFile: ageKeyFile}
}

// env returns the parent environment with the age key file location set for
// the child. Secret values never travel through this environment.
func (c *CLI) env() []string {
	env := os.Environ()
	if c.ageKeyFile != "" {
		env = append(env, "SOPS_AGE_KEY_FILE="+c.ageKeyFile)
	}
	return env
}

func (c *CLI) DecryptFile(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, sopsBinary, "-d", path)
	cmd.Env = c.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s binary not found in PATH", ErrNotInstalled, sopsBinary)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrDecryptFailed, path, firstLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (c *CLI) EncryptFileInPlace(ctx context.Context, path, workDir string) error {
	cmd := exec.CommandContext(ctx, sopsBinary, "-e", "-i", path)
	cmd.Env = c.env()
	cmd.Dir = workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s binary not found in PATH", ErrNotInstalled, sopsBinary)
		}
		return fmt.Errorf("%w: %s", ErrEncryptFailed, firstLine(stderr.String()))
	}
	return nil
}

func (c *CLI) Recipient(ctx context.Context) (string, error) {
	if c.ageKeyFile == "" {
		return "", ErrNoRecipient
	}
	if _, err := os.Stat(c.ageKeyFile); err != nil {
		return "", fmt.Errorf("%w: key file %s does not exist (create one with: age-keygen -o %s)",
			ErrNoRecipient, c.ageKeyFile, c.ageKeyFile)
	}

	cmd := exec.CommandContext(ctx, keygenBinary, "-y", c.ageKeyFile)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s binary not found in PATH", ErrNotInstalled, keygenBinary)
		}
		return "", fmt.Errorf("%w: %s", ErrNoRecipient, firstLine(stderr.String()))
	}

	recipient := strings.TrimSpace(stdout.String())
	if recipient == "" {
		return "", ErrNoRecipient
	}
	return recipient, nil
}

func (c *CLI) Status(ctx context.Context) ToolStatus {
	return ToolStatus{
		SopsInstalled: binaryWorks(ctx, sopsBinary),
		AgeInstalled:  binaryWorks(ctx, ageBinary),
	}
}

// binaryWorks probes the binary with --version rather than just LookPath, so
// a broken install is reported the same as a missing one.
func binaryWorks(ctx context.Context, name string) bool {
	if _, err := exec.LookPath(name); err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, name, "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// firstLine trims backend stderr to its first non-empty line so errors stay
// readable. Backend output never contains plaintext secret values.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "no error output"
}
