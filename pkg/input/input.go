// Package input acquires secret values from a human without echoing them to
// the terminal or leaving them in shell history.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"
)

var (
	ErrMismatch       = errors.New("input: entered values do not match")
	ErrEmptyValue     = errors.New("input: empty value not allowed")
	ErrSourceNotFound = errors.New("input: source file not found")
)

// Source supplies raw secret bytes for a prompt. Implementations must not
// echo the typed characters anywhere a transcript could capture them.
type Source interface {
	ReadSecret(prompt string) ([]byte, error)
}

// TerminalSource reads from the interactive terminal with echo disabled.
// Prompts go to Out (stderr when nil) so they never mix with piped stdout.
type TerminalSource struct {
	Out io.Writer
}

func (t *TerminalSource) ReadSecret(prompt string) ([]byte, error) {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprint(out, prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("input: failed to read hidden input: %w", err)
	}
	return value, nil
}

// Collector gathers secret values through a Source.
type Collector struct {
	source Source
}

func NewCollector(source Source) *Collector {
	return &Collector{source: source}
}

// Collect reads one hidden value. Empty input is rejected so a stray Enter
// cannot silently store an empty secret.
func (c *Collector) Collect(prompt string) ([]byte, error) {
	value, err := c.source.ReadSecret(prompt)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, ErrEmptyValue
	}
	return value, nil
}

// CollectConfirmed reads the value twice and fails with ErrMismatch when the
// reads differ. Neither value appears in the error.
func (c *Collector) CollectConfirmed(prompt, confirmPrompt string) ([]byte, error) {
	value, err := c.Collect(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := c.source.ReadSecret(confirmPrompt)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(value, confirm) {
		return nil, ErrMismatch
	}
	return value, nil
}

// FromFile reads a secret value already resident on disk. Surrounding
// whitespace is trimmed, matching what editors and echo leave behind. With
// deleteAfterRead the source file is removed so the plaintext does not
// linger.
func FromFile(path string, deleteAfterRead bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("input: failed to read %s: %w", path, err)
	}

	if deleteAfterRead {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("input: failed to delete source file %s: %w", path, err)
		}
	}
	return bytes.TrimSpace(data), nil
}
