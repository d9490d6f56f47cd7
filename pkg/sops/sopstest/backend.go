// Package sopstest provides an in-memory stand-in for the external sops
// toolchain so tests can exercise the vault cycle without the binaries
// installed. "Encryption" is a marker header on the plaintext document, so
// decrypting a file that never went through the backend fails the way a
// corrupt vault would.
package sopstest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/llmsecrets/llm-secrets/pkg/sops"
)

// Header marks a file as "encrypted" by this backend.
const Header = "#sops-fake\n"

// DefaultRecipient is returned by Recipient unless overridden.
const DefaultRecipient = "age1examplerecipient0000000000000000000000000000000000000000"

type Backend struct {
	FailEncrypt    bool
	FailDecrypt    bool
	RecipientValue string
	RecipientCalls int
}

var _ sops.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{RecipientValue: DefaultRecipient}
}

func (b *Backend) DecryptFile(_ context.Context, path string) ([]byte, error) {
	if b.FailDecrypt {
		return nil, fmt.Errorf("%w: simulated failure", sops.ErrDecryptFailed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sops.ErrDecryptFailed, err)
	}
	plaintext, ok := strings.CutPrefix(string(data), Header)
	if !ok {
		return nil, fmt.Errorf("%w: %s", sops.ErrDecryptFailed, path)
	}
	return []byte(plaintext), nil
}

func (b *Backend) EncryptFileInPlace(_ context.Context, path, _ string) error {
	if b.FailEncrypt {
		return fmt.Errorf("%w: simulated failure", sops.ErrEncryptFailed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", sops.ErrEncryptFailed, err)
	}
	return os.WriteFile(path, append([]byte(Header), data...), 0o600)
}

func (b *Backend) Recipient(context.Context) (string, error) {
	b.RecipientCalls++
	if b.RecipientValue == "" {
		return "", sops.ErrNoRecipient
	}
	return b.RecipientValue, nil
}

func (b *Backend) Status(context.Context) sops.ToolStatus {
	return sops.ToolStatus{SopsInstalled: true, AgeInstalled: true}
}
