package sops

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithEmptyPath(t *testing.T) {
	t.Setenv("PATH", "")

	status := NewCLI("").Status(context.Background())
	if status.SopsInstalled {
		t.Error("sops should not be found with an empty PATH")
	}
	if status.AgeInstalled {
		t.Error("age should not be found with an empty PATH")
	}
	if status.Ready() {
		t.Error("status should not be ready")
	}
}

func TestDecryptFileBackendMissing(t *testing.T) {
	t.Setenv("PATH", "")

	_, err := NewCLI("").DecryptFile(context.Background(), "/nonexistent/secrets.yaml")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestEncryptFileBackendMissing(t *testing.T) {
	t.Setenv("PATH", "")

	err := NewCLI("").EncryptFileInPlace(context.Background(), "/nonexistent/secrets.yaml", "/")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestRecipientWithoutKeyFile(t *testing.T) {
	_, err := NewCLI("").Recipient(context.Background())
	if !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}

	_, err = NewCLI("/nonexistent/keys.txt").Recipient(context.Background())
	if !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient for missing key file, got %v", err)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"error: no key found\ndetails follow", "error: no key found"},
		{"\n\n  padded line  \n", "padded line"},
		{"", "no error output"},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
