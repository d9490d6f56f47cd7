package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/llmsecrets/llm-secrets/pkg/input"
	"github.com/llmsecrets/llm-secrets/pkg/sops"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitError},
		{"store not found", store.ErrStoreNotFound, ExitNotFound},
		{"key not found wrapped", fmt.Errorf("get: %w", store.ErrKeyNotFound), ExitNotFound},
		{"internal key", store.ErrInternalKey, ExitNotFound},
		{"backend missing", sops.ErrNotInstalled, ExitBackendUnavailable},
		{"input mismatch", input.ErrMismatch, ExitInputMismatch},
		{"empty value", input.ErrEmptyValue, ExitInputMismatch},
		{"child exit code", &exitError{code: 42}, 42},
		{"wrapped exit code wins", &exitError{code: 127, err: store.ErrKeyNotFound}, 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
