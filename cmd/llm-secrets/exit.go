package main

import (
	"errors"
	"fmt"

	"github.com/llmsecrets/llm-secrets/pkg/input"
	"github.com/llmsecrets/llm-secrets/pkg/sops"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

// Exit codes reported by the CLI. Child process codes from `exec` pass
// through unchanged and may collide with these.
const (
	ExitOK                 = 0
	ExitError              = 1
	ExitNotFound           = 2
	ExitBackendUnavailable = 3
	ExitInputMismatch      = 4
)

// exitError carries a specific exit code out of a command. err may be nil
// when the code alone is the message, e.g. a child process exit.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCodeFor maps an error to the CLI exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	switch {
	case errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, store.ErrKeyNotFound),
		errors.Is(err, store.ErrInternalKey):
		return ExitNotFound
	case errors.Is(err, sops.ErrNotInstalled):
		return ExitBackendUnavailable
	case errors.Is(err, input.ErrMismatch),
		errors.Is(err, input.ErrEmptyValue):
		return ExitInputMismatch
	}
	return ExitError
}
