// Package runner launches child processes with secret values injected
// through their environment. Values never appear in the argument vector, on
// any stream owned by this process, or in error messages.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/llmsecrets/llm-secrets/pkg/store"
)

var (
	ErrInvalidBinding = errors.New("runner: invalid binding, expected ENV_VAR=secret-key")
	ErrInvalidEnvName = errors.New("runner: invalid environment variable name")
	ErrInvalidValue   = errors.New("runner: secret value cannot be placed in the environment")
	ErrNoCommand      = errors.New("runner: no command specified")
	ErrLaunchFailed   = errors.New("runner: command could not be started")
)

// ExitLaunchFailed is reported when the child never ran, so no fabricated
// child exit code is mistaken for a real one.
const ExitLaunchFailed = 127

// Binding maps an environment variable name to a secret key.
type Binding struct {
	EnvVar string
	Key    string
}

// ParseBindings parses ENV_VAR=secret-key specs. The first '=' splits, so
// keys may not contain '=' but need no quoting otherwise.
func ParseBindings(specs []string) ([]Binding, error) {
	bindings := make([]Binding, 0, len(specs))
	for _, spec := range specs {
		name, key, ok := strings.Cut(spec, "=")
		if !ok || name == "" || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBinding, spec)
		}
		if err := validateEnvName(name); err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{EnvVar: name, Key: key})
	}
	return bindings, nil
}

// resolvedBinding pairs a binding with its decrypted value. The value stays
// unexported to this package.
type resolvedBinding struct {
	Binding
	value string
}

// Injector resolves bindings against a secret store and launches commands.
type Injector struct {
	store *store.Store

	// Notify, when set, is called once per resolved binding with the
	// environment variable name and the secret key. Never the value.
	Notify func(envVar, key string)
}

func New(st *store.Store) *Injector {
	return &Injector{store: st}
}

// resolve loads the store once for the whole invocation and resolves every
// binding. Any failure aborts before a process is launched: injection is
// all-or-nothing. Internal keys are never eligible.
func (in *Injector) resolve(ctx context.Context, bindings []Binding) ([]resolvedBinding, error) {
	secrets, err := in.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]resolvedBinding, 0, len(bindings))
	for _, b := range bindings {
		key := store.NormalizeKey(b.Key)
		if store.IsInternal(key) {
			return nil, fmt.Errorf("%w: %s", store.ErrInternalKey, key)
		}
		value, ok := secrets[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
		}
		resolved = append(resolved, resolvedBinding{Binding: b, value: value})
	}
	return resolved, nil
}

// buildEnv returns base with the resolved bindings appended. A binding wins
// over an existing variable of the same name.
func buildEnv(base []string, resolved []resolvedBinding) ([]string, error) {
	injected := make(map[string]bool, len(resolved))
	for _, r := range resolved {
		if strings.ContainsRune(r.value, '\x00') {
			return nil, fmt.Errorf("%w: NUL byte in value for %s", ErrInvalidValue, r.EnvVar)
		}
		injected[r.EnvVar] = true
	}

	env := make([]string, 0, len(base)+len(resolved))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if !injected[name] {
			env = append(env, kv)
		}
	}
	for _, r := range resolved {
		env = append(env, r.EnvVar+"="+r.value)
	}
	return env, nil
}

// validateEnvName enforces POSIX environment variable naming:
// ^[A-Za-z_][A-Za-z0-9_]*$
func validateEnvName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: empty name", ErrInvalidEnvName)
	}
	first := name[0]
	if !((first >= 'A' && first <= 'Z') || (first >= 'a' && first <= 'z') || first == '_') {
		return fmt.Errorf("%w: %q must start with a letter or underscore", ErrInvalidEnvName, name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '_') {
			return fmt.Errorf("%w: %q contains invalid character %q", ErrInvalidEnvName, name, c)
		}
	}
	return nil
}

// Run launches argv with the resolved bindings in its environment and the
// parent's standard streams attached, so interactive commands behave
// normally. It returns the child's exit code unchanged; when the child never
// started it returns ExitLaunchFailed together with ErrLaunchFailed.
func (in *Injector) Run(ctx context.Context, bindings []Binding, argv []string) (int, error) {
	if len(argv) == 0 {
		return ExitLaunchFailed, ErrNoCommand
	}

	resolved, err := in.resolve(ctx, bindings)
	if err != nil {
		return ExitLaunchFailed, err
	}

	env, err := buildEnv(os.Environ(), resolved)
	if err != nil {
		return ExitLaunchFailed, err
	}

	if in.Notify != nil {
		for _, r := range resolved {
			in.Notify(r.EnvVar, r.Key)
		}
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return ExitLaunchFailed, fmt.Errorf("%w: %s: %v", ErrLaunchFailed, argv[0], err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return ExitLaunchFailed, fmt.Errorf("%w: %s: %v", ErrLaunchFailed, argv[0], err)
	}
	return 0, nil
}
