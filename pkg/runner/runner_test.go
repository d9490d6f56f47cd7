package runner

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/llmsecrets/llm-secrets/pkg/sops/sopstest"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

func newTestStore(t *testing.T, secrets map[string]string) *store.Store {
	t.Helper()
	ctx := context.Background()
	s := store.New(filepath.Join(t.TempDir(), "secrets.yaml"), sopstest.New())
	if err := s.Init(ctx, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for key, value := range secrets {
		if err := s.Set(ctx, key, value); err != nil {
			t.Fatalf("Set(%q) failed: %v", key, err)
		}
	}
	return s
}

func TestParseBindings(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		wantErr error
		want    []Binding
	}{
		{
			name:  "valid bindings",
			specs: []string{"API_KEY=api_key", "DB_PASS=db/password"},
			want: []Binding{
				{EnvVar: "API_KEY", Key: "api_key"},
				{EnvVar: "DB_PASS", Key: "db/password"},
			},
		},
		{name: "missing separator", specs: []string{"API_KEY"}, wantErr: ErrInvalidBinding},
		{name: "empty env name", specs: []string{"=key"}, wantErr: ErrInvalidBinding},
		{name: "empty key", specs: []string{"API_KEY="}, wantErr: ErrInvalidBinding},
		{name: "invalid env name", specs: []string{"1BAD=key"}, wantErr: ErrInvalidEnvName},
		{name: "dash in env name", specs: []string{"API-KEY=key"}, wantErr: ErrInvalidEnvName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBindings(tt.specs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBindings failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d bindings, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("binding %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestBuildEnvOverridesCollision(t *testing.T) {
	base := []string{"PATH=/usr/bin", "TOKEN=stale"}
	resolved := []resolvedBinding{
		{Binding: Binding{EnvVar: "TOKEN", Key: "token"}, value: "fresh"},
	}

	env, err := buildEnv(base, resolved)
	if err != nil {
		t.Fatalf("buildEnv failed: %v", err)
	}

	var tokens []string
	for _, kv := range env {
		if strings.HasPrefix(kv, "TOKEN=") {
			tokens = append(tokens, kv)
		}
	}
	if len(tokens) != 1 || tokens[0] != "TOKEN=fresh" {
		t.Errorf("expected single overriding TOKEN entry, got %v", tokens)
	}
}

func TestBuildEnvRejectsNULByte(t *testing.T) {
	resolved := []resolvedBinding{
		{Binding: Binding{EnvVar: "TOKEN", Key: "token"}, value: "a\x00b"},
	}
	if _, err := buildEnv(nil, resolved); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestRunAllOrNothing(t *testing.T) {
	s := newTestStore(t, map[string]string{"present": "value-1234"})
	in := New(s)

	bindings := []Binding{
		{EnvVar: "A", Key: "present"},
		{EnvVar: "B", Key: "missing"},
	}

	// The command does not exist either; a key-not-found error proves
	// resolution failed before any launch was attempted.
	code, err := in.Run(context.Background(), bindings, []string{"no-such-command-xyz"})
	if !errors.Is(err, store.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error should name the missing key: %v", err)
	}
	if code != ExitLaunchFailed {
		t.Errorf("expected exit code %d, got %d", ExitLaunchFailed, code)
	}
}

func TestRunRefusesInternalKeys(t *testing.T) {
	s := newTestStore(t, nil)
	in := New(s)

	_, err := in.Run(context.Background(),
		[]Binding{{EnvVar: "EXAMPLE", Key: store.ExampleKey}},
		[]string{"no-such-command-xyz"})
	if !errors.Is(err, store.ErrInternalKey) {
		t.Errorf("expected ErrInternalKey, got %v", err)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	s := newTestStore(t, map[string]string{"token": "value-1234"})
	in := New(s)

	code, err := in.Run(context.Background(),
		[]Binding{{EnvVar: "TOKEN", Key: "token"}},
		[]string{"no-such-command-xyz"})
	if !errors.Is(err, ErrLaunchFailed) {
		t.Fatalf("expected ErrLaunchFailed, got %v", err)
	}
	if code != ExitLaunchFailed {
		t.Errorf("expected exit code %d, got %d", ExitLaunchFailed, code)
	}
}

func TestRunNoCommand(t *testing.T) {
	s := newTestStore(t, nil)
	in := New(s)

	if _, err := in.Run(context.Background(), nil, nil); !errors.Is(err, ErrNoCommand) {
		t.Errorf("expected ErrNoCommand, got %v", err)
	}
}

func TestRunNotifyNamesBindingsOnly(t *testing.T) {
	s := newTestStore(t, map[string]string{"token": "value-1234"})
	in := New(s)

	var notices []string
	in.Notify = func(envVar, key string) {
		notices = append(notices, envVar+"<-"+key)
	}

	if runtime.GOOS == "windows" {
		t.Skip("test command not available on windows")
	}
	code, err := in.Run(context.Background(),
		[]Binding{{EnvVar: "TOKEN", Key: "token"}},
		[]string{"true"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if len(notices) != 1 || notices[0] != "TOKEN<-token" {
		t.Errorf("unexpected notices: %v", notices)
	}
}

func TestRedactorReplacesValues(t *testing.T) {
	resolved := []resolvedBinding{
		{Binding: Binding{EnvVar: "API_KEY", Key: "api_key"}, value: "sk-1234567890"},
		{Binding: Binding{EnvVar: "SHORT", Key: "short"}, value: "ab"},
	}
	r := newRedactor(resolved)

	out := r.Redact([]byte("token is sk-1234567890 and ab stays"))
	if strings.Contains(string(out), "sk-1234567890") {
		t.Errorf("secret value survived redaction: %s", out)
	}
	if !strings.Contains(string(out), "[REDACTED:API_KEY]") {
		t.Errorf("placeholder missing: %s", out)
	}
	// Values below the minimum length are left alone to avoid mangling
	// unrelated output.
	if !strings.Contains(string(out), "ab stays") {
		t.Errorf("short value should not be redacted: %s", out)
	}
}

func TestRunCapturedRedactsOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sh not available on windows")
	}

	s := newTestStore(t, map[string]string{"token": "sk-1234567890"})
	in := New(s)

	result, err := in.RunCaptured(context.Background(),
		[]Binding{{EnvVar: "TOKEN", Key: "token"}},
		[]string{"sh", "-c", "echo $TOKEN"})
	if err != nil {
		t.Fatalf("RunCaptured failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if strings.Contains(string(result.Stdout), "sk-1234567890") {
		t.Errorf("captured output leaked the secret: %s", result.Stdout)
	}
	if !strings.Contains(string(result.Stdout), "[REDACTED:TOKEN]") {
		t.Errorf("expected placeholder in output: %s", result.Stdout)
	}
}
