package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/llmsecrets/llm-secrets/pkg/mask"
	"github.com/llmsecrets/llm-secrets/pkg/runner"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

// defaultRunTimeout bounds secret_run executions started by an agent.
const defaultRunTimeout = 5 * time.Minute

// VaultStatusInput represents input for the vault_status tool.
type VaultStatusInput struct{}

// VaultStatusOutput represents output for the vault_status tool.
type VaultStatusOutput struct {
	SopsInstalled bool   `json:"sops_installed"`
	AgeInstalled  bool   `json:"age_installed"`
	VaultFile     string `json:"vault_file"`
	VaultExists   bool   `json:"vault_exists"`
	AgeKeyFile    string `json:"age_key_file"`
	SecretCount   int    `json:"secret_count"`
	Available     int    `json:"available"`
}

// SecretListInput represents input for the secret_list tool.
type SecretListInput struct{}

// SecretListOutput represents output for the secret_list tool.
type SecretListOutput struct {
	Secrets   []SecretInfo `json:"secrets"`
	Total     int          `json:"total"`
	Available int          `json:"available"`
}

// SecretInfo is one key projection. No value, masked or otherwise.
type SecretInfo struct {
	Key       string `json:"key"`
	Internal  bool   `json:"internal"`
	Available bool   `json:"available"`
}

// SecretPeekInput represents input for the secret_peek tool. Reveal is a
// pointer so an explicit 0 (full mask) is distinct from the field being
// absent.
type SecretPeekInput struct {
	Key    string `json:"key"`
	Reveal *int   `json:"reveal,omitempty"`
}

// SecretPeekOutput represents output for the secret_peek tool.
type SecretPeekOutput struct {
	Key         string `json:"key"`
	MaskedValue string `json:"masked_value"`
	ValueLength int    `json:"value_length"`
}

// SecretRunInput represents input for the secret_run tool.
type SecretRunInput struct {
	Bindings []string `json:"bindings"`
	Command  string   `json:"command"`
	Args     []string `json:"args,omitempty"`
	Timeout  string   `json:"timeout,omitempty"`
}

// SecretRunOutput represents output for the secret_run tool.
type SecretRunOutput struct {
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
	Redacted   bool   `json:"redacted"`
}

func (s *Server) handleVaultStatus(ctx context.Context, _ *mcp.CallToolRequest, _ VaultStatusInput) (*mcp.CallToolResult, VaultStatusOutput, error) {
	status := s.backend.Status(ctx)
	output := VaultStatusOutput{
		SopsInstalled: status.SopsInstalled,
		AgeInstalled:  status.AgeInstalled,
		VaultFile:     s.cfg.VaultFile,
		VaultExists:   s.store.Exists(),
		AgeKeyFile:    s.cfg.AgeKeyFile,
	}

	if output.VaultExists {
		entries, err := s.store.List(ctx)
		if err != nil {
			// Status stays useful even when the vault cannot be read.
			return nil, output, nil
		}
		output.SecretCount = len(entries)
		for _, e := range entries {
			if e.Available {
				output.Available++
			}
		}
	}
	return nil, output, nil
}

func (s *Server) handleSecretList(ctx context.Context, _ *mcp.CallToolRequest, _ SecretListInput) (*mcp.CallToolResult, SecretListOutput, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, SecretListOutput{}, fmt.Errorf("failed to list secrets: %w", err)
	}

	output := SecretListOutput{
		Secrets: make([]SecretInfo, 0, len(entries)),
		Total:   len(entries),
	}
	for _, e := range entries {
		output.Secrets = append(output.Secrets, SecretInfo{
			Key:       e.Key,
			Internal:  e.Internal,
			Available: e.Available,
		})
		if e.Available {
			output.Available++
		}
	}
	return nil, output, nil
}

func (s *Server) handleSecretPeek(ctx context.Context, _ *mcp.CallToolRequest, input SecretPeekInput) (*mcp.CallToolResult, SecretPeekOutput, error) {
	if input.Key == "" {
		return nil, SecretPeekOutput{}, errors.New("key is required")
	}
	reveal := mask.DefaultReveal
	if input.Reveal != nil {
		reveal = *input.Reveal
	}

	masked, length, err := s.store.Peek(ctx, input.Key, reveal, false)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) || errors.Is(err, store.ErrInternalKey) {
			return nil, SecretPeekOutput{}, fmt.Errorf("secret not available: %s", input.Key)
		}
		return nil, SecretPeekOutput{}, fmt.Errorf("failed to peek secret: %w", err)
	}

	return nil, SecretPeekOutput{
		Key:         input.Key,
		MaskedValue: masked,
		ValueLength: length,
	}, nil
}

func (s *Server) handleSecretRun(ctx context.Context, _ *mcp.CallToolRequest, input SecretRunInput) (*mcp.CallToolResult, SecretRunOutput, error) {
	if input.Command == "" {
		return nil, SecretRunOutput{}, errors.New("command is required")
	}
	if len(input.Bindings) == 0 {
		return nil, SecretRunOutput{}, errors.New("at least one ENV_VAR=secret-key binding is required")
	}

	bindings, err := runner.ParseBindings(input.Bindings)
	if err != nil {
		return nil, SecretRunOutput{}, err
	}

	timeout := defaultRunTimeout
	if input.Timeout != "" {
		timeout, err = time.ParseDuration(input.Timeout)
		if err != nil {
			return nil, SecretRunOutput{}, fmt.Errorf("invalid timeout: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in := runner.New(s.store)
	result, err := in.RunCaptured(ctx, bindings, append([]string{input.Command}, input.Args...))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, SecretRunOutput{}, fmt.Errorf("command timed out after %v", timeout)
		}
		return nil, SecretRunOutput{}, err
	}

	return nil, SecretRunOutput{
		ExitCode:   result.ExitCode,
		Stdout:     string(result.Stdout),
		Stderr:     string(result.Stderr),
		DurationMs: result.Duration.Milliseconds(),
		Redacted:   result.Redacted,
	}, nil
}
