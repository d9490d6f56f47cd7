// Package mcp implements the Model Context Protocol server for llm-secrets.
// Tools expose only safe projections of the vault: an AI agent connected
// here never receives a plaintext secret value.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/llmsecrets/llm-secrets/pkg/config"
	"github.com/llmsecrets/llm-secrets/pkg/sops"
	"github.com/llmsecrets/llm-secrets/pkg/store"
)

// Server hosts the MCP tools over stdio transport. The vault mapping is
// never cached: every tool call decrypts fresh, so the server observes
// mutations made by concurrent CLI invocations.
type Server struct {
	server  *mcp.Server
	store   *store.Store
	backend sops.Backend
	cfg     config.Config
}

// ServerOptions configures the MCP server.
type ServerOptions struct {
	// VaultFile overrides the resolved vault file path.
	VaultFile string
	// Version is reported in the MCP handshake.
	Version string
}

// NewServer resolves configuration and registers the tool set.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil {
		opts = &ServerOptions{}
	}

	cfg, err := config.Resolve(opts.VaultFile)
	if err != nil {
		return nil, err
	}

	backend := sops.NewCLI(cfg.AgeKeyFile)
	version := opts.Version
	if version == "" {
		version = "0.0.0-dev"
	}

	s := &Server{
		server: mcp.NewServer(
			&mcp.Implementation{Name: "llm-secrets", Version: version},
			nil,
		),
		store:   store.New(cfg.VaultFile, backend),
		backend: backend,
		cfg:     cfg,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vault_status",
		Description: "Report encryption backend availability and vault file state. Never returns secret values.",
	}, s.handleVaultStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_list",
		Description: "List secret keys with internal/available flags. Does NOT return secret values.",
	}, s.handleSecretList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_peek",
		Description: "Get a masked preview of a secret value (e.g. 'sk-1*****7890') plus its length. The full value is never returned.",
	}, s.handleSecretPeek)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "secret_run",
		Description: "Run a command with secrets injected as environment variables. Bindings are explicit ENV_VAR=secret-key pairs; captured output is redacted before it is returned.",
	}, s.handleSecretRun)
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
