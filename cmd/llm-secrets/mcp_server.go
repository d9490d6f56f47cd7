package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llmsecrets/llm-secrets/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpServerCmd)
}

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start the MCP server for AI coding assistant integration",
	Long: `Start the MCP server over stdio transport.

The tools exposed here never return plaintext secret values:
  - vault_status: backend tooling and vault file state
  - secret_list:  keys with internal/available flags, no values
  - secret_peek:  masked preview plus length
  - secret_run:   run a command with explicit bindings; captured output
                  is redacted before it is returned

Example configuration for Claude Code (~/.claude.json):
  {
    "mcpServers": {
      "llm-secrets": {
        "type": "stdio",
        "command": "/path/to/llm-secrets",
        "args": ["mcp-server"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(&mcp.ServerOptions{
			VaultFile: flagVaultFile,
			Version:   version,
		})
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.Run(ctx); err != nil {
			// Shutdown via signal is not an error.
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
