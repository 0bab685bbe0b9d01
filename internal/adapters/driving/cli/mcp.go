package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexpineda/llmdump/internal/adapters/driving/mcp"
	"github.com/alexpineda/llmdump/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can inspect,
refine and export llmdump sessions.

Tools: summary, categories, prune, split, export.
Resources: llmdump://sessions, llmdump://sessions/{key}/documents.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Prompt templates in ~/.llmdump/prompts are reloaded when they change
while the server runs.

Examples:
  # Stdio mode (default, for desktop assistants)
  llmdump mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  llmdump mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "llmdump": {
        "command": "/path/to/llmdump",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Curation: curationService,
		Export:   exportService,
		Session:  sessionService,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if promptWatcher != nil {
		go func() {
			if err := promptWatcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
