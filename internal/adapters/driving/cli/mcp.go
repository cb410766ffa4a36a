package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about your documents.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:
  ask     - Answer a question with cited sources
  reindex - Rebuild the index from the workspace

Resources:
  brahma://status - Index readiness and size

Examples:
  # Stdio mode (default, for desktop assistants)
  brahma mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  brahma mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "brahma": {
        "command": "/path/to/brahma",
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

	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	server, err := mcp.NewServer(&mcp.Ports{Engine: engine}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
